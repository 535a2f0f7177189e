package op

// The tables below mirror CPython's Lib/opcode.py for each supported
// release. Opcodes below HaveArgument carry no operand; the helper methods
// assign the argument kind for the rest.

type builder struct {
	t *Table
}

func newBuilder(v Version) *builder {
	return &builder{t: &Table{
		version: v,
		byName:  make(map[string]Code),
	}}
}

func (b *builder) def(name string, c Code, kind ArgKind) {
	b.t.infos[c] = Info{Code: c, Name: name, Kind: kind}
	b.t.valid[c] = true
	b.t.byName[name] = c
}

func (b *builder) op(name string, c Code) {
	if c < HaveArgument {
		b.def(name, c, ArgNone)
	} else {
		b.def(name, c, ArgInt)
	}
}

func (b *builder) nameOp(name string, c Code)  { b.def(name, c, ArgName) }
func (b *builder) constOp(name string, c Code) { b.def(name, c, ArgConst) }
func (b *builder) localOp(name string, c Code) { b.def(name, c, ArgLocal) }
func (b *builder) freeOp(name string, c Code)  { b.def(name, c, ArgFree) }
func (b *builder) jrelOp(name string, c Code)  { b.def(name, c, ArgJumpRel) }
func (b *builder) jabsOp(name string, c Code)  { b.def(name, c, ArgJumpAbs) }

func buildTable(v Version) *Table {
	b := newBuilder(v)

	// Argument-less core shared by 3.7 through 3.10.
	b.op("POP_TOP", 1)
	b.op("ROT_TWO", 2)
	b.op("ROT_THREE", 3)
	b.op("DUP_TOP", 4)
	b.op("DUP_TOP_TWO", 5)
	b.op("NOP", 9)
	b.op("UNARY_POSITIVE", 10)
	b.op("UNARY_NEGATIVE", 11)
	b.op("UNARY_NOT", 12)
	b.op("UNARY_INVERT", 15)
	b.op("BINARY_MATRIX_MULTIPLY", 16)
	b.op("INPLACE_MATRIX_MULTIPLY", 17)
	b.op("BINARY_POWER", 19)
	b.op("BINARY_MULTIPLY", 20)
	b.op("BINARY_MODULO", 22)
	b.op("BINARY_ADD", 23)
	b.op("BINARY_SUBTRACT", 24)
	b.op("BINARY_SUBSCR", 25)
	b.op("BINARY_FLOOR_DIVIDE", 26)
	b.op("BINARY_TRUE_DIVIDE", 27)
	b.op("INPLACE_FLOOR_DIVIDE", 28)
	b.op("INPLACE_TRUE_DIVIDE", 29)
	b.op("GET_AITER", 50)
	b.op("GET_ANEXT", 51)
	b.op("BEFORE_ASYNC_WITH", 52)
	b.op("INPLACE_ADD", 55)
	b.op("INPLACE_SUBTRACT", 56)
	b.op("INPLACE_MULTIPLY", 57)
	b.op("INPLACE_MODULO", 59)
	b.op("STORE_SUBSCR", 60)
	b.op("DELETE_SUBSCR", 61)
	b.op("BINARY_LSHIFT", 62)
	b.op("BINARY_RSHIFT", 63)
	b.op("BINARY_AND", 64)
	b.op("BINARY_XOR", 65)
	b.op("BINARY_OR", 66)
	b.op("INPLACE_POWER", 67)
	b.op("GET_ITER", 68)
	b.op("GET_YIELD_FROM_ITER", 69)
	b.op("PRINT_EXPR", 70)
	b.op("LOAD_BUILD_CLASS", 71)
	b.op("YIELD_FROM", 72)
	b.op("GET_AWAITABLE", 73)
	b.op("INPLACE_LSHIFT", 75)
	b.op("INPLACE_RSHIFT", 76)
	b.op("INPLACE_AND", 77)
	b.op("INPLACE_XOR", 78)
	b.op("INPLACE_OR", 79)
	b.op("RETURN_VALUE", 83)
	b.op("IMPORT_STAR", 84)
	b.op("SETUP_ANNOTATIONS", 85)
	b.op("YIELD_VALUE", 86)
	b.op("POP_BLOCK", 87)
	b.op("POP_EXCEPT", 89)

	// Argument-taking core shared by 3.7 through 3.10.
	b.nameOp("STORE_NAME", 90)
	b.nameOp("DELETE_NAME", 91)
	b.op("UNPACK_SEQUENCE", 92)
	b.jrelOp("FOR_ITER", 93)
	b.op("UNPACK_EX", 94)
	b.nameOp("STORE_ATTR", 95)
	b.nameOp("DELETE_ATTR", 96)
	b.nameOp("STORE_GLOBAL", 97)
	b.nameOp("DELETE_GLOBAL", 98)
	b.constOp("LOAD_CONST", 100)
	b.nameOp("LOAD_NAME", 101)
	b.op("BUILD_TUPLE", 102)
	b.op("BUILD_LIST", 103)
	b.op("BUILD_SET", 104)
	b.op("BUILD_MAP", 105)
	b.nameOp("LOAD_ATTR", 106)
	b.def("COMPARE_OP", 107, ArgCompare)
	b.nameOp("IMPORT_NAME", 108)
	b.nameOp("IMPORT_FROM", 109)
	b.jrelOp("JUMP_FORWARD", 110)
	b.jabsOp("JUMP_IF_FALSE_OR_POP", 111)
	b.jabsOp("JUMP_IF_TRUE_OR_POP", 112)
	b.jabsOp("JUMP_ABSOLUTE", 113)
	b.jabsOp("POP_JUMP_IF_FALSE", 114)
	b.jabsOp("POP_JUMP_IF_TRUE", 115)
	b.nameOp("LOAD_GLOBAL", 116)
	b.jrelOp("SETUP_FINALLY", 122)
	b.localOp("LOAD_FAST", 124)
	b.localOp("STORE_FAST", 125)
	b.localOp("DELETE_FAST", 126)
	b.op("RAISE_VARARGS", 130)
	b.op("CALL_FUNCTION", 131)
	b.op("MAKE_FUNCTION", 132)
	b.op("BUILD_SLICE", 133)
	b.freeOp("LOAD_CLOSURE", 135)
	b.freeOp("LOAD_DEREF", 136)
	b.freeOp("STORE_DEREF", 137)
	b.freeOp("DELETE_DEREF", 138)
	b.op("CALL_FUNCTION_KW", 141)
	b.op("CALL_FUNCTION_EX", 142)
	b.jrelOp("SETUP_WITH", 143)
	b.op("EXTENDED_ARG", 144)
	b.op("LIST_APPEND", 145)
	b.op("SET_ADD", 146)
	b.op("MAP_ADD", 147)
	b.freeOp("LOAD_CLASSDEREF", 148)
	b.jrelOp("SETUP_ASYNC_WITH", 154)
	b.op("FORMAT_VALUE", 155)
	b.op("BUILD_CONST_KEY_MAP", 156)
	b.op("BUILD_STRING", 157)
	b.nameOp("LOAD_METHOD", 160)
	b.op("CALL_METHOD", 161)

	if v <= V38 {
		b.op("WITH_CLEANUP_START", 81)
		b.op("WITH_CLEANUP_FINISH", 82)
		b.op("END_FINALLY", 88)
		b.op("BUILD_LIST_UNPACK", 149)
		b.op("BUILD_MAP_UNPACK", 150)
		b.op("BUILD_MAP_UNPACK_WITH_CALL", 151)
		b.op("BUILD_TUPLE_UNPACK", 152)
		b.op("BUILD_SET_UNPACK", 153)
		b.op("BUILD_TUPLE_UNPACK_WITH_CALL", 158)
	}

	switch v {
	case V37:
		b.op("BREAK_LOOP", 80)
		b.jabsOp("CONTINUE_LOOP", 119)
		b.jrelOp("SETUP_LOOP", 120)
		b.jrelOp("SETUP_EXCEPT", 121)
	case V38:
		b.op("ROT_FOUR", 6)
		b.op("BEGIN_FINALLY", 53)
		b.op("END_ASYNC_FOR", 54)
		b.jrelOp("CALL_FINALLY", 162)
		b.op("POP_FINALLY", 163)
	case V39:
		b.op("ROT_FOUR", 6)
		b.op("END_ASYNC_FOR", 54)
		b.op("RERAISE", 48)
		b.op("WITH_EXCEPT_START", 49)
		b.op("LOAD_ASSERTION_ERROR", 74)
		b.op("LIST_TO_TUPLE", 82)
		b.op("IS_OP", 117)
		b.op("CONTAINS_OP", 118)
		b.jabsOp("JUMP_IF_NOT_EXC_MATCH", 121)
		b.op("LIST_EXTEND", 162)
		b.op("SET_UPDATE", 163)
		b.op("DICT_MERGE", 164)
		b.op("DICT_UPDATE", 165)
	case V310:
		b.op("ROT_FOUR", 6)
		b.op("END_ASYNC_FOR", 54)
		b.op("WITH_EXCEPT_START", 49)
		b.op("LOAD_ASSERTION_ERROR", 74)
		b.op("LIST_TO_TUPLE", 82)
		b.op("IS_OP", 117)
		b.op("CONTAINS_OP", 118)
		b.jabsOp("JUMP_IF_NOT_EXC_MATCH", 121)
		b.op("LIST_EXTEND", 162)
		b.op("SET_UPDATE", 163)
		b.op("DICT_MERGE", 164)
		b.op("DICT_UPDATE", 165)
		b.op("GET_LEN", 30)
		b.op("MATCH_MAPPING", 31)
		b.op("MATCH_SEQUENCE", 32)
		b.op("MATCH_KEYS", 33)
		b.op("COPY_DICT_WITHOUT_KEYS", 34)
		b.op("ROT_N", 99)
		b.op("RERAISE", 119)
		b.op("GEN_START", 129)
		b.op("MATCH_CLASS", 152)
	}

	if v >= V39 {
		// Membership and identity moved out of COMPARE_OP in 3.9.
		b.t.compares = []Compare{
			CompareLT, CompareLE, CompareEQ, CompareNE, CompareGT, CompareGE,
		}
	} else {
		b.t.compares = []Compare{
			CompareLT, CompareLE, CompareEQ, CompareNE, CompareGT, CompareGE,
			CompareIn, CompareNotIn, CompareIs, CompareIsNot, CompareExcMatch, CompareBad,
		}
	}

	return b.t
}
