package op

import "fmt"

// flagBits maps symbolic code-object flag names to their bit values. The
// lowercase entries are future-feature compiler flags; the bit assignments
// are stable across 3.7 through 3.10.
var flagBits = []struct {
	Name string
	Bit  uint32
}{
	{"OPTIMIZED", 0x1},
	{"NEWLOCALS", 0x2},
	{"VARARGS", 0x4},
	{"VARKEYWORDS", 0x8},
	{"NESTED", 0x10},
	{"GENERATOR", 0x20},
	{"NOFREE", 0x40},
	{"COROUTINE", 0x80},
	{"ITERABLE_COROUTINE", 0x100},
	{"ASYNC_GENERATOR", 0x200},
	{"division", 0x20000},
	{"absolute_import", 0x40000},
	{"with_statement", 0x80000},
	{"print_function", 0x100000},
	{"unicode_literals", 0x200000},
	{"barry_as_FLUFL", 0x400000},
	{"generator_stop", 0x800000},
	{"annotations", 0x1000000},
}

// FlagsToNames decomposes a flag bit set into symbolic names, sorted by bit
// value. Unknown bits are an error rather than silently dropped.
func FlagsToNames(flags uint32) ([]string, error) {
	var names []string
	remaining := flags
	for _, f := range flagBits {
		if remaining&f.Bit != 0 {
			names = append(names, f.Name)
			remaining &^= f.Bit
		}
	}
	if remaining != 0 {
		return nil, fmt.Errorf("unknown code flag bits: %#x", remaining)
	}
	return names, nil
}

// NamesToFlags recomposes symbolic flag names into a bit set.
func NamesToFlags(names []string) (uint32, error) {
	var flags uint32
	for _, name := range names {
		found := false
		for _, f := range flagBits {
			if f.Name == name {
				flags |= f.Bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown code flag name: %q", name)
		}
	}
	return flags, nil
}
