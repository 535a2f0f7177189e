package linetable

// Modern format (3.10): a sequence of op-coded entries, each covering up to
// eight instructions. The entry's form selects how much position detail is
// carried: a column pair on the current line, a short line delta with
// columns, a bare line delta with no columns, a full
// (line, end-line, column, end-column) quadruple, or a "no line" marker.
// Multi-byte quantities use 6-bit varint groups with a continuation bit.

const (
	modernMaxRun = 8 // instructions per entry

	formShortMax = 9  // forms 0..9: same line, compact columns
	formOneLine0 = 10 // forms 10..12: line delta 0..2, byte columns
	formNoColumn = 13
	formLong     = 14
	formNone     = 15
)

const varintMore = 0x40

func decodeModern(raw []byte, firstLine, instrCount int) (Mapping, error) {
	var m Mapping
	line := firstLine
	pos := 0
	i := 0
	for i < len(raw) {
		b0 := raw[i]
		if b0&0x80 == 0 {
			return nil, malformed(i, "entry byte %#x missing marker bit", b0)
		}
		form := int(b0>>3) & 0xF
		length := int(b0&0x7) + 1
		i++

		var loc Location
		switch {
		case form == formNone:
			loc = NoLocation()
		case form == formLong:
			delta, n, err := readSignedVarint(raw, i)
			if err != nil {
				return nil, err
			}
			i = n
			line += delta
			endDelta, n, err := readVarint(raw, i)
			if err != nil {
				return nil, err
			}
			i = n
			col, n, err := readVarint(raw, i)
			if err != nil {
				return nil, err
			}
			i = n
			endCol, n, err := readVarint(raw, i)
			if err != nil {
				return nil, err
			}
			i = n
			loc = Location{Line: line, EndLine: line + endDelta, Col: col - 1, EndCol: endCol - 1}
		case form == formNoColumn:
			delta, n, err := readSignedVarint(raw, i)
			if err != nil {
				return nil, err
			}
			i = n
			line += delta
			loc = Location{Line: line, EndLine: line, Col: NoValue, EndCol: NoValue}
		case form >= formOneLine0:
			if i+2 > len(raw) {
				return nil, malformed(i, "truncated one-line entry")
			}
			line += form - formOneLine0
			loc = Location{Line: line, EndLine: line, Col: int(raw[i]), EndCol: int(raw[i+1])}
			i += 2
		default: // short form
			if i+1 > len(raw) {
				return nil, malformed(i, "truncated short entry")
			}
			b1 := raw[i]
			i++
			col := form<<3 | int(b1>>4)
			loc = Location{Line: line, EndLine: line, Col: col, EndCol: col + int(b1&0xF)}
		}

		if pos+length > instrCount {
			return nil, malformed(i, "entry covers [%d,%d) past instruction count %d", pos, pos+length, instrCount)
		}
		m = m.append(pos, pos+length, loc)
		pos += length
	}
	if pos != instrCount {
		return nil, malformed(len(raw), "entries cover [0,%d), expected [0,%d)", pos, instrCount)
	}
	return m, nil
}

func encodeModern(m Mapping, firstLine int) ([]byte, error) {
	var out []byte
	line := firstLine
	for _, e := range m {
		remaining := e.End - e.Start
		first := true
		for remaining > 0 {
			run := remaining
			if run > modernMaxRun {
				run = modernMaxRun
			}
			delta := 0
			if !e.IsNone() && first {
				delta = e.Line - line
				line = e.Line
			}
			out = appendModernEntry(out, e.Location, delta, run)
			remaining -= run
			first = false
		}
	}
	return out, nil
}

func appendModernEntry(out []byte, loc Location, delta, run int) []byte {
	marker := func(form int) byte {
		return 0x80 | byte(form)<<3 | byte(run-1)
	}
	switch {
	case loc.IsNone():
		return append(out, marker(formNone))
	case loc.Col == NoValue:
		if loc.EndLine == loc.Line {
			out = append(out, marker(formNoColumn))
			return appendSignedVarint(out, delta)
		}
		out = append(out, marker(formLong))
		out = appendSignedVarint(out, delta)
		out = appendVarint(out, loc.EndLine-loc.Line)
		out = appendVarint(out, 0)
		return appendVarint(out, 0)
	case delta == 0 && loc.EndLine == loc.Line && loc.Col < 80 && loc.EndCol-loc.Col < 16 && loc.EndCol >= loc.Col:
		out = append(out, marker(loc.Col>>3))
		return append(out, byte(loc.Col&0x7)<<4|byte(loc.EndCol-loc.Col))
	case delta >= 0 && delta < 3 && loc.EndLine == loc.Line && loc.Col < 128 && loc.EndCol < 128:
		out = append(out, marker(formOneLine0+delta))
		return append(out, byte(loc.Col), byte(loc.EndCol))
	default:
		out = append(out, marker(formLong))
		out = appendSignedVarint(out, delta)
		out = appendVarint(out, loc.EndLine-loc.Line)
		out = appendVarint(out, loc.Col+1)
		return appendVarint(out, loc.EndCol+1)
	}
}

func appendVarint(out []byte, v int) []byte {
	u := uint(v)
	for u >= varintMore {
		out = append(out, byte(u&(varintMore-1))|varintMore)
		u >>= 6
	}
	return append(out, byte(u))
}

func appendSignedVarint(out []byte, v int) []byte {
	if v < 0 {
		return appendVarint(out, int(uint(-v)<<1|1))
	}
	return appendVarint(out, int(uint(v)<<1))
}

func readVarint(raw []byte, i int) (int, int, error) {
	var val uint
	var shift uint
	for {
		if i >= len(raw) {
			return 0, 0, malformed(i, "truncated varint")
		}
		b := raw[i]
		i++
		val |= uint(b&(varintMore-1)) << shift
		if b&varintMore == 0 {
			return int(val), i, nil
		}
		shift += 6
		if shift > 30 {
			return 0, 0, malformed(i, "varint too long")
		}
	}
}

func readSignedVarint(raw []byte, i int) (int, int, error) {
	v, n, err := readVarint(raw, i)
	if err != nil {
		return 0, 0, err
	}
	if v&1 != 0 {
		return -(v >> 1), n, nil
	}
	return v >> 1, n, nil
}
