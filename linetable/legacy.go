package linetable

// Legacy format (3.7 through 3.9, the co_lnotab grammar): a sequence of
// (byte-delta, line-delta) pairs. The byte delta is unsigned, the line delta
// a signed byte. A delta exceeding the single-byte range is split across
// several pairs that advance the other axis by zero.

const (
	legacyMaxByteDelta = 255
	legacyMaxLineDelta = 127
	legacyMinLineDelta = -128
)

func decodeLegacy(raw []byte, firstLine, instrCount int) (Mapping, error) {
	if len(raw)%2 != 0 {
		return nil, malformed(len(raw), "odd length %d", len(raw))
	}
	totalBytes := instrCount * 2
	var m Mapping
	line := firstLine
	pos := 0      // bytes consumed
	runStart := 0 // byte offset where the current line's run began
	for i := 0; i < len(raw); i += 2 {
		byteDelta := int(raw[i])
		lineDelta := int(int8(raw[i+1]))
		pos += byteDelta
		if pos > totalBytes {
			return nil, malformed(i, "range extends to byte %d past code end %d", pos, totalBytes)
		}
		if lineDelta == 0 {
			// Continuation pair splitting a large byte delta; the
			// intermediate boundary need not be instruction-aligned.
			continue
		}
		if runStart%2 != 0 || pos%2 != 0 {
			return nil, malformed(i, "line change at byte range [%d,%d) not aligned to instructions", runStart, pos)
		}
		m = m.append(runStart/2, pos/2, LineOnly(line))
		runStart = pos
		line += lineDelta
	}
	if runStart%2 != 0 {
		return nil, malformed(len(raw), "final range start %d not aligned to instructions", runStart)
	}
	if runStart < totalBytes {
		m = m.append(runStart/2, instrCount, LineOnly(line))
	}
	if instrCount > 0 {
		if err := m.Validate(instrCount); err != nil {
			return nil, malformed(len(raw), "%v", err)
		}
	}
	return m, nil
}

func encodeLegacy(m Mapping, firstLine int) ([]byte, error) {
	var out []byte
	lastLine := firstLine
	lastPos := 0 // bytes
	for i, e := range m {
		if e.IsNone() {
			return nil, malformed(0, "legacy format cannot represent a range with no line")
		}
		if i == 0 && e.Line == firstLine {
			continue
		}
		byteDelta := e.Start*2 - lastPos
		lineDelta := e.Line - lastLine
		out = appendLegacyPairs(out, byteDelta, lineDelta)
		lastPos = e.Start * 2
		lastLine = e.Line
	}
	return out, nil
}

// appendLegacyPairs splits a (byte-delta, line-delta) jump into as many
// single-byte pairs as the grammar requires, mirroring CPython's lnotab
// emission order: byte splits first, then line splits.
func appendLegacyPairs(out []byte, byteDelta, lineDelta int) []byte {
	emitted := false
	for byteDelta > legacyMaxByteDelta {
		out = append(out, legacyMaxByteDelta, 0)
		byteDelta -= legacyMaxByteDelta
		emitted = true
	}
	for lineDelta > legacyMaxLineDelta {
		out = append(out, byte(byteDelta), legacyMaxLineDelta)
		lineDelta -= legacyMaxLineDelta
		byteDelta = 0
		emitted = true
	}
	for lineDelta < legacyMinLineDelta {
		out = append(out, byte(byteDelta), byte(legacyMinLineDelta&0xFF))
		lineDelta -= legacyMinLineDelta
		byteDelta = 0
		emitted = true
	}
	if lineDelta != 0 || byteDelta != 0 || !emitted {
		out = append(out, byte(byteDelta), byte(lineDelta&0xFF))
	}
	return out
}
