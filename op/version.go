package op

import "github.com/cloudcmds/codedata/errz"

// Version identifies a supported CPython bytecode format version.
type Version int

const (
	VInvalid Version = iota
	V37
	V38
	V39
	V310
)

// Versions lists the supported format versions in ascending order.
func Versions() []Version {
	return []Version{V37, V38, V39, V310}
}

// String returns the conventional "3.N" form.
func (v Version) String() string {
	switch v {
	case V37:
		return "3.7"
	case V38:
		return "3.8"
	case V39:
		return "3.9"
	case V310:
		return "3.10"
	default:
		return "invalid"
	}
}

// ParseVersion converts a "3.N" string into a Version.
func ParseVersion(s string) (Version, error) {
	switch s {
	case "3.7":
		return V37, nil
	case "3.8":
		return V38, nil
	case "3.9":
		return V39, nil
	case "3.10":
		return V310, nil
	}
	return VInvalid, &errz.UnsupportedVersionError{Version: s}
}

var tables = map[Version]*Table{
	V37:  buildTable(V37),
	V38:  buildTable(V38),
	V39:  buildTable(V39),
	V310: buildTable(V310),
}

// TableFor returns the opcode table for a format version.
func TableFor(v Version) (*Table, error) {
	t, ok := tables[v]
	if !ok {
		return nil, &errz.UnsupportedVersionError{Version: v.String()}
	}
	return t, nil
}
