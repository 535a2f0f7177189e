// Package dis supports inspection of code objects by disassembling
// their blocks into annotated rows. Annotations resolve operand indices
// against the code object's constant and name tables.
package dis

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/cloudcmds/codedata/code"
	"github.com/cloudcmds/codedata/internal/table"
	"github.com/cloudcmds/codedata/linetable"
)

// Row is one disassembled instruction.
type Row struct {
	Block      int
	Index      int
	Line       string
	Name       string
	Operand    string
	Annotation string
}

// Disassemble flattens a code object's blocks into printable rows.
func Disassemble(c *code.Code) []Row {
	var rows []Row
	instr := 0
	for bi, blk := range c.Blocks {
		for i, in := range blk {
			rows = append(rows, Row{
				Block:      bi,
				Index:      instr + i,
				Line:       lineLabel(c.Lines, instr+i),
				Name:       in.Name,
				Operand:    operand(in.Arg),
				Annotation: annotate(c, in.Arg),
			})
		}
		instr += len(blk)
	}
	return rows
}

func operand(arg code.Arg) string {
	switch a := arg.(type) {
	case code.NoArg:
		if a.Value != 0 {
			return fmt.Sprintf("%d", a.Value)
		}
		return ""
	case code.ConstRef:
		return fmt.Sprintf("%d", a.Index)
	case code.NameRef:
		return fmt.Sprintf("%d", a.Index)
	case code.VarRef:
		return fmt.Sprintf("%d", a.Index)
	case code.FreeRef:
		return fmt.Sprintf("%d", a.Index)
	case code.JumpRef:
		return fmt.Sprintf("%d", a.Block)
	case code.CompareArg:
		return ""
	case code.IntArg:
		return fmt.Sprintf("%d", a.Value)
	}
	return ""
}

func annotate(c *code.Code, arg code.Arg) string {
	switch a := arg.(type) {
	case code.ConstRef:
		if int(a.Index) < len(c.Constants) {
			return constLabel(c.Constants[a.Index])
		}
	case code.NameRef:
		if int(a.Index) < len(c.Names) {
			return color.CyanString(c.Names[a.Index])
		}
	case code.VarRef:
		if int(a.Index) < len(c.Varnames) {
			return color.CyanString(c.Varnames[a.Index])
		}
	case code.FreeRef:
		// Cellvars come first in the combined operand space.
		if int(a.Index) < len(c.Cellvars) {
			return color.CyanString(c.Cellvars[a.Index])
		}
		if i := int(a.Index) - len(c.Cellvars); i < len(c.Freevars) {
			return color.CyanString(c.Freevars[i])
		}
	case code.JumpRef:
		return fmt.Sprintf("to block %d", a.Block)
	case code.CompareArg:
		return bold(a.Op.String())
	}
	return ""
}

func constLabel(cst code.Constant) string {
	switch v := cst.(type) {
	case code.Str:
		s := string(v)
		if len(s) > 80 {
			s = s[:77] + "..."
		}
		return color.GreenString("%q", s)
	case code.Int:
		return color.YellowString(v.String())
	case code.Float:
		return color.YellowString(v.String())
	case code.CodeConst:
		name := v.Code.Name
		if name == "" {
			name = italic("<anonymous>")
		}
		return color.MagentaString("code:%s", name)
	default:
		return bold(fmt.Sprintf("%v", cst))
	}
}

func lineLabel(m linetable.Mapping, instr int) string {
	loc, ok := m.Lookup(instr)
	if !ok || loc.IsNone() {
		return ""
	}
	return fmt.Sprintf("%d", loc.Line)
}

// italic applies italic formatting (ANSI code 3) if colors are enabled.
func italic(s string) string {
	if color.NoColor {
		return s
	}
	return "\033[3m" + s + "\033[0m"
}

func bold(s string) string {
	if color.NoColor {
		return s
	}
	return color.New(color.Bold).Sprint(s)
}

// Print writes a table of the given rows.
func Print(rows []Row, writer io.Writer) {
	lines := make([][]string, len(rows))
	for i, r := range rows {
		lines[i] = []string{
			fmt.Sprintf("%d", r.Block),
			fmt.Sprintf("%d", r.Index),
			r.Line,
			bold(r.Name),
			r.Operand,
			r.Annotation,
		}
	}

	table.NewTable(writer).
		WithHeader([]string{"BLOCK", "INDEX", "LINE", "OPCODE", "OPERAND", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// Fprint disassembles c and all nested code objects, printing each as
// its own table.
func Fprint(w io.Writer, c *code.Code) {
	fmt.Fprintf(w, "%s (%s:%d)\n", bold(c.Name), c.Filename, c.FirstLine)
	Print(Disassemble(c), w)
	for _, cst := range c.Constants {
		if cc, ok := cst.(code.CodeConst); ok {
			fmt.Fprintln(w)
			Fprint(w, cc.Code)
		}
	}
}
