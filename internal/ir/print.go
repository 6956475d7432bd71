package ir

import (
	"fmt"
	"io"
	"strings"
)

// DumpModule writes the textual form of the module: string constants,
// extern declarations (emitted first so forward references resolve), then
// function definitions in declaration order. The output is byte-identical
// for a given module.
func DumpModule(w io.Writer, m *Module) error {
	if m.Name != "" {
		if _, err := fmt.Fprintf(w, "; module %s\n\n", m.Name); err != nil {
			return err
		}
	}
	for i, s := range m.Strs {
		esc, n := escapeString(s)
		if _, err := fmt.Fprintf(w, "@.str.%d = private constant [%d x i8] c\"%s\"\n", i, n, esc); err != nil {
			return err
		}
	}
	if len(m.Strs) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	for _, e := range m.Externs {
		if _, err := fmt.Fprintf(w, "declare %s @%s(%s)\n", e.Ret, e.Name, externParams(e)); err != nil {
			return err
		}
	}
	if len(m.Externs) > 0 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	for i, f := range m.Funcs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := DumpFunc(w, f); err != nil {
			return err
		}
	}
	return nil
}

// ModuleText renders the module to a string.
func ModuleText(m *Module) string {
	var sb strings.Builder
	// strings.Builder never fails.
	_ = DumpModule(&sb, m)
	return sb.String()
}

// DumpFunc writes one function definition.
func DumpFunc(w io.Writer, f *Func) error {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s %%a.%s", p.Type, p.Name)
	}
	if _, err := fmt.Fprintf(w, "define %s @%s(%s) {\n", f.Ret, f.Name, strings.Join(params, ", ")); err != nil {
		return err
	}
	for _, b := range f.Blocks {
		if _, err := fmt.Fprintf(w, "%s:\n", b.ID.Label()); err != nil {
			return err
		}
		for i := range b.Instrs {
			if _, err := fmt.Fprintf(w, "  %s\n", formatInstr(&b.Instrs[i])); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  %s\n", formatTerm(&b.Term, f.Ret)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

func externParams(e Extern) string {
	parts := make([]string, 0, len(e.Params)+1)
	for _, p := range e.Params {
		parts = append(parts, p.String())
	}
	if e.Variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

func formatInstr(in *Instr) string {
	switch in.Kind {
	case InstrAlloca:
		return fmt.Sprintf("%%%d = alloca %s", int32(in.Dst), in.Type)
	case InstrStore:
		return fmt.Sprintf("store %s %s, %s* %%%d",
			in.Store.Val.Type, in.Store.Val, in.Type, int32(in.Store.Addr))
	case InstrLoad:
		return fmt.Sprintf("%%%d = load %s, %s* %%%d",
			int32(in.Dst), in.Type, in.Type, int32(in.Load.Addr))
	case InstrBin:
		return fmt.Sprintf("%%%d = %s %s %s, %s",
			int32(in.Dst), in.Bin.Op, in.Type, in.Bin.X, in.Bin.Y)
	case InstrCmp:
		return fmt.Sprintf("%%%d = icmp %s %s %s, %s",
			int32(in.Dst), in.Cmp.Pred, in.Cmp.X.Type, in.Cmp.X, in.Cmp.Y)
	case InstrCast:
		return fmt.Sprintf("%%%d = %s %s %s to %s",
			int32(in.Dst), in.Cast.Op, in.Cast.Val.Type, in.Cast.Val, in.Type)
	case InstrCall:
		args := make([]string, len(in.Call.Args))
		for i, a := range in.Call.Args {
			args[i] = fmt.Sprintf("%s %s", a.Type, a)
		}
		if !in.Dst.IsValid() {
			return fmt.Sprintf("call void @%s(%s)", in.Call.Callee, strings.Join(args, ", "))
		}
		return fmt.Sprintf("%%%d = call %s @%s(%s)",
			int32(in.Dst), in.Type, in.Call.Callee, strings.Join(args, ", "))
	}
	return "<invalid>"
}

func formatTerm(t *Terminator, ret Type) string {
	switch t.Kind {
	case TermReturn:
		if !t.Ret.HasValue {
			return "ret void"
		}
		return fmt.Sprintf("ret %s %s", ret, t.Ret.Value)
	case TermGoto:
		return fmt.Sprintf("br label %%%s", t.Goto.Target.Label())
	case TermIf:
		return fmt.Sprintf("br i1 %s, label %%%s, label %%%s",
			t.If.Cond, t.If.Then.Label(), t.If.Else.Label())
	}
	return "<unterminated>"
}

// escapeString renders a string constant body in the c"..." form with a
// trailing NUL, returning the escaped text and the byte length including
// the terminator.
func escapeString(s string) (string, int) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c < 0x7F && c != '"' && c != '\\' {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "\\%02X", c)
	}
	sb.WriteString("\\00")
	return sb.String(), len(s) + 1
}
