package ir

// Extern is a function the module calls but does not define. The only
// built-in external is the variadic print intrinsic; its implementation is a
// runtime collaborator this compiler never sees.
type Extern struct {
	Name     string
	Ret      Type
	Params   []Type
	Variadic bool
}

// Module is one lowered compilation unit: functions in declaration order,
// externals, and the string constants referenced by print calls.
type Module struct {
	Name    string
	Funcs   []*Func
	Externs []Extern
	Strs    []string
}

// Func returns the defined function with the given name, or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
