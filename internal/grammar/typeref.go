package grammar

// TypeRef is the closed set of type reference shapes that may appear in a
// nonterminal's declared type or in an extern block.
type TypeRef interface {
	typeRef()
}

// TypePath is `a::b::C` with optional generic arguments.
type TypePath struct {
	Path string
	Args []TypeRef
}

// TypeTuple is `(A, B)`.
type TypeTuple struct {
	Elems []TypeRef
}

// TypeSlice is `[A]`.
type TypeSlice struct {
	Elem TypeRef
}

// TypeReference is `&'a mut A`.
type TypeReference struct {
	Lifetime string
	Mut      bool
	Elem     TypeRef
}

// TypeOfSymbol is `#Sym#`, the type a symbol resolves to.
type TypeOfSymbol struct {
	Expr SymbolExpr
}

// TypeLifetime is a lifetime used as a generic argument.
type TypeLifetime struct {
	Name string
}

// TypeRaw is type text the tree does not break down further, e.g.
// `dyn Fn(u32) -> u32`.
type TypeRaw struct {
	Text string
}

func (*TypePath) typeRef()      {}
func (*TypeTuple) typeRef()     {}
func (*TypeSlice) typeRef()     {}
func (*TypeReference) typeRef() {}
func (*TypeOfSymbol) typeRef()  {}
func (*TypeLifetime) typeRef()  {}
func (*TypeRaw) typeRef()       {}
