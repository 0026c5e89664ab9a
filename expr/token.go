package expr

// kind identifies a lexical token in the literal-expression grammar
// (§4.1). The grammar is deliberately tiny: no identifiers survive to
// this stage (variables are substituted by interpolation before the
// tokenizer ever runs), so there is no IDENT token at all.
type kind int

const (
	tEOF kind = iota
	tNumber
	tString
	tTrue
	tFalse
	tNull
	tLParen
	tRParen
	tNot
	tAnd
	tOr
	tEq
	tNeq
	tGt
	tLt
	tGte
	tLte
)

type token struct {
	kind kind
	text string
	num  float64
	off  int
}
