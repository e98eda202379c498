// Package ast defines the query, expression and migration trees consumed
// by pkg/render. It owns no rendering logic; it is the stable shape a
// caller builds once and hands to the renderer.
package ast

// Expr is any node that can appear where a scalar or boolean value is
// expected: a literal, a column reference, a function call, a subquery, ...
type Expr interface {
	exprNode()
}

// IntLit is an integer literal.
type IntLit struct{ Value int64 }

func (IntLit) exprNode() {}

// FloatLit is a floating point literal.
type FloatLit struct{ Value float64 }

func (FloatLit) exprNode() {}

// BoolLit is a boolean literal.
type BoolLit struct{ Value bool }

func (BoolLit) exprNode() {}

// NullLit is the NULL literal.
type NullLit struct{}

func (NullLit) exprNode() {}

// StringLit is a binary/string literal, single-quoted on render.
type StringLit struct{ Value string }

func (StringLit) exprNode() {}

// BytesLit is a bytea literal, rendered '\xHH...'::bytea.
type BytesLit struct{ Value []byte }

func (BytesLit) exprNode() {}

// DecimalLit is an exact decimal literal carried through unmodified.
type DecimalLit struct{ Value string }

func (DecimalLit) exprNode() {}

// Tagged wraps a value with an explicit logical type tag, e.g.
// {value, type}; rendered as value::dbtype, except that a BytesLit
// Value renders as its bytea literal whatever Type says.
type Tagged struct {
	Value Expr
	Type  string
}

func (Tagged) exprNode() {}

// Param is a positional parameter placeholder carried from the AST,
// {^, ix}; rendered $ix+1 for every clause except INSERT row values,
// which are numbered by the renderer itself.
type Param struct{ Index int }

func (Param) exprNode() {}

// FieldRef is a qualified column reference, {&idx, field}.
type FieldRef struct {
	SourceIndex int
	Field       string
}

func (FieldRef) exprNode() {}

// SourceRef is a bare source reference, {&idx}, used when selecting or
// joining an entire source rather than one of its fields.
type SourceRef struct{ SourceIndex int }

func (SourceRef) exprNode() {}

// Subquery embeds a full query as a scalar/row expression.
type Subquery struct{ Query *Query }

func (Subquery) exprNode() {}

// BinaryOp enumerates the infix operators the expression renderer knows.
type BinaryOp string

// Recognized binary operators; arity-2 entries in the operator table.
const (
	OpEq    BinaryOp = "=="
	OpNeq   BinaryOp = "!="
	OpLte   BinaryOp = "<="
	OpGte   BinaryOp = ">="
	OpLt    BinaryOp = "<"
	OpGt    BinaryOp = ">"
	OpAdd   BinaryOp = "+"
	OpSub   BinaryOp = "-"
	OpMul   BinaryOp = "*"
	OpDiv   BinaryOp = "/"
	OpAnd   BinaryOp = "and"
	OpOr    BinaryOp = "or"
	OpILike BinaryOp = "ilike"
	OpLike  BinaryOp = "like"
)

// BinaryExpr is a two-operand operator application.
type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
}

func (BinaryExpr) exprNode() {}

// Call is a named function/aggregate invocation. When len(Args) == 2 and
// Args[1] is a DistinctMarker, it renders fun(DISTINCT arg).
type Call struct {
	Func string
	Args []Expr
}

func (Call) exprNode() {}

// DistinctMarker, used only as the trailing element of Call.Args, flags
// that the preceding argument should render with a DISTINCT modifier.
type DistinctMarker struct{}

func (DistinctMarker) exprNode() {}

// CountStar renders count(*).
type CountStar struct{}

func (CountStar) exprNode() {}

// InKind distinguishes the four IN-expression shapes.
type InKind int

// InKind variants.
const (
	InEmpty    InKind = iota // x IN [] -> literal false
	InLiterals               // x IN [a,b,c] -> x IN (a,b,c)
	InParam                  // x IN ^list -> x = ANY($n)
	InSubquery                // x IN sub -> x = ANY(sub)
)

// InExpr is a membership test; which of Values/Param/Sub is populated is
// determined by Kind.
type InExpr struct {
	Left   Expr
	Kind   InKind
	Values []Expr
	Param  Expr
	Sub    Expr
}

func (InExpr) exprNode() {}

// IsNullExpr renders "expr IS [NOT] NULL".
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

func (IsNullExpr) exprNode() {}

// NotExpr renders "NOT (expr)".
type NotExpr struct{ Expr Expr }

func (NotExpr) exprNode() {}

// FragmentPart is one piece of a raw SQL fragment: either literal bytes
// or an embedded expression to render and splice in.
type FragmentPart interface{ fragmentPartNode() }

// RawPart is a literal, unescaped byte run within a fragment.
type RawPart struct{ Bytes []byte }

func (RawPart) fragmentPartNode() {}

// ExprPart is an embedded expression within a fragment.
type ExprPart struct{ Expr Expr }

func (ExprPart) fragmentPartNode() {}

// Fragment is a caller-supplied sequence of raw/expr parts. Keyword-list
// or 3-tuple fragments are not representable here; callers that try to
// build one get rejected at render time as an unsupported feature.
type Fragment struct{ Parts []FragmentPart }

func (Fragment) exprNode() {}

// DateAddKind distinguishes datetime_add (timestamp arithmetic) from
// date_add (date arithmetic, result re-cast to ::date).
type DateAddKind int

// DateAddKind variants.
const (
	DatetimeAdd DateAddKind = iota
	DateAdd
)

// IntervalAdd renders "expr + interval 'N unit'" with the coercions the
// spec describes for the three shapes of Amount (int/float/expr).
type IntervalAdd struct {
	Kind   DateAddKind
	Expr   Expr
	Amount Expr
	Unit   string
}

func (IntervalAdd) exprNode() {}

// FilterExpr renders "agg FILTER (WHERE cond)".
type FilterExpr struct {
	Agg  Expr
	Cond Expr
}

func (FilterExpr) exprNode() {}

// OverTarget is either a named window ("OVER name") or an inline
// specification ("OVER (...)").
type OverTarget struct {
	Name string
	Spec *WindowDef
}

// OverExpr renders "agg OVER <target>".
type OverExpr struct {
	Agg    Expr
	Target OverTarget
}

func (OverExpr) exprNode() {}

// TupleExpr renders "(e1, e2, ...)".
type TupleExpr struct{ Elements []Expr }

func (TupleExpr) exprNode() {}

// ListExpr renders "ARRAY[e1, e2, ...]".
type ListExpr struct{ Elements []Expr }

func (ListExpr) exprNode() {}

// MapPair is one key/value entry of a MapLit.
type MapPair struct {
	Key   string
	Value Expr
}

// MapLit is a map-valued column default, JSON-encoded at render time
// via the configured marshaler.
type MapLit struct{ Pairs []MapPair }

func (MapLit) exprNode() {}
