package render

import "fmt"

// ErrorKind classifies a rendering error. All of these are programmer
// errors raised synchronously at render time, not user-data errors;
// there is no retry or recovery path, only a bug to fix in the
// caller's AST construction.
type ErrorKind int

// ErrorKind variants.
const (
	UnsupportedFeature ErrorKind = iota
	UnknownUpdateOp
	MissingSchema
	InvalidIdentifier
	InvalidDefault
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedFeature:
		return "unsupported-feature"
	case UnknownUpdateOp:
		return "unknown-update-op"
	case MissingSchema:
		return "missing-schema"
	case InvalidIdentifier:
		return "invalid-identifier"
	case InvalidDefault:
		return "invalid-default"
	default:
		return "unknown"
	}
}

// Error is the error type every renderer in this package returns. Query
// carries the *ast.Query or ast.Command being rendered when available,
// so callers can log or display the offending AST alongside the message.
type Error struct {
	Kind    ErrorKind
	Message string
	Query   any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func unsupported(msg string, query any) error {
	return &Error{Kind: UnsupportedFeature, Message: msg, Query: query}
}

func unknownUpdateOp(op string, query any) error {
	return &Error{Kind: UnknownUpdateOp, Message: fmt.Sprintf("unknown update op %q", op), Query: query}
}

func missingSchema(idx int, query any) error {
	return &Error{Kind: MissingSchema, Message: fmt.Sprintf("source %d has no schema; select an explicit field list instead of &%d", idx, idx), Query: query}
}

func invalidDefault(msg string, query any) error {
	return &Error{Kind: InvalidDefault, Message: msg, Query: query}
}
