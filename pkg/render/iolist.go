// Package render translates pkg/ast query and migration trees into
// PostgreSQL wire SQL. Every exported function here is pure: no I/O, no
// shared state, safe to call from any number of goroutines at once.
package render

import (
	"fmt"
	"strings"
)

// builder is a chunk accumulator: it appends string chunks without
// re-scanning or re-copying what's already been written; String() is
// the one place the chunks are flattened. The render* functions in this
// package do not use it; each returns its rendered SQL as a string.
type builder struct {
	parts []string
}

func newBuilder() *builder { return &builder{} }

func (b *builder) str(s string) *builder {
	b.parts = append(b.parts, s)
	return b
}

func (b *builder) byte(c byte) *builder {
	b.parts = append(b.parts, string(c))
	return b
}

// join appends each element of vs, separated by sep.
func (b *builder) join(vs []string, sep string) *builder {
	for i, v := range vs {
		if i > 0 {
			b.str(sep)
		}
		b.str(v)
	}
	return b
}

func (b *builder) String() string {
	return strings.Join(b.parts, "")
}

// quoteName double-quotes an identifier. An identifier containing a
// `"` is rejected outright rather than escaped: PostgreSQL's own escape
// convention (doubling the quote) exists, but this is treated as a hard,
// programmer-facing error instead.
func quoteName(name string) (string, error) {
	if strings.Contains(name, `"`) {
		return "", &Error{Kind: InvalidIdentifier, Message: fmt.Sprintf("identifier %q contains a double quote", name)}
	}
	return `"` + name + `"`, nil
}

// quoteTable renders "prefix"."name", or just "name" when prefix is empty.
func quoteTable(prefix, name string) (string, error) {
	qn, err := quoteName(name)
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return qn, nil
	}
	qp, err := quoteName(prefix)
	if err != nil {
		return "", err
	}
	return qp + "." + qn, nil
}

// singleQuote wraps s in single quotes, doubling any embedded quote.
func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// escapeString doubles embedded single quotes without adding the
// surrounding quotes; used where a caller composes its own literal.
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteBytea renders PostgreSQL's hex bytea literal form.
func quoteBytea(b []byte) string {
	var sb strings.Builder
	sb.WriteString(`'\x`)
	for _, c := range b {
		fmt.Fprintf(&sb, "%02x", c)
	}
	sb.WriteString(`'::bytea`)
	return sb.String()
}
