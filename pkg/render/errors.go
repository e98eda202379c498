package render

import "strings"

// ConstraintKind classifies a decoded constraint violation.
type ConstraintKind string

// ConstraintKind variants.
const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintExclusion  ConstraintKind = "exclusion"
	ConstraintCheck      ConstraintKind = "check"
)

// Constraint is one decoded (kind, name) pair from ToConstraints.
type Constraint struct {
	Kind ConstraintKind
	Name string
}

// DriverError is the shape a caller's driver error must present for
// structured decoding: PostgreSQL's SQLSTATE-derived violation code
// plus the constraint name the server reported, the same two fields
// pgconn.PgError carries as Code and ConstraintName.
type DriverError struct {
	Code           string
	ConstraintName string
	Message        string
}

var sqlStateToKind = map[string]ConstraintKind{
	"23505": ConstraintUnique,
	"23503": ConstraintForeignKey,
	"23P01": ConstraintExclusion,
	"23514": ConstraintCheck,
}

// legacySentinels pairs each message substring with the kind it marks,
// tried in this order.
var legacySentinels = []struct {
	token string
	kind  ConstraintKind
}{
	{" unique constraint ", ConstraintUnique},
	{" foreign key constraint ", ConstraintForeignKey},
	{" exclusion constraint ", ConstraintExclusion},
	{" check constraint ", ConstraintCheck},
}

// ToConstraints decodes a driver error into its constraint violations.
// Structured errors (a recognized SQLSTATE code plus a constraint name)
// decode directly; otherwise the message is scanned for one of the
// four legacy sentinel substrings. Anything else yields an empty list;
// non-constraint errors are the caller's problem, not this function's.
func ToConstraints(err DriverError) []Constraint {
	if kind, ok := sqlStateToKind[err.Code]; ok && err.ConstraintName != "" {
		return []Constraint{{Kind: kind, Name: err.ConstraintName}}
	}
	return legacyToConstraints(err.Message)
}

// legacyToConstraints mirrors the split-on-literal-substring approach
// of pre-9.2 PostgreSQL error messages without trying to second-guess
// it on localized or truncated server text.
func legacyToConstraints(message string) []Constraint {
	for _, s := range legacySentinels {
		idx := strings.Index(message, s.token)
		if idx < 0 {
			continue
		}
		rest := message[idx+len(s.token):]
		if s.kind == ConstraintForeignKey {
			if onIdx := strings.Index(rest, " on table "); onIdx >= 0 {
				rest = rest[:onIdx]
			}
		}
		name := extractQuotedName(rest)
		if name == "" {
			continue
		}
		return []Constraint{{Kind: s.kind, Name: name}}
	}
	return nil
}

// extractQuotedName strips the first double-quoted token off the front
// of s, the shape PostgreSQL wraps a constraint name in.
func extractQuotedName(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, `"`) {
		return ""
	}
	end := strings.Index(s[1:], `"`)
	if end < 0 {
		return ""
	}
	return s[1 : end+1]
}

// LogLevel is the log-level side of a classified DDL notice.
type LogLevel string

// LogLevel variants.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

var severityToLevel = map[string]LogLevel{
	"DEBUG":   LevelDebug,
	"LOG":     LevelInfo,
	"INFO":    LevelInfo,
	"NOTICE":  LevelInfo,
	"WARNING": LevelWarn,
	"ERROR":   LevelError,
	"FATAL":   LevelError,
	"PANIC":   LevelError,
}

// DDLNotice is one server notice a DDL statement produced, before
// classification.
type DDLNotice struct {
	Severity string
	Text     string
}

// LogEntry is one classified (level, text, metadata) tuple.
type LogEntry struct {
	Level    LogLevel
	Text     string
	Metadata []string
}

// DDLLogs classifies DDL notices by a static severity -> level map,
// with unrecognized severities treated as info.
func DDLLogs(notices []DDLNotice) []LogEntry {
	out := make([]LogEntry, len(notices))
	for i, n := range notices {
		level, ok := severityToLevel[n.Severity]
		if !ok {
			level = LevelInfo
		}
		out[i] = LogEntry{Level: level, Text: n.Text, Metadata: nil}
	}
	return out
}

// TableExistsQuery returns the SQL and parameters for checking whether
// a table exists in the current schema.
func TableExistsQuery(name string) (string, []string) {
	return "SELECT true FROM information_schema.tables WHERE table_name = $1 AND table_schema = current_schema() LIMIT 1", []string{name}
}
