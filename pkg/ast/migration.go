package ast

// RefAction is a FOREIGN KEY ON DELETE/ON UPDATE action.
type RefAction string

// RefAction variants; RefNone omits the clause entirely.
const (
	RefNone       RefAction = ""
	RefNilifyAll  RefAction = "nilify_all"
	RefDeleteAll  RefAction = "delete_all"
	RefUpdateAll  RefAction = "update_all"
	RefRestrict   RefAction = "restrict"
)

// ColumnType is the type side of a column change: a named SQL type, a
// serial/bigserial pseudo-type, or a foreign-key reference.
type ColumnType interface{ columnTypeNode() }

// NamedType is an ordinary column type, e.g. "string", "integer", "uuid".
// Array wraps it as "name[]".
type NamedType struct {
	Name  string
	Array bool
}

func (NamedType) columnTypeNode() {}

// SerialType is Postgres' serial/bigserial auto-increment pseudo-type.
type SerialType struct{ Big bool }

func (SerialType) columnTypeNode() {}

// ReferenceType makes a column a foreign key.
type ReferenceType struct{ Reference *Reference }

func (ReferenceType) columnTypeNode() {}

// Reference describes a foreign-key target and its referential actions.
type Reference struct {
	Table    string
	Column   string
	Prefix   string
	Type     ColumnType // target column's type, for the bigint/integer cast
	Name     string     // constraint name; defaults to "<table>_<col>_fkey"
	OnDelete RefAction
	OnUpdate RefAction
}

// ColumnOpts carries the per-column modifiers a column definition or
// alteration may set.
type ColumnOpts struct {
	PrimaryKey bool
	Null       *bool // nil = unspecified, else explicit NULL/NOT NULL
	Default    Expr
	Size       *int
	Precision  *int
	Scale      *int
	Comment    string
	From       *Reference // previous reference, for `modify` dropping the old fkey
}

// ColumnChangeKind enumerates the column operations a migration performs.
type ColumnChangeKind string

// ColumnChangeKind variants.
const (
	ColAdd              ColumnChangeKind = "add"
	ColAddIfNotExists   ColumnChangeKind = "add_if_not_exists"
	ColModify           ColumnChangeKind = "modify"
	ColRemove           ColumnChangeKind = "remove"
	ColRemoveIfExists   ColumnChangeKind = "remove_if_exists"
)

// ColumnChange is one column-level operation within a CREATE/ALTER TABLE.
type ColumnChange struct {
	Kind ColumnChangeKind
	Name string
	Type ColumnType
	Opts ColumnOpts
}

// Table names the table a DDL command targets.
type Table struct {
	Name    string
	Prefix  string
	Comment string
	Options []string // dialect-specific raw table options, PostgreSQL takes none
}

// Index describes a CREATE/DROP INDEX command.
type Index struct {
	Name         string
	Table        string
	Prefix       string
	Columns      []string
	Unique       bool
	Concurrently bool
	Using        string
	Where        Expr
	Comment      string
}

// Constraint describes a table-level CHECK or EXCLUDE constraint.
type Constraint struct {
	Name    string
	Table   string
	Prefix  string
	Check   Expr
	Exclude string // raw "USING gist (...)" body; mutually exclusive with Check
	Comment string
}

// Command is any DDL command execute_ddl accepts.
type Command interface{ commandNode() }

// CreateTable is "CREATE TABLE [IF NOT EXISTS] ... (...)".
type CreateTable struct {
	Table       Table
	IfNotExists bool
	Columns     []ColumnChange
}

func (CreateTable) commandNode() {}

// DropTable is "DROP TABLE [IF EXISTS] ...".
type DropTable struct {
	Table    Table
	IfExists bool
}

func (DropTable) commandNode() {}

// AlterTable is "ALTER TABLE ... <changes>".
type AlterTable struct {
	Table   Table
	Changes []ColumnChange
}

func (AlterTable) commandNode() {}

// CreateIndex is "CREATE [UNIQUE] INDEX [CONCURRENTLY] ...".
// IfNotExists wraps the statement in the DO $$ ... EXCEPTION guard and
// rejects Concurrently.
type CreateIndex struct {
	Index       Index
	IfNotExists bool
}

func (CreateIndex) commandNode() {}

// DropIndex is "DROP INDEX [CONCURRENTLY] [IF EXISTS] ...".
type DropIndex struct {
	Index        Index
	IfExists     bool
	Concurrently bool
}

func (DropIndex) commandNode() {}

// RenameTable is "ALTER TABLE ... RENAME TO ...".
type RenameTable struct {
	Prefix string
	From   string
	To     string
}

func (RenameTable) commandNode() {}

// RenameColumn is "ALTER TABLE ... RENAME COLUMN ... TO ...".
type RenameColumn struct {
	Table Table
	From  string
	To    string
}

func (RenameColumn) commandNode() {}

// CreateConstraint is "ALTER TABLE ... ADD CONSTRAINT ...".
type CreateConstraint struct {
	Constraint Constraint
}

func (CreateConstraint) commandNode() {}

// DropConstraint is "ALTER TABLE ... DROP CONSTRAINT [IF EXISTS] ...".
type DropConstraint struct {
	Constraint Constraint
	IfExists   bool
}

func (DropConstraint) commandNode() {}

// RawCommand passes a caller-supplied statement straight through.
type RawCommand struct{ SQL string }

func (RawCommand) commandNode() {}
