package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound       = errors.New("db: key not found")
	ErrKeyExists         = errors.New("db: key already exists")
	ErrIndexNotFound     = errors.New("db: index not found")
	ErrIndexExists       = errors.New("db: index already exists")
	ErrUnsupportedFilter = errors.New("db: unsupported filter")
	ErrTxAborted         = errors.New("db: transaction aborted")
)

// Op constants name the failing operation for error context.
// Valkey/Redis command names are used where one exists.
const (
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpAggregate   = "FT.AGGREGATE"
	OpCursorRead  = "FT.CURSOR READ"
	OpDel         = "DEL"
	OpExists      = "EXISTS"
	OpJSONGet     = "JSON.GET"
	OpJSONSet     = "JSON.SET"
	OpExec        = "EXEC"
	OpPing        = "PING"
	OpGet         = "GET"
	OpSet         = "SET"
	OpUpdate      = "UPDATE"
	OpQuery       = "QUERY"
	OpCommit      = "COMMIT"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
