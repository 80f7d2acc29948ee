package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Report is an archived analysis result (email engagement, page views)
// stored verbatim as rendered text.
type Report struct {
	ID        string
	Kind      string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// ToolCall is one audit-log entry for an MCP tool invocation.
type ToolCall struct {
	ID        string
	Tool      string
	ArgsJSON  string
	OK        bool
	CreatedAt time.Time
}
