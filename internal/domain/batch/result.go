package batch

import "github.com/yash-quizizz/image-search/internal/domain"

// ItemStatus is the write outcome of a single document.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the acknowledgement of one document in a bulk write.
type Result struct {
	index  domain.Kind
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful result.
func NewOK(index domain.Kind, id string) Result {
	return Result{index: index, id: id, status: StatusOK}
}

// NewError creates a failed result.
func NewError(index domain.Kind, id string, err error) Result {
	return Result{index: index, id: id, status: StatusError, err: err}
}

// Index returns the target index of the document.
func (r Result) Index() domain.Kind { return r.index }

// ID returns the document identifier.
func (r Result) ID() string { return r.id }

// Status returns the write outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
