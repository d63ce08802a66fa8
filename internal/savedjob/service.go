package savedjob

import "context"

// Service is the remote store of a single job seeker's bookmarks.
// Every call either fully succeeds or fails with a *TransportError.
type Service interface {
	ListSaved(ctx context.Context) ([]SavedJob, error)
	Save(ctx context.Context, jobID string) error
	Unsave(ctx context.Context, jobID string) error
}

const (
	OpListSaved = "list_saved"
	OpSave      = "save"
	OpUnsave    = "unsave"
)

// TransportError is returned when a Service call could not complete:
// network failures, authentication problems or a rejection by the service.
type TransportError struct {
	Op         string
	JobID      string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
