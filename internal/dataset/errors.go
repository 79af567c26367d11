package dataset

import "fmt"

// DataSourceError is fatal for a render pass: the dataset file is absent,
// unreadable, or missing a required column. No partial load is produced.
type DataSourceError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataset %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("dataset %s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying cause
func (e *DataSourceError) Unwrap() error {
	return e.Err
}
