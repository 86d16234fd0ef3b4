package services

import "fmt"

// ValidationError reports invalid filter input. The service state is
// untouched when one is returned: the previously published donors and
// metrics stay valid.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DataLoadError reports a failed dataset load from the configured source.
// The engine does not retry and does not fall back to an empty dataset on
// its own; callers own the retry/fallback policy.
type DataLoadError struct {
	Err error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("dataset load failed: %v", e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}
