package extraction

import "fmt"

// UnavailableError reports that every configured LLM provider was
// exhausted or too few batches succeeded. The run must fail; the pipeline
// never substitutes synthetic keywords.
type UnavailableError struct {
	Message string
	Cause   error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction unavailable: %s", e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// BatchError records a single failed batch. Absorbed into the run unless
// too many accumulate.
type BatchError struct {
	Batch   int
	Message string
	Cause   error
}

func (e *BatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("batch %d: %s: %v", e.Batch, e.Message, e.Cause)
	}
	return fmt.Sprintf("batch %d: %s", e.Batch, e.Message)
}

func (e *BatchError) Unwrap() error {
	return e.Cause
}
