package transition

import (
	"errors"
	"fmt"

	"storyforge/internal/stage"
)

// ErrTriggerRequired indicates a transition request arrived without the
// mandatory trigger classifier.
var ErrTriggerRequired = errors.New("trigger event is required")

// ErrReasonRequired indicates a forced transition arrived without a reason.
var ErrReasonRequired = errors.New("forced transition requires a reason")

// ErrBatchTooLarge indicates a batch exceeded the configured size bound.
var ErrBatchTooLarge = errors.New("batch exceeds configured maximum size")

// InvalidTransitionError reports an edge the stage graph does not allow. The
// request mutated nothing; the caller must decide how to proceed.
type InvalidTransitionError struct {
	From stage.Stage
	To   stage.Stage
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

// BatchError reports the first failing request of a batch. None of the
// batch's changes were committed.
type BatchError struct {
	Index  int
	ItemID string
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch request %d (item %s): %v", e.Index, e.ItemID, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
