package portrait

import (
	"context"
	"errors"
	"fmt"
)

// EditErrorKind classifies why a single edit attempt produced no usable image.
type EditErrorKind string

// Edit error kinds.
const (
	KindNoImage  EditErrorKind = "no_image" // model answered without an image payload
	KindTimeout  EditErrorKind = "timeout"  // per-call budget exceeded
	KindModel    EditErrorKind = "model"    // transport or API error
	KindCanceled EditErrorKind = "canceled" // request context canceled
)

// ErrNoImage is wrapped by EditError when the model returned text only.
var ErrNoImage = errors.New("no image returned in response")

// EditError is the failure value of one edit attempt. It never crosses a
// pipeline boundary: the pipeline folds it into the step record.
type EditError struct {
	Kind    EditErrorKind
	Issue   IssueType
	Attempt int
	Err     error
}

func (e *EditError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s edit attempt %d: %s", e.Issue.Label(), e.Attempt, e.Kind)
	}
	return fmt.Sprintf("%s edit attempt %d: %s: %v", e.Issue.Label(), e.Attempt, e.Kind, e.Err)
}

func (e *EditError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed. Cancellation of the
// whole request is the only non-retryable kind.
func (e *EditError) Retryable() bool {
	return e.Kind != KindCanceled
}

// ClassifyEditError wraps err as an EditError, using ctx to tell a per-call
// timeout apart from cancellation of the parent request.
func ClassifyEditError(ctx context.Context, issue IssueType, attempt int, err error) *EditError {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee
	}

	kind := KindModel
	switch {
	case errors.Is(err, ErrNoImage):
		kind = KindNoImage
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case ctx != nil && ctx.Err() != nil:
		if errors.Is(ctx.Err(), context.Canceled) {
			kind = KindCanceled
		} else {
			kind = KindTimeout
		}
	}
	return &EditError{Kind: kind, Issue: issue, Attempt: attempt, Err: err}
}

// IsTimeout reports whether err is an EditError caused by a timeout.
func IsTimeout(err error) bool {
	var ee *EditError
	return errors.As(err, &ee) && ee.Kind == KindTimeout
}
