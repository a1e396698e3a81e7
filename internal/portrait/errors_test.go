package portrait

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyEditError(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancel2 := context.WithTimeout(context.Background(), -1)
	defer cancel2()

	existing := &EditError{Kind: KindNoImage, Issue: IssueAngle, Attempt: 1}
	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want EditErrorKind
	}{
		{"no image", context.Background(), fmt.Errorf("wrap: %w", ErrNoImage), KindNoImage},
		{"canceled err", context.Background(), context.Canceled, KindCanceled},
		{"deadline err", context.Background(), fmt.Errorf("rpc: %w", context.DeadlineExceeded), KindTimeout},
		{"canceled ctx", canceled, errors.New("transport closed"), KindCanceled},
		{"expired ctx", expired, errors.New("transport closed"), KindTimeout},
		{"model", context.Background(), errors.New("500"), KindModel},
		{"existing", context.Background(), existing, KindNoImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyEditError(tt.ctx, IssueLighting, 2, tt.err)
			if got.Kind != tt.want {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.want)
			}
			if got.Retryable() != (tt.want != KindCanceled) {
				t.Errorf("Retryable() = %v", got.Retryable())
			}
			if tt.err != existing && !errors.Is(got, tt.err) {
				t.Error("classified error does not unwrap to the cause")
			}
		})
	}
	if !IsTimeout(ClassifyEditError(expired, IssueAngle, 1, errors.New("x"))) {
		t.Error("IsTimeout() = false for expired context")
	}
}
