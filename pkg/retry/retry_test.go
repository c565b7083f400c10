package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("connection refused")

func fast(attempts int) Policy {
	return Policy{Attempts: attempts, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo(t *testing.T) {
	tests := []struct {
		name      string
		failures  int  // calls that fail before success
		transient bool // whether failures are marked transient
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"first try", 0, true, 3, 1, false},
		{"recovers", 2, true, 3, 3, false},
		{"exhausted", 5, true, 3, 3, true},
		{"permanent", 5, false, 3, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(t.Context(), fast(tt.attempts), func() error {
				calls++
				if calls <= tt.failures {
					if tt.transient {
						return Transient(errDown)
					}
					return errDown
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Do() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errDown) {
				t.Errorf("Do() = %v, want the underlying error", err)
			}
			if err != nil && IsTransient(err) {
				t.Error("the returned error should no longer be marked transient")
			}
		})
	}
}

func TestDoOnRetry(t *testing.T) {
	var seen []int
	p := fast(3)
	p.OnRetry = func(attempt int, err error) { seen = append(seen, attempt) }
	_ = Do(t.Context(), p, func() error { return Transient(errDown) })
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", seen)
	}
}

func TestDoCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	calls := 0
	err := Do(ctx, Policy{Attempts: 10, Delay: time.Hour}, func() error {
		calls++
		cancel()
		return Transient(errDown)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
	wrapped := errors.Join(errors.New("dial"), Transient(errDown))
	if !IsTransient(wrapped) {
		t.Error("IsTransient should see through wrapping")
	}
	if IsTransient(errDown) {
		t.Error("unmarked error reported transient")
	}
}
