package resilience

import (
	"errors"
	"testing"
	"time"
)

var errProbe = errors.New("probe failed")

func TestCircuitOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     time.Minute,
	})

	for i := 0; i < 3; i++ {
		if err := cb.Execute(func() error { return errProbe }); !errors.Is(err, errProbe) {
			t.Fatalf("attempt %d: err = %v, want probe error", i, err)
		}
	}
	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("state = %v after threshold failures, want open", got)
	}

	err := cb.Execute(func() error {
		t.Fatal("function executed while circuit open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     10 * time.Millisecond,
	})

	if err := cb.Execute(func() error { return errProbe }); !errors.Is(err, errProbe) {
		t.Fatalf("err = %v, want probe error", err)
	}
	if got := cb.GetState(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	time.Sleep(20 * time.Millisecond)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("half-open probe err = %v, want nil", err)
	}
	if got := cb.GetState(); got != StateClosed {
		t.Errorf("state = %v after successful probe, want closed", got)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     10 * time.Millisecond,
	})

	cb.Execute(func() error { return errProbe })
	time.Sleep(20 * time.Millisecond)
	cb.Execute(func() error { return errProbe })

	if got := cb.GetState(); got != StateOpen {
		t.Errorf("state = %v after failed half-open probe, want open", got)
	}
}
