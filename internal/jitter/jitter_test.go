package jitter

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRange_DrawWithinBounds(t *testing.T) {
	r := Seconds(3500, 3600)
	for i := 0; i < 500; i++ {
		d := r.Draw()
		if d < 3500*time.Second || d > 3600*time.Second {
			t.Fatalf("draw %v out of %s", d, r)
		}
		if d%time.Second != 0 {
			t.Fatalf("second bounds should give whole seconds, got %v", d)
		}
	}
}

func TestRange_DrawFixed(t *testing.T) {
	if got := Fixed(5 * time.Millisecond).Draw(); got != 5*time.Millisecond {
		t.Errorf("expected 5ms, got %v", got)
	}
	if got := (Range{}).Draw(); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestRange_DrawSubSecond(t *testing.T) {
	r := Range{Min: time.Millisecond, Max: 3 * time.Millisecond}
	for i := 0; i < 100; i++ {
		d := r.Draw()
		if d < r.Min || d > r.Max {
			t.Fatalf("draw %v out of %s", d, r)
		}
	}
}

func TestRange_Validate(t *testing.T) {
	if err := Seconds(10, 5).Validate(); err == nil {
		t.Error("expected error for min > max")
	}
	if err := Seconds(-1, 5).Validate(); err == nil {
		t.Error("expected error for negative bound")
	}
	if err := Seconds(5, 5).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefaultPolicy_Valid(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy should be valid: %v", err)
	}
	if p.ErrorBackoff != Seconds(60, 120) {
		t.Errorf("unexpected error backoff %s", p.ErrorBackoff)
	}
	if p.TokenLifetime != Seconds(3500, 3600) {
		t.Errorf("unexpected token lifetime %s", p.TokenLifetime)
	}
}

func TestPolicy_ValidateNamesField(t *testing.T) {
	p := DefaultPolicy()
	p.InterTask = Seconds(10, 5)

	err := p.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); len(got) < 10 || got[:10] != "inter_task" {
		t.Errorf("error should name the field, got %q", got)
	}
}

func TestSleep_Completes(t *testing.T) {
	start := time.Now()
	if err := Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Error("should have waited")
	}
}

func TestSleep_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, 10*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSleep_ZeroRespectsCancel(t *testing.T) {
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("zero sleep should succeed, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, 0); err == nil {
		t.Error("zero sleep on cancelled context should report cancellation")
	}
}
