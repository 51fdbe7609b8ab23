package timeutil

import (
	"testing"
	"time"
)

func TestRealClockNow(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	if now.Before(before) {
		t.Errorf("Now = %v, before %v", now, before)
	}
	if clock.Since(before) < 0 {
		t.Error("Since returned negative duration")
	}
}

func TestMockClockNowAndAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	if got := clock.Now(); !got.Equal(start) {
		t.Errorf("Now = %v, want %v", got, start)
	}

	clock.Advance(90 * time.Second)
	if got := clock.Since(start); got != 90*time.Second {
		t.Errorf("Since = %v, want 90s", got)
	}
}

func TestMockClockAfterFiresOnAdvance(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	ch := clock.After(5 * time.Second)

	clock.Advance(3 * time.Second)
	select {
	case <-ch:
		t.Fatal("After fired before deadline")
	default:
	}

	clock.Advance(2 * time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("After did not fire at deadline")
	}
}

func TestMockClockAfterFiresOnce(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	ch := clock.After(time.Second)
	clock.Advance(time.Second)
	<-ch

	clock.Advance(time.Second)
	select {
	case <-ch:
		t.Fatal("After fired twice")
	default:
	}
}
