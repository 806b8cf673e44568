package app

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/psitop/psitop/pkg/types"
)

// scriptedSampler replays a fixed sequence of cpu.some cumulative readings.
type scriptedSampler struct {
	values []uint64
	idx    int
}

func (s *scriptedSampler) Sample() map[types.Series]types.Reading {
	v := s.values[len(s.values)-1]
	if s.idx < len(s.values) {
		v = s.values[s.idx]
		s.idx++
	}
	return map[types.Series]types.Reading{
		{Tag: types.TagCPU, Kind: types.KindSome}: {TotalMicros: v},
	}
}

func newTestApp(sampler Sampler, opts Options) *App {
	return New(sampler, nil, zap.NewNop().Sugar(), opts)
}

func TestTickScenarioDetectsEveryTick(t *testing.T) {
	// cpu.some cumulative [0, 100000, 400000] micros at one-second ticks
	// with threshold 5%: ticks 1 and 2 each record one event (10%, 30%).
	a := newTestApp(&scriptedSampler{values: []uint64{0, 100000, 400000}},
		Options{Threshold: 5, Interval: 1, Period: time.Second})

	base := time.Now()
	tickNum := 0
	a.now = func() time.Time { return base.Add(time.Duration(tickNum) * time.Second) }

	for tickNum = 0; tickNum < 3; tickNum++ {
		before := a.history.Len()
		a.tick()
		got := a.history.Len() - before
		want := 1
		if tickNum == 0 {
			want = 0
		}
		if got != want {
			t.Fatalf("tick %d: %d new events, want %d", tickNum, got, want)
		}
	}

	events := a.history.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events total, got %d", len(events))
	}
	if events[0].Percent != 30.0 || events[1].Percent != 10.0 {
		t.Fatalf("unexpected percents newest-first: %.3f, %.3f", events[0].Percent, events[1].Percent)
	}
	if a.summary.Samples(types.Series{Tag: types.TagCPU, Kind: types.KindSome}) != 2 {
		t.Fatal("summary should have recorded two 1-step rates")
	}
}

func TestAdvanceDeadlineIsDriftFree(t *testing.T) {
	a := newTestApp(&scriptedSampler{values: []uint64{0}}, Options{Threshold: 20, Interval: 1, Period: time.Second})

	base := time.Now()
	a.deadline = base
	current := base
	a.now = func() time.Time { return current }

	// A cycle that overran by 2.5 periods: the deadline advances by whole
	// periods past now, never resetting to now+period.
	current = base.Add(2500 * time.Millisecond)
	a.advanceDeadline()
	if want := base.Add(3 * time.Second); !a.deadline.Equal(want) {
		t.Fatalf("deadline %v, want %v", a.deadline, want)
	}

	// A normal cycle advances exactly one period.
	current = a.deadline
	a.advanceDeadline()
	if want := base.Add(4 * time.Second); !a.deadline.Equal(want) {
		t.Fatalf("deadline %v, want %v", a.deadline, want)
	}
}

func TestHandleKeyThresholdClamping(t *testing.T) {
	a := newTestApp(&scriptedSampler{values: []uint64{0}}, Options{Threshold: 10, Interval: 1, Period: time.Second})
	ctx := context.Background()

	a.handleKey(ctx, 't')
	if a.threshold != 5 {
		t.Fatalf("threshold after one lower: %d", a.threshold)
	}
	for i := 0; i < 5; i++ {
		a.handleKey(ctx, 't')
	}
	if a.threshold != 5 {
		t.Fatalf("lowering at the floor must stay clamped at 5, got %d", a.threshold)
	}

	for i := 0; i < 30; i++ {
		a.handleKey(ctx, 'T')
	}
	if a.threshold != 95 {
		t.Fatalf("raising must clamp at 95, got %d", a.threshold)
	}
	a.handleKey(ctx, 'T')
	if a.threshold != 95 {
		t.Fatalf("raising at the ceiling must be idempotent, got %d", a.threshold)
	}
}

func TestHandleKeyQuitAndToggles(t *testing.T) {
	a := newTestApp(&scriptedSampler{values: []uint64{0}}, Options{Threshold: 20, Interval: 1, Period: time.Second})
	ctx := context.Background()

	for _, key := range []byte{'q', 'Q', 0x03} {
		quit, err := a.handleKey(ctx, key)
		if err != nil || !quit {
			t.Fatalf("key %q should quit, got quit=%t err=%v", key, quit, err)
		}
	}

	if quit, _ := a.handleKey(ctx, 'b'); quit || !a.brief {
		t.Fatal("b should toggle brief mode on")
	}
	a.handleKey(ctx, 'b')
	if a.brief {
		t.Fatal("b should toggle brief mode off")
	}
	a.handleKey(ctx, '?')
	if !a.help {
		t.Fatal("? should toggle help mode")
	}
}

func TestAwaitKeyUnblocksOnKeystroke(t *testing.T) {
	a := newTestApp(&scriptedSampler{values: []uint64{0}}, Options{Threshold: 20, Interval: 1, Period: time.Second})
	a.keys <- 'x'

	done := make(chan struct{})
	go func() {
		a.awaitKey(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("awaitKey did not return after a keystroke")
	}
}

func TestAwaitKeyUnblocksOnCancellation(t *testing.T) {
	// Cancellation must release the dump prompt even when no byte ever
	// arrives, as with a signal delivered while the terminal is cooked.
	a := newTestApp(&scriptedSampler{values: []uint64{0}}, Options{Threshold: 20, Interval: 1, Period: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		a.awaitKey(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("awaitKey did not return after cancellation")
	}
}

func TestNextIntervalCycles(t *testing.T) {
	got := []int{1}
	iv := 1
	for i := 0; i < len(types.EventIntervals); i++ {
		iv = nextInterval(iv)
		got = append(got, iv)
	}
	want := []int{1, 3, 10, 60, 300, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("interval cycle %v, want %v", got, want)
		}
	}
	if nextInterval(42) != types.EventIntervals[0] {
		t.Fatal("unknown interval should reset the cycle")
	}
}
