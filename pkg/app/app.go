// Package app runs the dashboard: one single-threaded tick loop that
// samples, detects, renders, and then waits for input until the next
// deadline.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/psitop/psitop/pkg/report"
	"github.com/psitop/psitop/pkg/types"
	"github.com/psitop/psitop/pkg/ui"
)

// Sampler reads the current cumulative stall counters, one reading per
// series. It must not block beyond a file read.
type Sampler interface {
	Sample() map[types.Series]types.Reading
}

// Options are the validated startup settings.
type Options struct {
	Threshold int
	Interval  int
	Period    time.Duration
}

// App owns all mutable dashboard state. Everything is touched only by the
// goroutine running Run; keystrokes cross over on a channel so the
// single-writer invariant holds even though terminal reads need their own
// goroutine.
type App struct {
	src     Sampler
	sf      *ui.Surface
	log     *zap.SugaredLogger
	ring    *report.Ring
	history *report.History
	summary *report.Summary

	threshold int
	interval  int
	period    time.Duration
	brief     bool
	help      bool

	deadline time.Time
	keys     chan byte
	now      func() time.Time // stubbed in tests
}

// New assembles an App. sf may be nil for debug (no-surface) mode.
func New(src Sampler, sf *ui.Surface, log *zap.SugaredLogger, opts Options) *App {
	return &App{
		src:       src,
		sf:        sf,
		log:       log,
		ring:      report.NewRing(types.RingCapacity),
		history:   report.NewHistory(types.HistoryCapacity),
		summary:   report.NewSummary(),
		threshold: types.ClampThreshold(opts.Threshold),
		interval:  opts.Interval,
		period:    opts.Period,
		keys:      make(chan byte, 16),
		now:       time.Now,
	}
}

// Run drives the tick loop until the quit key or context cancellation.
func (a *App) Run(ctx context.Context) error {
	go a.readKeys(ctx)

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)
	defer signal.Stop(winch)

	a.deadline = a.now()
	for {
		a.tick()
		a.advanceDeadline()

		// Await input until the deadline. Each keystroke is dispatched and
		// the remaining wait recomputed.
		for {
			remaining := a.deadline.Sub(a.now())
			if remaining <= 0 {
				break
			}
			timer := time.NewTimer(remaining)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-winch:
				timer.Stop()
				a.render()
			case key := <-a.keys:
				timer.Stop()
				quit, err := a.handleKey(ctx, key)
				if err != nil {
					return err
				}
				if quit {
					return nil
				}
				a.render()
			case <-timer.C:
			}
		}
	}
}

// RunDebug prints the dashboard as plain text lines once per period, with a
// plain sleep instead of the input wait. Exit is via signal.
func (a *App) RunDebug(ctx context.Context) error {
	a.deadline = a.now()
	for {
		a.tick()
		for _, line := range a.dashboard().Lines() {
			fmt.Println(line.Text)
		}
		fmt.Println()

		a.advanceDeadline()
		timer := time.NewTimer(a.deadline.Sub(a.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// tick performs one sampling cycle: read counters, push the batch, record
// 1-step rates into the lifetime distribution, detect threshold events, and
// redraw.
func (a *App) tick() {
	now := a.now()
	a.ring.Push(report.Batch{At: now, Readings: a.src.Sample()})

	for _, series := range types.AllSeries() {
		if pct, ok := a.ring.Rate(series, 1); ok {
			a.summary.Record(series, pct)
		}
	}

	for _, e := range report.Detect(a.ring, a.threshold, a.interval, now) {
		a.history.Insert(e)
		a.log.Debugw("stall event",
			"series", e.Series.String(), "percent", e.Percent,
			"threshold", e.Threshold, "interval", e.Interval)
	}

	a.render()
}

// advanceDeadline moves the next tick deadline forward by whole periods
// until it lands in the future. Accumulating instead of resetting to
// now+period keeps the long-run tick rate at exactly one period even when a
// cycle overruns.
func (a *App) advanceDeadline() {
	now := a.now()
	for !a.deadline.After(now) {
		a.deadline = a.deadline.Add(a.period)
	}
}

func (a *App) handleKey(ctx context.Context, key byte) (quit bool, err error) {
	switch key {
	case 'q', 'Q', 0x03, 0x04: // raw mode delivers Ctrl-C/Ctrl-D as bytes
		return true, nil
	case 't':
		a.threshold = types.ClampThreshold(a.threshold - types.ThresholdStep)
	case 'T':
		a.threshold = types.ClampThreshold(a.threshold + types.ThresholdStep)
	case 'i':
		a.interval = nextInterval(a.interval)
	case 'b':
		a.brief = !a.brief
	case '?':
		a.help = !a.help
	case 'd':
		if err := a.dump(ctx); err != nil {
			return false, err
		}
	}
	return false, nil
}

// nextInterval cycles through the allowed event windows.
func nextInterval(current int) int {
	for i, iv := range types.EventIntervals {
		if iv == current {
			return types.EventIntervals[(i+1)%len(types.EventIntervals)]
		}
	}
	return types.EventIntervals[0]
}

// dump suspends the dashboard, prints the full event history and rate
// distribution to the normal screen, and resumes after the next keystroke.
func (a *App) dump(ctx context.Context) error {
	if a.sf == nil {
		return nil
	}
	a.sf.Suspend()
	for _, line := range ui.EventReport(a.history, a.summary, a.now()) {
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Println("press Enter to return")
	a.awaitKey(ctx)
	return a.sf.Resume()
}

// awaitKey blocks until the next keystroke or cancellation. The terminal is
// in cooked mode during the dump prompt, so a signal may arrive instead of a
// byte; it must unblock the prompt too.
func (a *App) awaitKey(ctx context.Context) {
	select {
	case <-a.keys:
	case <-ctx.Done():
	}
}

func (a *App) render() {
	if a.sf == nil {
		return
	}
	if a.help {
		ui.Draw(a.sf, ui.HelpLines(a.threshold, a.interval))
		return
	}
	ui.Draw(a.sf, a.dashboard().Lines())
}

func (a *App) dashboard() ui.Dashboard {
	now := a.now()
	return ui.Dashboard{
		Ring:      a.ring,
		History:   a.history,
		Threshold: a.threshold,
		Interval:  a.interval,
		Brief:     a.brief,
		Now:       now,
		Wall:      now,
	}
}

// ExitReport is printed after the surface is released so the session ends
// with the full history on the normal screen.
func (a *App) ExitReport() []string {
	return ui.EventReport(a.history, a.summary, a.now())
}

// readKeys feeds single keystrokes from stdin into the tick loop. It is the
// only other goroutine in the process and never touches shared state.
func (a *App) readKeys(ctx context.Context) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		select {
		case a.keys <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}
