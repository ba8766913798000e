package exam

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abhisek/examprep/internal/clock"
)

// Ticker publishes the running elapsed time of a session once per second.
// It only reads the start time and the clock. Stop must be called when the
// session ends or its view goes away.
type Ticker struct {
	cron *cron.Cron
	ch   chan time.Duration
	once sync.Once
}

// StartTicker begins ticking for a session that started at startedAt.
// Ticks are dropped when the reader falls behind.
func StartTicker(startedAt time.Time, clk clock.Clock) *Ticker {
	t := &Ticker{
		cron: cron.New(),
		ch:   make(chan time.Duration, 1),
	}
	// A constant "@every" schedule always parses.
	_, _ = t.cron.AddFunc("@every 1s", func() {
		select {
		case t.ch <- clk.Now().Sub(startedAt):
		default:
		}
	})
	t.cron.Start()
	return t
}

// C delivers elapsed durations. It is closed by Stop.
func (t *Ticker) C() <-chan time.Duration { return t.ch }

// Stop cancels the schedule, waits for an in-flight tick and closes C.
// Calling it more than once is harmless.
func (t *Ticker) Stop() {
	t.once.Do(func() {
		<-t.cron.Stop().Done()
		close(t.ch)
	})
}

// FormatElapsed renders a duration as MM:SS.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
