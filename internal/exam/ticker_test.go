package exam

import (
	"testing"
	"time"

	"github.com/abhisek/examprep/internal/clock"
)

func TestTickerDeliversAndStops(t *testing.T) {
	clk := clock.NewManual(t0.Add(42 * time.Second))
	tk := StartTicker(t0, clk)

	select {
	case d := <-tk.C():
		if d != 42*time.Second {
			t.Errorf("elapsed = %v, want 42s", d)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no tick within 3s")
	}

	tk.Stop()
	tk.Stop()

	// Drain anything buffered before the close.
	for range tk.C() {
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := map[time.Duration]string{
		0:                 "00:00",
		59 * time.Second:  "00:59",
		61 * time.Second:  "01:01",
		-time.Second:      "00:00",
		125 * time.Minute: "125:00",
	}
	for d, want := range tests {
		if got := FormatElapsed(d); got != want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", d, got, want)
		}
	}
}
