package listening

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestMachine(silence, clear time.Duration) (*Machine, *snapshotLog) {
	log := &snapshotLog{}
	m := NewMachine(Config{SilenceWindow: silence, TextClearWindow: clear}, log.record)
	return m, log
}

type snapshotLog struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (l *snapshotLog) record(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snaps = append(l.snaps, s)
}

func (l *snapshotLog) states() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]State, 0, len(l.snaps))
	for _, s := range l.snaps {
		out = append(out, s.State)
	}
	return out
}

func TestStartEntersListening(t *testing.T) {
	m, _ := newTestMachine(time.Minute, time.Minute)
	defer m.Close()

	if err := m.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Snapshot().State; got != StateListening {
		t.Fatalf("state=%v, want listening", got)
	}
	// Second start is a no-op.
	if err := m.Start(); err != nil {
		t.Fatalf("restart while listening: %v", err)
	}
}

func TestStartRejectedWhileProcessing(t *testing.T) {
	m, _ := newTestMachine(time.Minute, time.Minute)
	defer m.Close()

	if err := m.FinalResult("two lattes"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Start(); !errors.Is(err, ErrBusy) {
		t.Fatalf("err=%v, want ErrBusy", err)
	}
}

func TestFinalResultFromListeningAndIdle(t *testing.T) {
	m, _ := newTestMachine(time.Minute, time.Minute)
	defer m.Close()

	_ = m.Start()
	if err := m.FinalResult("an americano"); err != nil {
		t.Fatalf("final from listening: %v", err)
	}
	if got := m.Snapshot().State; got != StateProcessing {
		t.Fatalf("state=%v, want processing", got)
	}
	m.Complete()

	// Auto-stop may land the machine in idle before the recognizer delivers
	// its final text; the result must still be accepted.
	if err := m.FinalResult("a latte"); err != nil {
		t.Fatalf("final from idle: %v", err)
	}
}

func TestFinalResultRejectedWhileProcessing(t *testing.T) {
	m, _ := newTestMachine(time.Minute, time.Minute)
	defer m.Close()

	_ = m.FinalResult("first order")
	if err := m.FinalResult("second order"); !errors.Is(err, ErrBusy) {
		t.Fatalf("err=%v, want ErrBusy", err)
	}
}

func TestSilenceTimeoutAutoStops(t *testing.T) {
	m, _ := newTestMachine(30*time.Millisecond, time.Minute)
	defer m.Close()

	_ = m.Start()
	_ = m.PartialResult("ameri")

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if m.Snapshot().State == StateIdle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("machine did not auto-stop after silence window")
}

func TestPartialResultResetsSilenceWindow(t *testing.T) {
	m, _ := newTestMachine(60*time.Millisecond, time.Minute)
	defer m.Close()

	_ = m.Start()
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		if err := m.PartialResult("more text"); err != nil {
			t.Fatalf("partial at step %d: %v (machine auto-stopped too early)", i, err)
		}
	}
	if got := m.Snapshot().State; got != StateListening {
		t.Fatalf("state=%v, want listening while partials keep arriving", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m, _ := newTestMachine(time.Minute, time.Minute)
	defer m.Close()

	m.Stop() // idle: no-op
	_ = m.Start()
	m.Stop()
	if got := m.Snapshot().State; got != StateIdle {
		t.Fatalf("state=%v, want idle", got)
	}
	m.Stop() // again: still fine
}

func TestRecognizedTextClearsAfterWindow(t *testing.T) {
	m, _ := newTestMachine(time.Minute, 40*time.Millisecond)
	defer m.Close()

	_ = m.FinalResult("a lemonade")
	m.Complete()
	if got := m.Snapshot().RecognizedText; got != "a lemonade" {
		t.Fatalf("text=%q, want it displayed before the window", got)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if m.Snapshot().RecognizedText == "" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("recognized text was not cleared")
}

func TestTransitionsAreReported(t *testing.T) {
	m, log := newTestMachine(time.Minute, time.Minute)
	defer m.Close()

	_ = m.Start()
	_ = m.FinalResult("order")
	m.Complete()

	want := []State{StateListening, StateProcessing, StateIdle}
	got := log.states()
	if len(got) != len(want) {
		t.Fatalf("transitions=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transition %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
