// Package listening drives the capture lifecycle of one kiosk session:
// idle -> listening -> processing -> idle, with a silence timeout that
// auto-stops capture and a display window after which the last recognized
// text clears.
package listening

import (
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy means a previous command is still being processed. New input is
	// rejected, not queued.
	ErrBusy = errors.New("previous command is still processing")

	// ErrNotListening means a result event arrived while capture was neither
	// active nor just auto-stopped.
	ErrNotListening = errors.New("not listening")
)

type Config struct {
	// SilenceWindow is how long to wait after the last partial result before
	// auto-stopping capture.
	SilenceWindow time.Duration

	// TextClearWindow is how long the last recognized text stays on screen.
	TextClearWindow time.Duration
}

const (
	defaultSilenceWindow   = 2 * time.Second
	defaultTextClearWindow = 5 * time.Second
)

// Snapshot is the externally visible machine state.
type Snapshot struct {
	State          State  `json:"state"`
	RecognizedText string `json:"recognized_text"`
}

// Machine is safe for concurrent use. The onChange callback fires outside the
// lock, after every observable change.
type Machine struct {
	mu             sync.Mutex
	state          State
	recognizedText string
	silenceTimer   *time.Timer
	textClearTimer *time.Timer
	cfg            Config
	onChange       func(Snapshot)
}

func NewMachine(cfg Config, onChange func(Snapshot)) *Machine {
	if cfg.SilenceWindow <= 0 {
		cfg.SilenceWindow = defaultSilenceWindow
	}
	if cfg.TextClearWindow <= 0 {
		cfg.TextClearWindow = defaultTextClearWindow
	}
	return &Machine{cfg: cfg, onChange: onChange}
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, RecognizedText: m.recognizedText}
}

// Start begins capture. Starting an already listening machine is a no-op;
// starting while a command is processing is rejected.
func (m *Machine) Start() error {
	m.mu.Lock()
	switch m.state {
	case StateProcessing:
		m.mu.Unlock()
		return ErrBusy
	case StateListening:
		m.mu.Unlock()
		return nil
	}
	m.state = StateListening
	m.recognizedText = ""
	m.resetSilenceTimerLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

// PartialResult records interim recognition text and pushes the silence
// window out.
func (m *Machine) PartialResult(text string) error {
	m.mu.Lock()
	if m.state != StateListening {
		m.mu.Unlock()
		return ErrNotListening
	}
	m.recognizedText = text
	m.resetSilenceTimerLocked()
	m.resetTextClearTimerLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

// FinalResult moves to processing. It is accepted from Listening and from
// Idle, because the silence timeout may have auto-stopped capture before the
// recognizer delivered its final text.
func (m *Machine) FinalResult(text string) error {
	m.mu.Lock()
	if m.state == StateProcessing {
		m.mu.Unlock()
		return ErrBusy
	}
	m.stopSilenceTimerLocked()
	m.state = StateProcessing
	m.recognizedText = text
	m.resetTextClearTimerLocked()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

// Complete returns to idle after command dispatch finishes.
func (m *Machine) Complete() {
	m.mu.Lock()
	if m.state != StateProcessing {
		m.mu.Unlock()
		return
	}
	m.state = StateIdle
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
}

// Stop ends capture. Idempotent; a no-op when idle, rejected only by the
// state it cannot interrupt (processing keeps running).
func (m *Machine) Stop() {
	m.mu.Lock()
	if m.state != StateListening {
		m.mu.Unlock()
		return
	}
	m.stopSilenceTimerLocked()
	m.state = StateIdle
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
}

// Close cancels all pending timers.
func (m *Machine) Close() {
	m.mu.Lock()
	m.stopSilenceTimerLocked()
	if m.textClearTimer != nil {
		m.textClearTimer.Stop()
		m.textClearTimer = nil
	}
	m.mu.Unlock()
}

// Timers are always stopped before being rescheduled so callbacks never stack.

func (m *Machine) resetSilenceTimerLocked() {
	m.stopSilenceTimerLocked()
	m.silenceTimer = time.AfterFunc(m.cfg.SilenceWindow, m.onSilenceTimeout)
}

func (m *Machine) stopSilenceTimerLocked() {
	if m.silenceTimer != nil {
		m.silenceTimer.Stop()
		m.silenceTimer = nil
	}
}

func (m *Machine) resetTextClearTimerLocked() {
	if m.textClearTimer != nil {
		m.textClearTimer.Stop()
	}
	m.textClearTimer = time.AfterFunc(m.cfg.TextClearWindow, m.onTextClear)
}

func (m *Machine) onSilenceTimeout() {
	m.mu.Lock()
	if m.state != StateListening {
		m.mu.Unlock()
		return
	}
	m.silenceTimer = nil
	m.state = StateIdle
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
}

// onTextClear clears the displayed text independent of the capture state.
func (m *Machine) onTextClear() {
	m.mu.Lock()
	if m.recognizedText == "" {
		m.mu.Unlock()
		return
	}
	m.recognizedText = ""
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{State: m.state, RecognizedText: m.recognizedText}
}

func (m *Machine) notify(snap Snapshot) {
	if m.onChange != nil {
		m.onChange(snap)
	}
}
