// Package session ties one kiosk's speech stream, listening state machine,
// cart and interpreter together.
package session

import (
	"context"
	"log/slog"
	"sync"

	"kiosk/internal/interpreter"
	"kiosk/internal/listening"
)

const (
	busyMessage              = "Please wait, I am still handling your previous request."
	recognitionFailedMessage = "Speech recognition failed. Please try again."
)

// Speaker is the outbound side of the speech collaborator. The locale is the
// recognition locale the device announced; TTS engines use it to match the
// conversation language.
type Speaker interface {
	Speak(kioskID, text, locale string)
	PublishState(kioskID string, snap listening.Snapshot)
}

// Event is pushed to screen subscribers (the websocket gateway).
type Event struct {
	Type   string              `json:"type"` // "state" or "result"
	State  *listening.Snapshot `json:"state,omitempty"`
	Result *interpreter.Result `json:"result,omitempty"`
}

// Session is the per-kiosk ordering pipeline. One utterance is processed at a
// time; new input arriving while a command is in flight is rejected with a
// spoken busy notice rather than queued.
type Session struct {
	ID      string
	machine *listening.Machine
	interp  *interpreter.Service
	speaker Speaker
	logger  *slog.Logger

	subMu   sync.Mutex
	nextSub int
	subs    map[int]chan Event

	localeMu sync.Mutex
	locale   string
}

func New(id string, interp *interpreter.Service, speaker Speaker, cfg listening.Config, logger *slog.Logger) *Session {
	s := &Session{
		ID:      id,
		interp:  interp,
		speaker: speaker,
		logger:  logger,
		subs:    make(map[int]chan Event),
	}
	s.machine = listening.NewMachine(cfg, s.onStateChange)
	return s
}

func (s *Session) Machine() *listening.Machine {
	return s.machine
}

func (s *Session) Interpreter() *interpreter.Service {
	return s.interp
}

// SetLocale records the recognition locale the device announced on its start
// frame. Spoken replies carry it so the device TTS matches the language.
func (s *Session) SetLocale(locale string) {
	if locale == "" {
		return
	}
	s.localeMu.Lock()
	s.locale = locale
	s.localeMu.Unlock()
}

func (s *Session) Locale() string {
	s.localeMu.Lock()
	defer s.localeMu.Unlock()
	return s.locale
}

// Subscribe registers a screen listener. The returned cancel func must be
// called when the listener goes away.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 16)
	s.subs[id] = ch
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// StartListening opens the capture window. Rejected while processing.
func (s *Session) StartListening() error {
	if err := s.machine.Start(); err != nil {
		s.speak(busyMessage)
		return err
	}
	return nil
}

func (s *Session) StopListening() {
	s.machine.Stop()
}

// HandleRecognitionError stops capture and tells the user to retry.
func (s *Session) HandleRecognitionError(code string) {
	s.logger.Warn("speech recognition error", "session_id", s.ID, "code", code)
	s.machine.Stop()
	s.speak(recognitionFailedMessage)
}

func (s *Session) HandlePartial(text string) {
	if err := s.machine.PartialResult(text); err != nil {
		s.logger.Debug("partial result ignored", "session_id", s.ID, "error", err)
	}
}

// HandleFinal runs the full pipeline for a recognized utterance: move to
// processing, ask the intent service, apply the intent to the cart, speak the
// confirmation, return to idle.
func (s *Session) HandleFinal(ctx context.Context, text string) (interpreter.Result, error) {
	if err := s.machine.FinalResult(text); err != nil {
		s.speak(busyMessage)
		return interpreter.Result{}, err
	}
	defer s.machine.Complete()

	result, err := s.interp.HandleUtterance(ctx, text)
	if err != nil {
		s.logger.Warn("command failed", "session_id", s.ID, "utterance", text, "error", err)
	}
	s.speak(result.Message)
	s.broadcast(Event{Type: "result", Result: &result})
	return result, err
}

// SubmitText is the typed-input path. It shares the speech pipeline,
// including the processing guard.
func (s *Session) SubmitText(ctx context.Context, text string) (interpreter.Result, error) {
	return s.HandleFinal(ctx, text)
}

func (s *Session) Close() {
	s.machine.Close()
}

func (s *Session) speak(text string) {
	s.speaker.Speak(s.ID, text, s.Locale())
}

func (s *Session) onStateChange(snap listening.Snapshot) {
	s.speaker.PublishState(s.ID, snap)
	s.broadcast(Event{Type: "state", State: &snap})
}

func (s *Session) broadcast(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
