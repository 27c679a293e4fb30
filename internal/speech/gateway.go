package speech

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"kiosk/internal/session"
)

// Frame is one message on the recognition stream. The kiosk front end sends
// start/stop lifecycle frames and recognition results; result frames may also
// use the bare {text, is_final} shape of the ASR bridge.
type Frame struct {
	Type    string `json:"type,omitempty"` // start | stop | ended | partial | final | error
	Text    string `json:"text,omitempty"`
	IsFinal bool   `json:"is_final,omitempty"`
	Error   string `json:"error,omitempty"`
	Locale  string `json:"locale,omitempty"`
}

// Gateway upgrades /v1/kiosk/{id}/speech connections and bridges recognition
// frames into the session pipeline, pushing state and result events back down
// the same socket.
type Gateway struct {
	sessions *session.Manager
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewGateway(sessions *session.Manager, logger *slog.Logger) *Gateway {
	return &Gateway{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request, kioskID string) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", "kiosk_id", kioskID, "error", err)
		return
	}
	defer conn.Close()

	sess := g.sessions.GetOrCreate(kioskID)
	events, cancel := sess.Subscribe()
	defer cancel()

	var writeMu sync.Mutex
	writeJSON := func(v any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(v); err != nil {
			g.logger.Debug("websocket write failed", "kiosk_id", kioskID, "error", err)
		}
	}

	ctx, stop := context.WithCancel(r.Context())
	defer stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				writeJSON(ev)
			}
		}
	}()

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			g.logger.Debug("skip invalid frame", "kiosk_id", kioskID, "error", err)
			continue
		}
		g.dispatch(ctx, sess, frame)
	}
}

func (g *Gateway) dispatch(ctx context.Context, sess *session.Session, frame Frame) {
	switch frame.Type {
	case "start":
		sess.SetLocale(frame.Locale)
		if err := sess.StartListening(); err != nil {
			g.logger.Debug("start rejected", "session_id", sess.ID, "error", err)
		}
	case "stop", "ended":
		// "ended" is the device reporting that capture finished on its own;
		// the session treats it like an explicit stop.
		sess.StopListening()
	case "partial":
		sess.HandlePartial(frame.Text)
	case "final":
		g.processFinal(ctx, sess, frame.Text)
	case "error":
		sess.HandleRecognitionError(frame.Error)
	case "":
		// Bare ASR result shape.
		if frame.IsFinal {
			g.processFinal(ctx, sess, frame.Text)
		} else {
			sess.HandlePartial(frame.Text)
		}
	default:
		g.logger.Debug("skip unknown frame type", "session_id", sess.ID, "type", frame.Type)
	}
}

// processFinal runs the command pipeline off the read loop so stop frames
// stay responsive. Overlapping finals are rejected by the state machine's
// processing guard.
func (g *Gateway) processFinal(ctx context.Context, sess *session.Session, text string) {
	go func() {
		if _, err := sess.HandleFinal(ctx, text); err != nil {
			g.logger.Debug("final result rejected or failed", "session_id", sess.ID, "error", err)
		}
	}()
}
