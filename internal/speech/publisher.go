// Package speech is the boundary to the kiosk's audio hardware: recognition
// results come in over a websocket stream, synthesized replies and state
// changes go out over MQTT, fire-and-forget.
package speech

import (
	"context"
	"encoding/json"
	"log/slog"

	paho "github.com/eclipse/paho.mqtt.golang"

	"kiosk/internal/listening"
)

type PublisherConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Publisher pushes speak/state messages to the kiosk devices. Publishing is
// best effort: the core never waits for an acknowledgment.
type Publisher struct {
	cfg    PublisherConfig
	client paho.Client
	logger *slog.Logger
}

func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	return &Publisher{cfg: cfg, logger: logger}
}

func (p *Publisher) Start(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(p.cfg.BrokerURL).
		SetClientID(p.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.logger.Error("mqtt connection lost", "error", err)
	})

	p.client = paho.NewClient(opts)
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	go func() {
		<-ctx.Done()
		p.client.Disconnect(100)
	}()

	return nil
}

// Speak sends text to the kiosk's TTS engine.
func (p *Publisher) Speak(kioskID, text, locale string) {
	if text == "" {
		return
	}
	message := map[string]string{"text": text}
	if locale != "" {
		message["locale"] = locale
	}
	payload, _ := json.Marshal(message)
	if token := p.client.Publish(TopicSpeak(p.cfg.TopicPrefix, kioskID), 0, false, payload); token.Wait() && token.Error() != nil {
		p.logger.Warn("publish speak failed", "kiosk_id", kioskID, "error", token.Error())
	}
}

// PublishState mirrors the listening machine state to the device.
func (p *Publisher) PublishState(kioskID string, snap listening.Snapshot) {
	payload, _ := json.Marshal(map[string]string{
		"state":           snap.State.String(),
		"recognized_text": snap.RecognizedText,
	})
	if token := p.client.Publish(TopicState(p.cfg.TopicPrefix, kioskID), 0, false, payload); token.Wait() && token.Error() != nil {
		p.logger.Warn("publish state failed", "kiosk_id", kioskID, "error", token.Error())
	}
}
