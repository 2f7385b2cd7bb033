package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"quizbuzzer/internal/events"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultConfig(url, prefix string) Config {
	return Config{
		URL:           url,
		SubjectPrefix: prefix,
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Publisher mirrors archived room events onto NATS subjects of the form
// <prefix>.<room>.<type>.
type Publisher struct {
	nc     *nats.Conn
	pub    msgPublisher
	prefix string
}

func NewPublisher(cfg Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("quizbuzzer"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Info().Str("url", nc.ConnectedUrl()).Str("prefix", cfg.SubjectPrefix).Msg("connected to NATS")
	return &Publisher{nc: nc, pub: nc, prefix: cfg.SubjectPrefix}, nil
}

// Subject builds the subject a room event is published on.
func (p *Publisher) Subject(ev events.Event) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, token(ev.Room), token(string(ev.Type)))
}

// Write publishes every event of the batch. It stops at the first failure.
func (p *Publisher) Write(ctx context.Context, batch []events.Event) error {
	for _, ev := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := p.message(ev)
		if err != nil {
			return err
		}
		if err := p.pub.PublishMsg(msg); err != nil {
			return fmt.Errorf("publish to NATS: %w", err)
		}
		log.Debug().Str("subject", msg.Subject).Msg("published room event")
	}
	return nil
}

func (p *Publisher) message(ev events.Event) (*nats.Msg, error) {
	id := uuid.NewString()
	env := map[string]any{
		"eventId":   id,
		"eventType": ev.Type,
		"room":      ev.Room,
		"player":    ev.Player,
		"delta":     ev.Delta,
		"timestamp": ev.At.UTC(),
		"payload":   ev.Data,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return &nats.Msg{
		Subject: p.Subject(ev),
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(ev.Type)},
			"Room":       []string{ev.Room},
			"Event-ID":   []string{id},
		},
	}, nil
}

func (p *Publisher) Close() error {
	if p.nc != nil {
		return p.nc.Drain()
	}
	return nil
}

// token keeps a subject segment free of NATS separators and wildcards.
func token(s string) string {
	if s == "" {
		return "_"
	}
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}
