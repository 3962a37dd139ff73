/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package natsutil publishes ecgprobe results as CloudEvents on NATS.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/ecgprobe/pkg/logger"
	"github.com/carverauto/ecgprobe/pkg/models"
)

const (
	// DefaultSubject carries header decode events.
	DefaultSubject = "ecgprobe.header.decoded"

	defaultDrainTimeout = 5 * time.Second
)

var (
	errNATSURLRequired = errors.New("events.nats_url is required when events are enabled")
	errInvalidSubject  = errors.New("events.subject must not contain wildcards or whitespace")
)

// EventsConfig controls publishing of decode results.
type EventsConfig struct {
	Enabled bool   `json:"enabled"`
	NATSURL string `json:"nats_url"`
	Subject string `json:"subject"`
	// Stream switches to JetStream publishing and is created when missing.
	Stream string `json:"stream"`
}

// Validate checks an enabled configuration.
func (c *EventsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error

	if c.NATSURL == "" {
		errs = append(errs, errNATSURLRequired)
	}

	if c.Subject != "" && !validSubject(c.Subject) {
		errs = append(errs, fmt.Errorf("%w: %q", errInvalidSubject, c.Subject))
	}

	return errors.Join(errs...)
}

// SubjectOrDefault returns the configured subject or DefaultSubject.
func (c *EventsConfig) SubjectOrDefault() string {
	if c.Subject == "" {
		return DefaultSubject
	}

	return c.Subject
}

func validSubject(subject string) bool {
	for _, r := range subject {
		switch r {
		case '*', '>', ' ', '\t', '\r', '\n':
			return false
		}
	}

	return subject[0] != '.' && subject[len(subject)-1] != '.'
}

// EventPublisher publishes CloudEvents to a NATS subject, through JetStream
// when a stream is configured.
type EventPublisher struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
	logger  logger.Logger
}

// NewEventPublisher wraps an established connection. js may be nil for core
// NATS publishing.
func NewEventPublisher(nc *nats.Conn, js jetstream.JetStream, subject string, log logger.Logger) *EventPublisher {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if subject == "" {
		subject = DefaultSubject
	}

	return &EventPublisher{
		nc:      nc,
		js:      js,
		subject: subject,
		logger:  log,
	}
}

// Connect dials cfg.NATSURL and returns a publisher that owns the
// connection. Close must be called when done.
func Connect(ctx context.Context, cfg *EventsConfig, log logger.Logger, opts ...nats.Option) (*EventPublisher, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	opts = append([]nats.Option{
		nats.Name("ecgprobe"),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Warn().Err(err).Msg("NATS error")
		}),
	}, opts...)

	nc, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	subject := cfg.SubjectOrDefault()

	if cfg.Stream == "" {
		return NewEventPublisher(nc, nil, subject, log), nil
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if err := ensureStream(ctx, js, cfg.Stream, subject); err != nil {
		nc.Close()

		return nil, err
	}

	return NewEventPublisher(nc, js, subject, log), nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, name, subject string) error {
	stream, err := js.Stream(ctx, name)
	if err == nil {
		cfg := stream.CachedInfo().Config
		for _, s := range cfg.Subjects {
			if s == subject {
				return nil
			}
		}

		cfg.Subjects = append(cfg.Subjects, subject)

		if _, err := js.UpdateStream(ctx, cfg); err != nil {
			return fmt.Errorf("failed to add subject %s to stream %s: %w", subject, name, err)
		}

		return nil
	}

	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream %s: %w", name, err)
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{subject},
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}

	return nil
}

// Subject returns the subject events are published on.
func (p *EventPublisher) Subject() string {
	return p.subject
}

// PublishHeaderDecoded publishes one decode result and returns the event id.
// The event time is the reference time of the decode, so it follows the
// clock the decoder was given. Data without one is stamped with the wall clock.
func (p *EventPublisher) PublishHeaderDecoded(ctx context.Context, data *models.HeaderDecodedEventData) (string, error) {
	now := data.ReferenceTime.UTC()
	if data.ReferenceTime.IsZero() {
		now = time.Now().UTC()
	}

	event := models.CloudEvent{
		SpecVersion:     models.CloudEventSpecVersion,
		ID:              uuid.New().String(),
		Source:          models.EventSource,
		Type:            models.HeaderDecodedEventType,
		DataContentType: "application/json",
		Subject:         p.subject,
		Time:            &now,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal header decoded event: %w", err)
	}

	if p.js != nil {
		ack, err := p.js.Publish(ctx, p.subject, eventBytes)
		if err != nil {
			return "", fmt.Errorf("failed to publish header decoded event: %w", err)
		}

		p.logger.Debug().
			Str("event_id", event.ID).
			Str("stream", ack.Stream).
			Uint64("seq", ack.Sequence).
			Msg("Published header decoded event")

		return event.ID, nil
	}

	if err := p.nc.Publish(p.subject, eventBytes); err != nil {
		return "", fmt.Errorf("failed to publish header decoded event: %w", err)
	}

	if err := p.flush(ctx); err != nil {
		return "", fmt.Errorf("failed to flush header decoded event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", p.subject).
		Msg("Published header decoded event")

	return event.ID, nil
}

// flush waits for the server to acknowledge pending publishes. FlushWithContext
// rejects contexts without a deadline.
func (p *EventPublisher) flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); ok {
		return p.nc.FlushWithContext(ctx)
	}

	return p.nc.FlushTimeout(defaultDrainTimeout)
}

// Close drains the connection, waiting at most a few seconds.
func (p *EventPublisher) Close() {
	if p.nc == nil || p.nc.IsClosed() {
		return
	}

	done := make(chan struct{})

	p.nc.SetClosedHandler(func(*nats.Conn) { close(done) })

	if err := p.nc.Drain(); err != nil {
		p.nc.Close()

		return
	}

	select {
	case <-done:
	case <-time.After(defaultDrainTimeout):
		p.nc.Close()
	}
}
