// Package alert sends one SMS to a configured caretaker when an
// assessment flags a student. Every failure is logged and swallowed.
package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blumie/wellcheck/internal/store"
)

// Message is one outbound notification.
type Message struct {
	From string
	To   string
	Body string
}

// Sender delivers a Message over the notification channel and returns
// the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Recorder keeps an audit row per dispatch attempt. store.EventRepo
// satisfies it.
type Recorder interface {
	AppendAlert(ctx context.Context, data store.AlertEventData) error
}

// Body composes the alert text for student.
func Body(student string) string {
	return fmt.Sprintf("Warning: Student '%s' has submitted a mood entry that was flagged for immediate attention. Please review the wellcheck dashboard immediately.", student)
}

// Dispatcher makes exactly one send attempt per Notify.
type Dispatcher struct {
	cfg      Config
	sender   Sender
	recorder Recorder
	logger   zerolog.Logger
}

// NewDispatcher creates a Dispatcher. sender and recorder may be nil.
func NewDispatcher(cfg Config, sender Sender, recorder Recorder, logger zerolog.Logger) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Dispatcher{
		cfg:      cfg,
		sender:   sender,
		recorder: recorder,
		logger:   logger.With().Str("component", "alert").Logger(),
	}
}

// NewTwilioDispatcher wires a TwilioSender when cfg is complete. An
// incomplete cfg still yields a usable Dispatcher that only logs.
func NewTwilioDispatcher(cfg Config, recorder Recorder, logger zerolog.Logger) *Dispatcher {
	var sender Sender
	if cfg.Complete() {
		sender = NewTwilioSender(cfg, logger)
	}
	return NewDispatcher(cfg, sender, recorder, logger)
}

// Notify sends the alert for student. It never returns an error and
// never panics; outcomes go to the log and the recorder.
func (d *Dispatcher) Notify(ctx context.Context, student string) {
	body := Body(student)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Str("student", student).Interface("panic", r).Msg("alert send panicked")
			d.record(ctx, student, body, store.AlertFailed, "", fmt.Sprintf("panic: %v", r))
		}
	}()

	missing := d.cfg.Missing()
	if len(missing) == 0 && d.sender == nil {
		missing = []string{"sender"}
	}
	if len(missing) > 0 {
		cerr := &ConfigError{Missing: missing}
		d.logger.Warn().
			Err(cerr).
			Str("student", student).
			Str("body", body).
			Msg("alert not sent")
		d.record(ctx, student, body, store.AlertSkipped, "", cerr.Error())
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	id, err := d.sender.Send(sendCtx, Message{
		From: d.cfg.SenderAddress,
		To:   d.cfg.RecipientAddress,
		Body: body,
	})
	if errors.Is(err, context.DeadlineExceeded) {
		serr := &SendError{Recipient: d.cfg.RecipientAddress, Err: err}
		d.logger.Error().Err(serr).Str("student", student).Msg("alert send timed out, delivery unknown")
		d.record(ctx, student, body, store.AlertUnknown, "", serr.Error())
		return
	}
	if err != nil {
		serr := &SendError{Recipient: d.cfg.RecipientAddress, Err: err}
		d.logger.Error().Err(serr).Str("student", student).Msg("alert send failed")
		d.record(ctx, student, body, store.AlertFailed, "", serr.Error())
		return
	}

	d.logger.Info().
		Str("student", student).
		Str("message_id", id).
		Msg("alert sent")
	d.record(ctx, student, body, store.AlertSent, id, "")
}

func (d *Dispatcher) record(ctx context.Context, student, body, outcome, id, errMsg string) {
	if d.recorder == nil {
		return
	}
	err := d.recorder.AppendAlert(ctx, store.AlertEventData{
		Student:      student,
		Recipient:    d.cfg.RecipientAddress,
		Body:         body,
		Outcome:      outcome,
		MessageID:    id,
		ErrorMessage: errMsg,
	})
	if err != nil {
		d.logger.Warn().Err(err).Msg("failed to record alert event")
	}
}
