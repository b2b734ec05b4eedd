package alert

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender sends SMS through Twilio's Messages API.
type TwilioSender struct {
	client *twilio.RestClient
	logger zerolog.Logger
}

// NewTwilioSender creates a sender authenticated with cfg's account id
// and auth token.
func NewTwilioSender(cfg Config, logger zerolog.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{
		client: client,
		logger: logger.With().Str("component", "twilio").Logger(),
	}
}

// Send creates one message and returns its SID. The Twilio client takes
// no context, so an expired ctx abandons the call rather than aborting
// it; the abandoned call's eventual result is logged.
func (s *TwilioSender) Send(ctx context.Context, msg Message) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(msg.From)
	params.SetBody(msg.Body)

	return sendAbandonable(ctx, s.logger, msg.To, func() (string, error) {
		resp, err := s.client.Api.CreateMessage(params)
		if err != nil {
			return "", err
		}
		if resp.Sid == nil {
			return "", errors.New("twilio returned no message sid")
		}
		return *resp.Sid, nil
	})
}

// sendAbandonable runs send on its own goroutine and waits for it or for
// ctx. When ctx wins, the result of send is still logged once it arrives.
func sendAbandonable(ctx context.Context, logger zerolog.Logger, to string, send func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		sid string
		err error
	}
	done := make(chan result)
	abandoned := make(chan struct{})
	go func() {
		sid, err := send()
		select {
		case done <- result{sid: sid, err: err}:
			return
		case <-abandoned:
		}
		if err != nil {
			logger.Warn().Err(err).Str("to", to).Msg("abandoned alert send failed")
			return
		}
		logger.Warn().Str("to", to).Str("message_id", sid).Msg("abandoned alert send was delivered")
	}()

	select {
	case <-ctx.Done():
		close(abandoned)
		return "", ctx.Err()
	case r := <-done:
		return r.sid, r.err
	}
}
