package notification

import (
	"context"

	"go.uber.org/zap"
)

// SMSSender delivers one message to one phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// ConsoleSMS logs outgoing messages instead of delivering them. It is the
// default sender when no gateway credentials are configured.
type ConsoleSMS struct {
	log *zap.SugaredLogger
}

func NewConsoleSMS(log *zap.SugaredLogger) *ConsoleSMS {
	return &ConsoleSMS{log: log}
}

func (s *ConsoleSMS) Send(ctx context.Context, phone, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Infow("sms (console)", "to", phone, "body", message)
	return nil
}
