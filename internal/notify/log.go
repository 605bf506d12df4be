package notify

import (
	"context"

	"github.com/ariefcatur/go-bookstore-reservations/internal/reservations"
	"go.uber.org/zap"
)

// Log writes notifications to the logger instead of delivering them.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log.Named("notify")}
}

func (l *Log) Send(_ context.Context, m reservations.Message) error {
	l.log.Info("notification",
		zap.String("recipient", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body),
	)
	return nil
}
