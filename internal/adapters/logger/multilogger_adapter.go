package logger_adapter

import (
	"fmt"

	"saved-cart-service/internal/core/port"
)

// MultiloggerAdapter рассылает каждую запись во все вложенные логгеры.
// Используется, чтобы писать одновременно в stdout и во Fluent Bit.
type MultiloggerAdapter struct {
	loggers []port.LoggerPort
}

// NewMultiloggerAdapter создает композитный логгер.
func NewMultiloggerAdapter(loggers ...port.LoggerPort) (*MultiloggerAdapter, error) {
	if len(loggers) == 0 {
		return nil, fmt.Errorf("at least one logger is required")
	}
	return &MultiloggerAdapter{loggers: loggers}, nil
}

func (m *MultiloggerAdapter) Info(msg string, fields port.Fields) {
	for _, l := range m.loggers {
		l.Info(msg, fields)
	}
}

func (m *MultiloggerAdapter) Warn(msg string, fields port.Fields) {
	for _, l := range m.loggers {
		l.Warn(msg, fields)
	}
}

func (m *MultiloggerAdapter) Error(msg string, err error, fields port.Fields) {
	for _, l := range m.loggers {
		l.Error(msg, err, fields)
	}
}

func (m *MultiloggerAdapter) Debug(msg string, fields port.Fields) {
	for _, l := range m.loggers {
		l.Debug(msg, fields)
	}
}

// WithFields возвращает новый композитный логгер, у которого поля
// добавлены в каждый вложенный логгер.
func (m *MultiloggerAdapter) WithFields(fields port.Fields) port.LoggerPort {
	next := make([]port.LoggerPort, len(m.loggers))
	for i, l := range m.loggers {
		next[i] = l.WithFields(fields)
	}
	return &MultiloggerAdapter{loggers: next}
}
