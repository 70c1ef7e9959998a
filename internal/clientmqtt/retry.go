package clientmqtt

import (
	"context"
	"time"
)

// RetryPolicy политика повторных попыток подключения к брокеру.
// MaxAttempts 0 - без лимита: узел в боксах должен пытаться вечно.
type RetryPolicy struct {
	Interval    time.Duration // Interval - фиксированная пауза между попытками.
	MaxAttempts int           // MaxAttempts - лимит попыток (0 - без лимита).
}

// Next сообщает, разрешена ли попытка с номером attempt (нумерация с единицы).
func (p RetryPolicy) Next(attempt int) bool {
	return p.MaxAttempts == 0 || attempt <= p.MaxAttempts
}

// Wait выдерживает паузу перед следующей попыткой.
func (p RetryPolicy) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.Interval):
		return nil
	}
}
