package utils

import (
	"context"
	"time"

	"github.com/unibalancer/paca-keeper-go/model"
)

// GetTimeoutDuration returns the configured per-operation timeout for remote
// calls.
func GetTimeoutDuration(config *model.Config) time.Duration {
	if config.Daemon.ContextTimeoutSeconds > 0 {
		return time.Duration(config.Daemon.ContextTimeoutSeconds) * time.Second
	}

	return 7 * time.Second
}

func GetContextWithTimeout(config *model.Config) (context.Context, context.CancelFunc) {
	timeoutDuration := GetTimeoutDuration(config)

	return context.WithTimeout(context.Background(), timeoutDuration)
}

func GetReceiptCheckDelay(config *model.Config) time.Duration {
	if config.Daemon.ReceiptCheckDelayMs > 0 {
		return time.Duration(config.Daemon.ReceiptCheckDelayMs) * time.Millisecond
	}

	return 100 * time.Millisecond
}
