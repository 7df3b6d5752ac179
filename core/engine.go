package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/unibalancer/paca-keeper-go/alert"
	"github.com/unibalancer/paca-keeper-go/metrics"
	"go.uber.org/zap"
)

// Engine is the top-level scheduler loop. It wakes once per minute and visits
// every account strictly in order; accounts are never processed concurrently,
// so a shared signer cannot see overlapping nonces.
type Engine struct {
	accounts []*Account
	cron     *cron.Cron
	notifier alert.Notifier
	metrics  *metrics.KeeperMetrics
	log      *zap.Logger
	notified map[string]bool
	fatal    chan error
}

func NewEngine(accounts []*Account, notifier alert.Notifier, keeperMetrics *metrics.KeeperMetrics, log *zap.Logger) *Engine {
	return &Engine{
		accounts: accounts,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		notifier: notifier,
		metrics:  keeperMetrics,
		log:      log,
		notified: make(map[string]bool),
		fatal:    make(chan error, 1),
	}
}

// Start schedules the tick at second 1 of every minute (the minute boundary
// plus a one-second safety margin) and begins processing.
func (e *Engine) Start() error {
	if _, err := e.cron.AddFunc("1 * * * * *", e.Tick); err != nil {
		return fmt.Errorf("cannot schedule keeper tick: %w", err)
	}

	e.cron.Start()
	e.log.Info("keeper engine started", zap.Int("accounts", len(e.accounts)))

	return nil
}

func (e *Engine) Stop() {
	e.cron.Stop()
}

// Fatal delivers the error that stopped the engine. Anything escaping the
// per-account handling is fatal for the whole process; restarting is an
// operational concern.
func (e *Engine) Fatal() <-chan error {
	return e.fatal
}

// Tick runs one scheduling pass over every account. The cron job invokes it
// once per minute; anything that escapes per-account handling stops the loop
// and surfaces on Fatal.
func (e *Engine) Tick() {
	now := time.Now()
	if e.metrics != nil {
		e.metrics.SetLastTick(now)
	}

	operationId := uuid.New().String()
	ctx := context.Background()

	for _, account := range e.accounts {
		if err := e.processAccount(ctx, now, account, operationId); err != nil {
			e.log.Error("scheduler run error",
				zap.String("account", account.ReadableKey()),
				zap.String("operation_id", operationId),
				zap.Error(err))

			select {
			case e.fatal <- err:
			default:
			}
			e.cron.Stop()
			return
		}
	}
}

func (e *Engine) processAccount(ctx context.Context, now time.Time, account *Account, operationId string) error {
	nextRun, err := account.GetNextRun(ctx, now)
	if err != nil {
		return err
	}

	key := account.Address().Hex()

	// Tell the user once what is coming and when; re-armed after every
	// execution.
	if !e.notified[key] {
		_, kind, err := account.PeekNextAction()
		if err != nil {
			return err
		}

		message := fmt.Sprintf("We are going to run a '%s' on %s at %s.", kind, account.ReadableKey(), nextRun.Format(time.RFC1123))
		e.log.Info(message, zap.String("operation_id", operationId))
		e.notifier.Notify(message)
		e.notified[key] = true
	}

	if now.Before(nextRun) {
		return nil
	}

	account.Execute(ctx)

	if _, err := account.SetNextRun(ctx, time.Now()); err != nil {
		return err
	}
	e.notified[key] = false

	return nil
}
