package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/unibalancer/paca-keeper-go/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoNextRun signals that no future instant could be built from the
// configured slots. Every slot also generates a tomorrow instant, so this
// indicates a programming defect rather than a recoverable condition.
var ErrNoNextRun = errors.New("there is no next run instant")

const millisPerDay = 24 * 60 * 60 * 1000

// SetNextRun computes the account's next run instant, persists it and returns
// it. The earliest configured slot after now is the lower bound; for claim and
// compound the result is pushed out to the projected moment the reward
// threshold will be crossed, plus a one-minute safety margin.
func (a *Account) SetNextRun(ctx context.Context, now time.Time) (time.Time, error) {
	var candidate time.Time
	found := false

	for _, slot := range a.times {
		today := time.Date(now.Year(), now.Month(), now.Day(), slot.Hours, slot.Minutes, 0, 0, now.Location())

		for _, instant := range []time.Time{today, today.AddDate(0, 0, 1)} {
			if !instant.After(now) {
				continue
			}
			if !found || instant.Before(candidate) {
				candidate = instant
				found = true
			}
		}
	}

	if !found {
		return time.Time{}, ErrNoNextRun
	}

	_, kind, err := a.PeekNextAction()
	if err != nil {
		return time.Time{}, err
	}

	// A no-op never waits for rewards; the slot stands as-is.
	if kind != model.ActionNoOp {
		var rewards, dailyEarnings, amountNeeded decimal.Decimal

		readCtx, cancel := context.WithTimeout(ctx, a.readTimeout)
		defer cancel()

		group, groupCtx := errgroup.WithContext(readCtx)
		group.Go(func() error {
			var err error
			rewards, err = a.staking.ViewAllRewards(groupCtx)
			return err
		})
		group.Go(func() error {
			var err error
			dailyEarnings, err = a.staking.DailyEarnings(groupCtx)
			return err
		})
		group.Go(func() error {
			var err error
			switch kind {
			case model.ActionClaim:
				amountNeeded, err = a.staking.MinimumClaimAmount(groupCtx)
			case model.ActionCompound:
				amountNeeded, err = a.staking.MinimumCompoundAmount(groupCtx)
			}
			return err
		})
		if err := group.Wait(); err != nil {
			return time.Time{}, err
		}

		remaining := amountNeeded.Sub(rewards)
		if remaining.IsPositive() {
			perMilli := dailyEarnings.Div(decimal.NewFromInt(millisPerDay))

			if !perMilli.IsPositive() {
				// The threshold will never be crossed at this rate; keep the
				// slot and let the next recomputation re-read the oracle.
				a.log.Warn("daily earnings estimate is not positive, keeping the scheduled slot",
					zap.String("account", a.readableKey),
					zap.String("daily_earnings", dailyEarnings.String()))
				a.notifier.Notify(fmt.Sprintf("Account [%s] earns nothing per day right now; keeping the scheduled slot.", a.readableKey))
			} else {
				remainingMillis := remaining.Div(perMilli)
				estimatedReadyAt := now.
					Add(time.Duration(remainingMillis.IntPart()) * time.Millisecond).
					Add(time.Minute)

				if estimatedReadyAt.After(candidate) {
					candidate = estimatedReadyAt
				}
			}
		}
	}

	if err := a.store.SetProperty(a.nextRunKey(), candidate.Format(time.RFC3339)); err != nil {
		return time.Time{}, err
	}

	return candidate, nil
}

// GetNextRun returns the persisted next run instant, computing and persisting
// one when the row is missing or unreadable.
func (a *Account) GetNextRun(ctx context.Context, now time.Time) (time.Time, error) {
	value, found, err := a.store.GetProperty(a.nextRunKey())
	if err != nil {
		return time.Time{}, err
	}

	if found {
		nextRun, err := time.Parse(time.RFC3339, value)
		if err == nil {
			return nextRun, nil
		}
		a.log.Warn("corrupt next run value, recomputing",
			zap.String("account", a.readableKey),
			zap.String("value", value))
	}

	return a.SetNextRun(ctx, now)
}
