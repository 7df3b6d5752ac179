package core

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/unibalancer/paca-keeper-go/metrics"
	"go.uber.org/zap"
)

// ReceiptFetcher looks up a transaction receipt, returning nil without error
// while the transaction is still pending.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// ConfirmedTransaction pairs a submitted transaction with its mined receipt.
type ConfirmedTransaction struct {
	Tx      *types.Transaction
	Receipt *types.Receipt
}

// ErrConfirmationTimeout is returned when a submitted transaction does not
// produce a receipt within the confirmation window. It re-enters the retry
// loop like any other attempt failure.
var ErrConfirmationTimeout = errors.New("transaction confirmation timed out")

const (
	defaultSubmitRetries  = 5
	defaultRetryBackoff   = 10 * time.Second
	defaultCheckDelay     = 100 * time.Millisecond
	defaultConfirmTimeout = 5 * time.Minute
)

type SubmitterConfig struct {
	Retries        int
	RetryBackoff   time.Duration
	CheckDelay     time.Duration
	ConfirmTimeout time.Duration
}

// Submitter sends transactions with a fixed-backoff retry budget and waits
// for each one to be mined.
type Submitter struct {
	receipts ReceiptFetcher
	config   SubmitterConfig
	metrics  *metrics.KeeperMetrics
	log      *zap.Logger
}

func NewSubmitter(receipts ReceiptFetcher, config SubmitterConfig, keeperMetrics *metrics.KeeperMetrics, log *zap.Logger) *Submitter {
	if config.Retries == 0 {
		config.Retries = defaultSubmitRetries
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = defaultRetryBackoff
	}
	if config.CheckDelay == 0 {
		config.CheckDelay = defaultCheckDelay
	}
	if config.ConfirmTimeout == 0 {
		config.ConfirmTimeout = defaultConfirmTimeout
	}

	return &Submitter{
		receipts: receipts,
		config:   config,
		metrics:  keeperMetrics,
		log:      log,
	}
}

// Submit invokes build to construct and send a transaction, then waits for
// its receipt. Any failure burns one retry and re-invokes build after the
// backoff, so each attempt may carry a fresh nonce. After the retry budget is
// exhausted the last error is returned.
func (s *Submitter) Submit(ctx context.Context, build func() (*types.Transaction, error)) (*ConfirmedTransaction, error) {
	triesLeft := s.config.Retries

	for {
		confirmed, err := s.attempt(ctx, build)
		if err == nil {
			return confirmed, nil
		}

		s.log.Warn("transaction attempt failed",
			zap.Int("tries_left", triesLeft),
			zap.Error(err))

		if triesLeft == 0 {
			return nil, err
		}
		triesLeft--

		if s.metrics != nil {
			s.metrics.IncSubmissionRetry()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.config.RetryBackoff):
		}
	}
}

func (s *Submitter) attempt(ctx context.Context, build func() (*types.Transaction, error)) (*ConfirmedTransaction, error) {
	tx, err := build()
	if err != nil {
		return nil, err
	}

	receipt, err := s.confirm(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}

	return &ConfirmedTransaction{Tx: tx, Receipt: receipt}, nil
}

// confirm polls for the receipt at the configured delay under an absolute
// confirmation deadline.
func (s *Submitter) confirm(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	confirmCtx, cancel := context.WithTimeout(ctx, s.config.ConfirmTimeout)
	defer cancel()

	for {
		receipt, err := s.receipts.TransactionReceipt(confirmCtx, hash)
		if err != nil {
			if errors.Is(confirmCtx.Err(), context.DeadlineExceeded) {
				return nil, ErrConfirmationTimeout
			}
			return nil, err
		}
		if receipt != nil {
			return receipt, nil
		}

		select {
		case <-confirmCtx.Done():
			if errors.Is(confirmCtx.Err(), context.DeadlineExceeded) {
				return nil, ErrConfirmationTimeout
			}
			return nil, confirmCtx.Err()
		case <-time.After(s.config.CheckDelay):
		}
	}
}
