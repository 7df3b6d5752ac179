package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unibalancer/paca-keeper-go/core"
	"go.uber.org/zap"
)

func newTestSubmitter(receipts *fakeReceipts, retries int, backoff time.Duration) *core.Submitter {
	return core.NewSubmitter(receipts, core.SubmitterConfig{
		Retries:        retries,
		RetryBackoff:   backoff,
		CheckDelay:     time.Millisecond,
		ConfirmTimeout: time.Second,
	}, nil, zap.NewNop())
}

func TestSubmitSucceedsFirstTry(t *testing.T) {
	staking := &fakeStaking{}
	receipts := &fakeReceipts{receipt: minedReceipt()}
	submitter := newTestSubmitter(receipts, 5, time.Millisecond)

	confirmed, err := submitter.Submit(context.Background(), staking.buildTx)
	require.NoError(t, err)

	require.NotNil(t, confirmed.Receipt)
	assert.Equal(t, uint64(21_000), confirmed.Receipt.GasUsed)
	assert.Equal(t, 1, staking.buildCalls)
}

func TestSubmitWaitsForPendingReceipt(t *testing.T) {
	staking := &fakeStaking{}
	receipts := &fakeReceipts{receipt: minedReceipt(), pendingPolls: 3}
	submitter := newTestSubmitter(receipts, 5, time.Millisecond)

	confirmed, err := submitter.Submit(context.Background(), staking.buildTx)
	require.NoError(t, err)

	require.NotNil(t, confirmed.Receipt)
	assert.Equal(t, 4, receipts.polls)
	assert.Equal(t, 1, staking.buildCalls)
}

func TestSubmitRetriesBuildFailures(t *testing.T) {
	calls := 0
	receipts := &fakeReceipts{receipt: minedReceipt()}
	submitter := newTestSubmitter(receipts, 5, time.Millisecond)

	staking := &fakeStaking{}
	build := func() (*types.Transaction, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("nonce too low")
		}
		return staking.buildTx()
	}

	confirmed, err := submitter.Submit(context.Background(), build)
	require.NoError(t, err)

	require.NotNil(t, confirmed.Tx)
	assert.Equal(t, 3, calls)
}

func TestSubmitExhaustsRetriesAndReturnsLastError(t *testing.T) {
	staking := &fakeStaking{buildErr: errors.New("insufficient funds")}
	receipts := &fakeReceipts{receipt: minedReceipt()}
	submitter := newTestSubmitter(receipts, 2, time.Millisecond)

	_, err := submitter.Submit(context.Background(), staking.buildTx)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "insufficient funds")
	// The retry budget allows the first attempt plus two retries.
	assert.Equal(t, 3, staking.buildCalls)
}

func TestSubmitWaitsBackoffBetweenAttempts(t *testing.T) {
	staking := &fakeStaking{buildErr: errors.New("boom")}
	receipts := &fakeReceipts{receipt: minedReceipt()}
	submitter := newTestSubmitter(receipts, 2, 20*time.Millisecond)

	started := time.Now()
	_, err := submitter.Submit(context.Background(), staking.buildTx)
	require.Error(t, err)

	assert.GreaterOrEqual(t, time.Since(started), 40*time.Millisecond)
}

func TestSubmitConfirmationTimeout(t *testing.T) {
	staking := &fakeStaking{}
	receipts := &fakeReceipts{pendingPolls: 1 << 30}
	submitter := core.NewSubmitter(receipts, core.SubmitterConfig{
		Retries:        1,
		RetryBackoff:   time.Millisecond,
		CheckDelay:     time.Millisecond,
		ConfirmTimeout: 20 * time.Millisecond,
	}, nil, zap.NewNop())

	_, err := submitter.Submit(context.Background(), staking.buildTx)
	require.ErrorIs(t, err, core.ErrConfirmationTimeout)

	// Confirmation timeouts burn retries like any other failure.
	assert.Equal(t, 2, staking.buildCalls)
}

func TestSubmitStopsWhenContextCancelled(t *testing.T) {
	staking := &fakeStaking{buildErr: errors.New("boom")}
	receipts := &fakeReceipts{receipt: minedReceipt()}
	submitter := newTestSubmitter(receipts, 5, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := submitter.Submit(ctx, staking.buildTx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, staking.buildCalls)
}
