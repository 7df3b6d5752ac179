package core_test

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/unibalancer/paca-keeper-go/core"
	"github.com/unibalancer/paca-keeper-go/model"
	"go.uber.org/zap"
)

var testAddress = common.HexToAddress("0x30D22DA999f201666fB94F09aedCA24419822e5C")

// fakeStaking serves canned contract reads and counts transaction builds.
type fakeStaking struct {
	rewards     decimal.Decimal
	minClaim    decimal.Decimal
	minCompound decimal.Decimal
	daily       decimal.Decimal
	stakeCount  int
	stakeTotal  decimal.Decimal

	readErr    error
	buildErr   error
	blockReads bool

	eventAmount decimal.Decimal
	eventFound  bool

	buildCalls int
	nonce      uint64
}

func (f *fakeStaking) ViewAllRewards(ctx context.Context) (decimal.Decimal, error) {
	if f.blockReads {
		<-ctx.Done()
		return decimal.Zero, ctx.Err()
	}
	return f.rewards, f.readErr
}

func (f *fakeStaking) MinimumClaimAmount(context.Context) (decimal.Decimal, error) {
	return f.minClaim, nil
}

func (f *fakeStaking) MinimumCompoundAmount(context.Context) (decimal.Decimal, error) {
	return f.minCompound, nil
}

func (f *fakeStaking) DailyEarnings(context.Context) (decimal.Decimal, error) {
	return f.daily, nil
}

func (f *fakeStaking) TotalStake(context.Context) (int, decimal.Decimal, error) {
	return f.stakeCount, f.stakeTotal, nil
}

func (f *fakeStaking) buildTx() (*types.Transaction, error) {
	f.buildCalls++
	if f.buildErr != nil {
		return nil, f.buildErr
	}

	f.nonce++
	return types.NewTx(&types.LegacyTx{
		Nonce:    f.nonce,
		GasPrice: big.NewInt(5_000_000_000),
		Gas:      210_000,
		To:       &testAddress,
		Value:    big.NewInt(0),
	}), nil
}

func (f *fakeStaking) ClaimAllRewards(context.Context) (*types.Transaction, error) {
	return f.buildTx()
}

func (f *fakeStaking) CompoundAllRewards(context.Context) (*types.Transaction, error) {
	return f.buildTx()
}

func (f *fakeStaking) EventAmount(*types.Receipt, string) (decimal.Decimal, bool) {
	return f.eventAmount, f.eventFound
}

// fakeStore is an in-memory stand-in for the sqlite store.
type fakeStore struct {
	getErr     error
	props      map[string]string
	claimed    map[string]decimal.Decimal
	compounded map[string]decimal.Decimal
	deficits   map[string]decimal.Decimal
	stats      []model.StatSnapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		props:      make(map[string]string),
		claimed:    make(map[string]decimal.Decimal),
		compounded: make(map[string]decimal.Decimal),
		deficits:   make(map[string]decimal.Decimal),
	}
}

func ledgerKey(account, token string) string {
	return account + "-" + token
}

func (f *fakeStore) GetProperty(key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	value, found := f.props[key]
	return value, found, nil
}

func (f *fakeStore) SetProperty(key, value string) error {
	f.props[key] = value
	return nil
}

func (f *fakeStore) AddClaimed(account, token string, amount decimal.Decimal) (decimal.Decimal, error) {
	total := f.claimed[ledgerKey(account, token)].Add(amount)
	f.claimed[ledgerKey(account, token)] = total
	return total, nil
}

func (f *fakeStore) AddCompounded(account, token string, amount decimal.Decimal) (decimal.Decimal, error) {
	total := f.compounded[ledgerKey(account, token)].Add(amount)
	f.compounded[ledgerKey(account, token)] = total
	return total, nil
}

func (f *fakeStore) AddDeficit(account, token string, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	total := f.deficits[ledgerKey(account, token)].Add(amount)
	f.deficits[ledgerKey(account, token)] = total
	return total, nil
}

func (f *fakeStore) GetClaimed(account, token string) (decimal.Decimal, error) {
	return f.claimed[ledgerKey(account, token)], nil
}

func (f *fakeStore) GetCompounded(account, token string) (decimal.Decimal, error) {
	return f.compounded[ledgerKey(account, token)], nil
}

func (f *fakeStore) GetDeficits(account, token string) (decimal.Decimal, error) {
	return f.deficits[ledgerKey(account, token)], nil
}

func (f *fakeStore) SaveStat(snapshot model.StatSnapshot) error {
	f.stats = append(f.stats, snapshot)
	return nil
}

// fakeReceipts returns nil for the first pendingPolls lookups, then a mined
// receipt.
type fakeReceipts struct {
	receipt      *types.Receipt
	err          error
	pendingPolls int
	polls        int
}

func minedReceipt() *types.Receipt {
	return &types.Receipt{
		Status:            types.ReceiptStatusSuccessful,
		GasUsed:           21_000,
		EffectiveGasPrice: big.NewInt(5_000_000_000),
	}
}

func (f *fakeReceipts) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	f.polls++
	if f.err != nil {
		return nil, f.err
	}
	if f.polls <= f.pendingPolls {
		return nil, nil
	}
	return f.receipt, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fakeBalances struct {
	balance decimal.Decimal
}

func (f *fakeBalances) NativeBalance(context.Context, common.Address) (decimal.Decimal, error) {
	return f.balance, nil
}

type fakePrice struct {
	quote decimal.Decimal
	err   error
}

func (f *fakePrice) NativeTokenUsd() (decimal.Decimal, error) {
	return f.quote, f.err
}

type accountFixture struct {
	account  *core.Account
	staking  *fakeStaking
	store    *fakeStore
	receipts *fakeReceipts
	notifier *recordingNotifier
}

func newAccountFixture(times []model.TimeOfDay, actions []model.ActionKind) *accountFixture {
	return newAccountFixtureWithTimeout(times, actions, 0)
}

func newAccountFixtureWithTimeout(times []model.TimeOfDay, actions []model.ActionKind, readTimeout time.Duration) *accountFixture {
	staking := &fakeStaking{
		rewards:     decimal.NewFromInt(50),
		minClaim:    decimal.NewFromInt(40),
		minCompound: decimal.NewFromInt(40),
		daily:       decimal.NewFromInt(86_400),
		stakeCount:  2,
		stakeTotal:  decimal.NewFromInt(1_000),
		eventAmount: decimal.NewFromInt(50),
		eventFound:  true,
	}
	propertyStore := newFakeStore()
	receipts := &fakeReceipts{receipt: minedReceipt()}
	notifier := &recordingNotifier{}
	log := zap.NewNop()

	submitter := core.NewSubmitter(receipts, core.SubmitterConfig{
		RetryBackoff: time.Millisecond,
		CheckDelay:   time.Millisecond,
	}, nil, log)

	account := core.NewAccount(core.AccountParams{
		Name:        "main",
		Address:     testAddress,
		Times:       times,
		Actions:     actions,
		ReadTimeout: readTimeout,
		Staking:     staking,
		Store:       propertyStore,
		Balances:    &fakeBalances{balance: decimal.NewFromInt(1)},
		Submitter:   submitter,
		Notifier:    notifier,
		Price:       &fakePrice{quote: decimal.NewFromInt(600)},
		RewardToken: model.Token{Symbol: "usdt", Decimals: 18},
		NativeToken: model.Token{Symbol: "wbnb", Decimals: 18},
		Log:         log,
	})

	return &accountFixture{
		account:  account,
		staking:  staking,
		store:    propertyStore,
		receipts: receipts,
		notifier: notifier,
	}
}
