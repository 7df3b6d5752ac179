package core

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/unibalancer/paca-keeper-go/alert"
	"github.com/unibalancer/paca-keeper-go/metrics"
	"github.com/unibalancer/paca-keeper-go/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StakingContract is the reward oracle and action surface of the staking
// contract, bound to one signing account.
type StakingContract interface {
	ViewAllRewards(ctx context.Context) (decimal.Decimal, error)
	MinimumClaimAmount(ctx context.Context) (decimal.Decimal, error)
	MinimumCompoundAmount(ctx context.Context) (decimal.Decimal, error)
	DailyEarnings(ctx context.Context) (decimal.Decimal, error)
	TotalStake(ctx context.Context) (int, decimal.Decimal, error)
	ClaimAllRewards(ctx context.Context) (*types.Transaction, error)
	CompoundAllRewards(ctx context.Context) (*types.Transaction, error)
	EventAmount(receipt *types.Receipt, eventName string) (decimal.Decimal, bool)
}

// PropertyStore is the persisted schedule state, ledgers and statistics.
type PropertyStore interface {
	GetProperty(key string) (string, bool, error)
	SetProperty(key, value string) error
	AddClaimed(account, token string, amount decimal.Decimal) (decimal.Decimal, error)
	AddCompounded(account, token string, amount decimal.Decimal) (decimal.Decimal, error)
	AddDeficit(account, token string, amount decimal.Decimal, reason string) (decimal.Decimal, error)
	GetClaimed(account, token string) (decimal.Decimal, error)
	GetCompounded(account, token string) (decimal.Decimal, error)
	GetDeficits(account, token string) (decimal.Decimal, error)
	SaveStat(snapshot model.StatSnapshot) error
}

// BalanceReader reads gas-token balances.
type BalanceReader interface {
	NativeBalance(ctx context.Context, address common.Address) (decimal.Decimal, error)
}

// PriceOracle quotes the gas token in USD.
type PriceOracle interface {
	NativeTokenUsd() (decimal.Decimal, error)
}

const defaultReadTimeout = 7 * time.Second

// Account ties one managed wallet to its schedule, action rotation and
// collaborators. Identity is immutable for the process lifetime; schedule
// state and ledgers live in the store.
type Account struct {
	name        string
	address     common.Address
	readableKey string
	times       []model.TimeOfDay
	actions     []model.ActionKind
	readTimeout time.Duration
	staking     StakingContract
	store       PropertyStore
	balances    BalanceReader
	submitter   *Submitter
	notifier    alert.Notifier
	price       PriceOracle
	metrics     *metrics.KeeperMetrics
	rewardToken model.Token
	nativeToken model.Token
	log         *zap.Logger
}

type AccountParams struct {
	Name        string
	Address     common.Address
	Times       []model.TimeOfDay
	Actions     []model.ActionKind
	ReadTimeout time.Duration
	Staking     StakingContract
	Store       PropertyStore
	Balances    BalanceReader
	Submitter   *Submitter
	Notifier    alert.Notifier
	Price       PriceOracle
	Metrics     *metrics.KeeperMetrics
	RewardToken model.Token
	NativeToken model.Token
	Log         *zap.Logger
}

func NewAccount(params AccountParams) *Account {
	hex := params.Address.Hex()

	if params.ReadTimeout == 0 {
		params.ReadTimeout = defaultReadTimeout
	}

	return &Account{
		name:        params.Name,
		address:     params.Address,
		readableKey: hex[:5] + "..." + hex[len(hex)-4:],
		times:       params.Times,
		actions:     params.Actions,
		readTimeout: params.ReadTimeout,
		staking:     params.Staking,
		store:       params.Store,
		balances:    params.Balances,
		submitter:   params.Submitter,
		notifier:    params.Notifier,
		price:       params.Price,
		metrics:     params.Metrics,
		rewardToken: params.RewardToken,
		nativeToken: params.NativeToken,
		log:         params.Log,
	}
}

func (a *Account) Address() common.Address {
	return a.address
}

func (a *Account) ReadableKey() string {
	return a.readableKey
}

// Execute runs the account's pending action once. Errors are reported through
// the log and the notification sink but never propagated: the account simply
// makes no progress this tick and is retried on the next one.
func (a *Account) Execute(ctx context.Context) {
	index, kind, err := a.PeekNextAction()
	if err != nil {
		a.reportError(model.ActionKind("unknown"), err)
		return
	}

	var executed bool

	switch kind {
	case model.ActionClaim, model.ActionCompound:
		executed, err = a.claimOrCompound(ctx, kind)
	case model.ActionNoOp:
		a.log.Info("executed a no-op", zap.String("account", a.readableKey))
		a.notifier.Notify(fmt.Sprintf("Account [%s] executed a no-op.", a.readableKey))
		executed = true
	}

	if err != nil {
		a.reportError(kind, err)
		return
	}
	if !executed {
		return
	}

	if a.metrics != nil {
		a.metrics.IncActionExecuted(string(kind))
	}

	if err := a.AdvanceAction(index); err != nil {
		a.reportError(kind, err)
		return
	}
	a.log.Info("action incremented", zap.String("account", a.readableKey))

	if err := a.saveStats(ctx); err != nil {
		a.reportError(kind, err)
	}
}

func (a *Account) reportError(kind model.ActionKind, err error) {
	a.log.Error("error executing action",
		zap.String("account", a.readableKey),
		zap.String("action", string(kind)),
		zap.Error(err))
	a.notifier.Notify(fmt.Sprintf("Account [%s] error executing action '%s': %v", a.readableKey, kind, err))

	if a.metrics != nil {
		a.metrics.IncActionFailure()
	}
}

// claimOrCompound gates the action on the contract's minimum threshold, then
// submits it and records the outcome. Returns false without error when the
// rewards are still below the threshold, leaving the rotation untouched.
func (a *Account) claimOrCompound(ctx context.Context, kind model.ActionKind) (bool, error) {
	var rewards, minimum decimal.Decimal

	// Contract reads share one deadline; submission below keeps its own
	// longer budget.
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
		if kind == model.ActionClaim {
			minimum, err = a.staking.MinimumClaimAmount(groupCtx)
		} else {
			minimum, err = a.staking.MinimumCompoundAmount(groupCtx)
		}
		return err
	})
	if err := group.Wait(); err != nil {
		return false, err
	}

	if rewards.LessThan(minimum) {
		message := fmt.Sprintf("Account [%s] wants to %s. We only have %s rewards but we want %s rewards.",
			a.readableKey, kind, rewards.String(), minimum.String())
		a.log.Info(message)
		a.notifier.Notify(message)

		if _, err := a.SetNextRun(ctx, time.Now()); err != nil {
			return false, err
		}

		return false, nil
	}

	transact := a.staking.ClaimAllRewards
	eventName := "Claimed"
	if kind == model.ActionCompound {
		transact = a.staking.CompoundAllRewards
		eventName = "RewardsCompounded"
	}

	// Each send attempt gets a fresh deadline of its own.
	build := func() (*types.Transaction, error) {
		callCtx, cancel := context.WithTimeout(ctx, a.readTimeout)
		defer cancel()

		return transact(callCtx)
	}

	confirmed, err := a.submitter.Submit(ctx, build)
	if err != nil {
		return false, err
	}

	amount, found := a.staking.EventAmount(confirmed.Receipt, eventName)
	if found {
		a.log.Info("found realized amount in logs",
			zap.String("account", a.readableKey),
			zap.String("amount", amount.String()))
	} else {
		// Best-effort approximation, not a silent failure.
		a.log.Warn("could not find realized amount in logs, using pre-transaction rewards",
			zap.String("account", a.readableKey),
			zap.String("event", eventName))
		amount = rewards
	}

	if kind == model.ActionClaim {
		_, err = a.store.AddClaimed(a.address.Hex(), a.rewardToken.Symbol, amount)
	} else {
		_, err = a.store.AddCompounded(a.address.Hex(), a.rewardToken.Symbol, amount)
	}
	if err != nil {
		return false, err
	}

	if err := a.reportAction(amount, kind, confirmed); err != nil {
		return false, err
	}

	return true, nil
}

// reportAction records the gas spent into the deficit ledger and emits the
// human-readable action report.
func (a *Account) reportAction(amount decimal.Decimal, kind model.ActionKind, confirmed *ConfirmedTransaction) error {
	receipt := confirmed.Receipt

	gasPrice := receipt.EffectiveGasPrice
	if gasPrice == nil {
		gasPrice = confirmed.Tx.GasPrice()
	}

	gasCost := decimal.NewFromBigInt(
		new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(receipt.GasUsed)),
		-a.nativeToken.Decimals)

	if _, err := a.store.AddDeficit(a.address.Hex(), a.nativeToken.Symbol, gasCost, string(kind)); err != nil {
		return err
	}

	usd := ""
	if quote, err := a.price.NativeTokenUsd(); err == nil {
		usd = fmt.Sprintf(" ($%s)", gasCost.Mul(quote).StringFixed(2))
	} else {
		a.log.Warn("cannot fetch native token price", zap.Error(err))
	}

	report := fmt.Sprintf("Account %s executed '%s'\n\nRewards amount: %s %s\nGas used: %s %s%s",
		a.readableKey,
		kind,
		amount.StringFixed(2),
		strings.ToUpper(a.rewardToken.Symbol),
		gasCost.String(),
		strings.ToUpper(a.nativeToken.Symbol),
		usd)

	a.log.Info(report)
	a.notifier.Notify(report)

	return nil
}

// saveStats assembles and persists a statistics snapshot, and reports it.
func (a *Account) saveStats(ctx context.Context) error {
	var (
		stakeCount                                  int
		stakeTotal, claimed, compounded, gasBalance decimal.Decimal
		gasUsed                                     decimal.Decimal
	)

	readCtx, cancel := context.WithTimeout(ctx, a.readTimeout)
	defer cancel()

	group, groupCtx := errgroup.WithContext(readCtx)
	group.Go(func() error {
		var err error
		stakeCount, stakeTotal, err = a.staking.TotalStake(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		claimed, err = a.store.GetClaimed(a.address.Hex(), a.rewardToken.Symbol)
		return err
	})
	group.Go(func() error {
		var err error
		compounded, err = a.store.GetCompounded(a.address.Hex(), a.rewardToken.Symbol)
		return err
	})
	group.Go(func() error {
		var err error
		gasUsed, err = a.store.GetDeficits(a.address.Hex(), a.nativeToken.Symbol)
		return err
	})
	group.Go(func() error {
		var err error
		gasBalance, err = a.balances.NativeBalance(groupCtx, a.address)
		return err
	})
	if err := group.Wait(); err != nil {
		return err
	}

	rewardSymbol := strings.ToUpper(a.rewardToken.Symbol)
	nativeSymbol := strings.ToUpper(a.nativeToken.Symbol)

	report := fmt.Sprintf("Account %s stats:\n\nAccount: %s\n\nStake Count: %d\nStake Total: %s %s\n\nClaimed: %s %s\nCompounded: %s %s\n\nGas spent: %s %s\nGas balance: %s %s",
		a.readableKey,
		a.address.Hex(),
		stakeCount,
		stakeTotal.StringFixed(2), rewardSymbol,
		claimed.StringFixed(2), rewardSymbol,
		compounded.StringFixed(2), rewardSymbol,
		gasUsed.String(), nativeSymbol,
		gasBalance.String(), nativeSymbol)

	a.log.Info(report)
	a.notifier.Notify(report)

	return a.store.SaveStat(model.StatSnapshot{
		Account:    a.address.Hex(),
		StakeCount: stakeCount,
		StakeTotal: stakeTotal,
		Claimed:    claimed,
		Compounded: compounded,
		GasUsed:    gasUsed,
		GasBalance: gasBalance,
	})
}
