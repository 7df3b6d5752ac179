package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/unibalancer/paca-keeper-go/model"
	"go.uber.org/zap"
)

// Staking binds the paca.finance staking contract and its read helper for a
// single signing account. All amounts are returned scaled to whole reward
// tokens.
type Staking struct {
	signer         *Signer
	contract       *bind.BoundContract
	helper         *bind.BoundContract
	contractAbi    abi.ABI
	rewardDecimals int32
	log            *zap.Logger
}

type stakeEntry struct {
	OriginalAmount *big.Int
	StartTime      *big.Int
}

func NewStaking(client *Client, signer *Signer, config model.ChainConfig, log *zap.Logger) (*Staking, error) {
	contractAbi, err := abi.JSON(strings.NewReader(stakingContractABI))
	if err != nil {
		return nil, fmt.Errorf("cannot parse staking abi: %w", err)
	}

	helperAbi, err := abi.JSON(strings.NewReader(helperContractABI))
	if err != nil {
		return nil, fmt.Errorf("cannot parse helper abi: %w", err)
	}

	return &Staking{
		signer:         signer,
		contract:       bind.NewBoundContract(common.HexToAddress(config.ContractAddress), contractAbi, client.eth, client.eth, client.eth),
		helper:         bind.NewBoundContract(common.HexToAddress(config.HelperContractAddress), helperAbi, client.eth, client.eth, client.eth),
		contractAbi:    contractAbi,
		rewardDecimals: config.RewardToken.Decimals,
		log:            log,
	}, nil
}

func (s *Staking) callBigInt(ctx context.Context, contract *bind.BoundContract, method string, args ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("cannot call %s: %w", method, err)
	}

	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// ViewAllRewards returns the account's currently claimable rewards.
func (s *Staking) ViewAllRewards(ctx context.Context) (decimal.Decimal, error) {
	rewards, err := s.callBigInt(ctx, s.contract, "viewAllRewards", s.signer.Address())
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromBigInt(rewards, -s.rewardDecimals), nil
}

// MinimumClaimAmount returns the contract's claim threshold.
func (s *Staking) MinimumClaimAmount(ctx context.Context) (decimal.Decimal, error) {
	amount, err := s.callBigInt(ctx, s.contract, "minimumClaimAmount")
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromBigInt(amount, -s.rewardDecimals), nil
}

// MinimumCompoundAmount returns the contract's compound threshold.
func (s *Staking) MinimumCompoundAmount(ctx context.Context) (decimal.Decimal, error) {
	amount, err := s.callBigInt(ctx, s.contract, "minimumCompoundAmount")
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromBigInt(amount, -s.rewardDecimals), nil
}

// AmountDeposited returns the account's total deposited principal.
func (s *Staking) AmountDeposited(ctx context.Context) (decimal.Decimal, error) {
	deposited, err := s.callBigInt(ctx, s.contract, "totalAmountDeposited", s.signer.Address())
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromBigInt(deposited, -s.rewardDecimals), nil
}

// DailyEarnings returns the helper contract's daily earnings estimate for the
// account.
func (s *Staking) DailyEarnings(ctx context.Context) (decimal.Decimal, error) {
	var out []interface{}
	if err := s.helper.Call(&bind.CallOpts{Context: ctx}, &out, "getDailyEarnings", s.signer.Address()); err != nil {
		return decimal.Zero, fmt.Errorf("cannot call getDailyEarnings: %w", err)
	}

	earnings := *abi.ConvertType(out[2], new(*big.Int)).(**big.Int)

	return decimal.NewFromBigInt(earnings, -s.rewardDecimals), nil
}

// TotalStake sums the account's active stakes.
func (s *Staking) TotalStake(ctx context.Context) (int, decimal.Decimal, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getStakes", s.signer.Address()); err != nil {
		return 0, decimal.Zero, fmt.Errorf("cannot call getStakes: %w", err)
	}

	stakes := *abi.ConvertType(out[0], new([]stakeEntry)).(*[]stakeEntry)

	total := decimal.Zero
	for _, stake := range stakes {
		total = total.Add(decimal.NewFromBigInt(stake.OriginalAmount, -s.rewardDecimals))
	}

	return len(stakes), total, nil
}

func (s *Staking) ClaimAllRewards(ctx context.Context) (*types.Transaction, error) {
	opts, err := s.signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}

	return s.contract.Transact(opts, "claimAllRewards")
}

func (s *Staking) CompoundAllRewards(ctx context.Context) (*types.Transaction, error) {
	opts, err := s.signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}

	return s.contract.Transact(opts, "compoundAllRewards")
}

// EventAmount scans a receipt for the named contract event and returns its
// amount argument. The second return is false when the event is absent or
// cannot be decoded.
func (s *Staking) EventAmount(receipt *types.Receipt, eventName string) (decimal.Decimal, bool) {
	event, ok := s.contractAbi.Events[eventName]
	if !ok {
		return decimal.Zero, false
	}

	for _, entry := range receipt.Logs {
		if len(entry.Topics) == 0 || entry.Topics[0] != event.ID {
			continue
		}

		values, err := event.Inputs.NonIndexed().Unpack(entry.Data)
		if err != nil || len(values) == 0 {
			s.log.Warn("cannot decode event log", zap.String("event", eventName), zap.Error(err))
			continue
		}

		amount, ok := values[0].(*big.Int)
		if !ok {
			continue
		}

		return decimal.NewFromBigInt(amount, -s.rewardDecimals), true
	}

	return decimal.Zero, false
}
