package chain

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/unibalancer/paca-keeper-go/model"
	"go.uber.org/zap"
)

// Client wraps the JSON-RPC connection shared by all accounts.
type Client struct {
	eth            *ethclient.Client
	nativeDecimals int32
	log            *zap.Logger
}

func Dial(ctx context.Context, config model.ChainConfig, log *zap.Logger) (*Client, error) {
	rpcUrl := os.Getenv(config.RpcUrlEnv)
	if rpcUrl == "" {
		return nil, fmt.Errorf("environment variable %s is not set", config.RpcUrlEnv)
	}

	eth, err := ethclient.DialContext(ctx, rpcUrl)
	if err != nil {
		return nil, fmt.Errorf("cannot dial rpc endpoint: %w", err)
	}

	return &Client{
		eth:            eth,
		nativeDecimals: config.NativeToken.Decimals,
		log:            log,
	}, nil
}

// NativeBalance returns the gas-token balance of an address in whole-token
// units.
func (c *Client) NativeBalance(ctx context.Context, address common.Address) (decimal.Decimal, error) {
	balance, err := c.eth.BalanceAt(ctx, address, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot get balance for %s: %w", address.Hex(), err)
	}

	return decimal.NewFromBigInt(balance, -c.nativeDecimals), nil
}

// TransactionReceipt returns the receipt for a transaction hash, or nil when
// the transaction is still pending.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := c.eth.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

func (c *Client) Close() {
	c.eth.Close()
}
