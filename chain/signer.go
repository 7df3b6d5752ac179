package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/unibalancer/paca-keeper-go/model"
)

// Signer holds one account's key and builds transaction options for it.
type Signer struct {
	key      *ecdsa.PrivateKey
	address  common.Address
	chainId  *big.Int
	gasPrice *big.Int
}

// NewSignerFromEnv parses a hex private key from the named environment
// variable. Missing or malformed keys are fatal at startup.
func NewSignerFromEnv(envVar string, config model.ChainConfig) (*Signer, error) {
	raw := os.Getenv(envVar)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s is not set", envVar)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("cannot parse private key from %s: %w", envVar, err)
	}

	var gasPrice *big.Int
	if config.GasPriceGwei > 0 {
		gasPrice = new(big.Int).Mul(big.NewInt(config.GasPriceGwei), big.NewInt(1_000_000_000))
	}

	return &Signer{
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		chainId:  big.NewInt(config.ChainId),
		gasPrice: gasPrice,
	}, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

func (s *Signer) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainId)
	if err != nil {
		return nil, fmt.Errorf("cannot build transactor: %w", err)
	}

	opts.Context = ctx
	if s.gasPrice != nil {
		opts.GasPrice = s.gasPrice
	}

	return opts, nil
}
