package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/unibalancer/paca-keeper-go/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	claimKeyPrefix    = "Claim"
	compoundKeyPrefix = "Compound"
	deficitKeyPrefix  = "Deficit"
)

func accumulatorKey(prefix, account, token string) string {
	return prefix + "-" + strings.ToUpper(token) + "-" + account
}

// GetProperty reads a KV row. The second return reports presence.
func (s *Store) GetProperty(key string) (string, bool, error) {
	var property Property
	err := s.db.Where("key = ?", key).First(&property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cannot read property %s: %w", key, err)
	}

	return property.Value, true, nil
}

// SetProperty upserts a KV row.
func (s *Store) SetProperty(key, value string) error {
	property := Property{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&property).Error
	if err != nil {
		return fmt.Errorf("cannot set property %s: %w", key, err)
	}

	return nil
}

func (s *Store) readAccumulator(key string) (decimal.Decimal, error) {
	value, found, err := s.GetProperty(key)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt accumulator %s: %w", key, err)
	}

	return amount, nil
}

func (s *Store) addAccumulator(key string, amount decimal.Decimal, history interface{}) (decimal.Decimal, error) {
	current, err := s.readAccumulator(key)
	if err != nil {
		return decimal.Zero, err
	}

	total := current.Add(amount)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		property := Property{Key: key, Value: total.String()}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&property).Error; err != nil {
			return err
		}

		return tx.Create(history).Error
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot update accumulator %s: %w", key, err)
	}

	return total, nil
}

// AddClaimed bumps the claimed accumulator and appends a history row,
// returning the new total.
func (s *Store) AddClaimed(account, token string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.addAccumulator(
		accumulatorKey(claimKeyPrefix, account, token),
		amount,
		&ClaimHistory{Account: account, Token: strings.ToUpper(token), Amount: amount.String()},
	)
}

// AddCompounded bumps the compounded accumulator and appends a history row,
// returning the new total.
func (s *Store) AddCompounded(account, token string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.addAccumulator(
		accumulatorKey(compoundKeyPrefix, account, token),
		amount,
		&CompoundHistory{Account: account, Token: strings.ToUpper(token), Amount: amount.String()},
	)
}

// AddDeficit bumps the gas-cost accumulator and appends a history row tagged
// with the action that caused the spend.
func (s *Store) AddDeficit(account, token string, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	return s.addAccumulator(
		accumulatorKey(deficitKeyPrefix, account, token),
		amount,
		&DeficitHistory{Account: account, Token: strings.ToUpper(token), Amount: amount.String(), Reason: reason},
	)
}

func (s *Store) GetClaimed(account, token string) (decimal.Decimal, error) {
	return s.readAccumulator(accumulatorKey(claimKeyPrefix, account, token))
}

func (s *Store) GetCompounded(account, token string) (decimal.Decimal, error) {
	return s.readAccumulator(accumulatorKey(compoundKeyPrefix, account, token))
}

func (s *Store) GetDeficits(account, token string) (decimal.Decimal, error) {
	return s.readAccumulator(accumulatorKey(deficitKeyPrefix, account, token))
}

// SaveStat appends a statistics snapshot row.
func (s *Store) SaveStat(snapshot model.StatSnapshot) error {
	stat := Stat{
		Account:    snapshot.Account,
		StakeCount: snapshot.StakeCount,
		StakeTotal: snapshot.StakeTotal.String(),
		Claimed:    snapshot.Claimed.String(),
		Compounded: snapshot.Compounded.String(),
		GasUsed:    snapshot.GasUsed.String(),
		GasBalance: snapshot.GasBalance.String(),
	}

	if err := s.db.Create(&stat).Error; err != nil {
		return fmt.Errorf("cannot save stats for %s: %w", snapshot.Account, err)
	}

	return nil
}
