package core

import (
	"strconv"

	"github.com/unibalancer/paca-keeper-go/model"
)

// Property keys persisted per account, suffixed with the account address.
const (
	nextRunKeyPrefix    = "NextRunTime-"
	nextActionKeyPrefix = "NextActionKey-"
)

func (a *Account) nextRunKey() string {
	return nextRunKeyPrefix + a.address.Hex()
}

func (a *Account) nextActionKey() string {
	return nextActionKeyPrefix + a.address.Hex()
}

// PeekNextAction reads the persisted rotation pointer without advancing it.
// Missing, malformed, or out-of-range values reduce to a valid index, so a
// stale row never wedges the account.
func (a *Account) PeekNextAction() (int, model.ActionKind, error) {
	value, _, err := a.store.GetProperty(a.nextActionKey())
	if err != nil {
		return 0, "", err
	}

	index, err := strconv.Atoi(value)
	if err != nil || index < 0 {
		index = 0
	}

	index %= len(a.actions)

	return index, a.actions[index], nil
}

// AdvanceAction persists index+1. The stored value grows without bound;
// PeekNextAction reduces it modulo the rotation length.
func (a *Account) AdvanceAction(index int) error {
	return a.store.SetProperty(a.nextActionKey(), strconv.Itoa(index+1))
}
