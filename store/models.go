package store

import (
	"time"
)

// Property is a string key/value row used for schedule state and running
// accumulators.
type Property struct {
	ID        uint   `gorm:"primarykey"`
	Key       string `gorm:"uniqueIndex;column:key"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClaimHistory is one realized claim.
type ClaimHistory struct {
	ID        uint `gorm:"primarykey"`
	Account   string
	Token     string
	Amount    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CompoundHistory is one realized compound.
type CompoundHistory struct {
	ID        uint `gorm:"primarykey"`
	Account   string
	Token     string
	Amount    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeficitHistory is one gas expense, tagged with the action that incurred it.
type DeficitHistory struct {
	ID        uint `gorm:"primarykey"`
	Account   string
	Token     string
	Amount    string
	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stat is an append-only statistics snapshot saved after each successful
// action.
type Stat struct {
	ID         uint `gorm:"primarykey"`
	Account    string
	StakeCount int
	StakeTotal string
	Claimed    string
	Compounded string
	GasUsed    string
	GasBalance string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
