package model

import (
	"github.com/shopspring/decimal"
)

type Config struct {
	Daemon   DaemonConfig    `yaml:"daemon"`
	Chain    ChainConfig     `yaml:"chain"`
	Accounts []AccountConfig `yaml:"accounts"`
	Alerts   AlertsConfig    `yaml:"alerts"`
}

type DaemonConfig struct {
	ContextTimeoutSeconds int    `yaml:"context_timeout_seconds"`
	ReceiptCheckDelayMs   int    `yaml:"receipt_check_delay_ms"`
	MetricsAddress        string `yaml:"metrics_address"`
	DatabasePath          string `yaml:"database_path"`
}

type ChainConfig struct {
	RpcUrlEnv             string `yaml:"rpc_url_env"`
	ChainId               int64  `yaml:"chain_id"`
	GasPriceGwei          int64  `yaml:"gas_price_gwei"`
	NativeToken           Token  `yaml:"native_token"`
	RewardToken           Token  `yaml:"reward_token"`
	ContractAddress       string `yaml:"contract_address"`
	HelperContractAddress string `yaml:"helper_contract_address"`
}

type Token struct {
	Symbol   string `yaml:"symbol"`
	Decimals int32  `yaml:"decimals"`
}

type AccountConfig struct {
	Name          string   `yaml:"name"`
	PrivateKeyEnv string   `yaml:"private_key_env"`
	Times         []string `yaml:"times"`
	Actions       []string `yaml:"actions"`
}

type AlertsConfig struct {
	QuietPeriodSeconds int             `yaml:"quiet_period_seconds"`
	Telegram           *TelegramConfig `yaml:"telegram"`
	Email              *EmailConfig    `yaml:"email"`
}

type TelegramConfig struct {
	TokenEnv string `yaml:"token_env"`
	ChatId   string `yaml:"chat_id"`
}

type EmailConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	PasswordEnv string `yaml:"password_env"`
	From        string `yaml:"from"`
	To          string `yaml:"to"`
}

// TimeOfDay is a wall-clock slot an account may run at.
type TimeOfDay struct {
	Hours   int
	Minutes int
}

// MinuteOfDay orders slots within a day.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hours*60 + t.Minutes
}

type ActionKind string

const (
	ActionClaim    ActionKind = "claim"
	ActionCompound ActionKind = "compound"
	ActionNoOp     ActionKind = "noop"
)

var PossibleActions = []ActionKind{ActionClaim, ActionCompound, ActionNoOp}

func (a ActionKind) Valid() bool {
	for _, possible := range PossibleActions {
		if a == possible {
			return true
		}
	}
	return false
}

// StatSnapshot is one statistics row recorded after a successful action.
type StatSnapshot struct {
	Account    string
	StakeCount int
	StakeTotal decimal.Decimal
	Claimed    decimal.Decimal
	Compounded decimal.Decimal
	GasUsed    decimal.Decimal
	GasBalance decimal.Decimal
}
