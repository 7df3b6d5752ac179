package utils

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"
	"github.com/unibalancer/paca-keeper-go/model"
)

func ReadConfig(filename string) (*model.Config, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := &model.Config{}

	if err = yaml.Unmarshal(bytes, config); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func validateConfig(config *model.Config) error {
	if err := checkChain(config); err != nil {
		return err
	}

	return checkAccounts(config)
}

func checkChain(config *model.Config) error {
	if config.Chain.RpcUrlEnv == "" {
		return fmt.Errorf("chain rpc_url_env not specified")
	}
	if config.Chain.ChainId == 0 {
		return fmt.Errorf("chain_id not specified")
	}
	if config.Chain.ContractAddress == "" {
		return fmt.Errorf("contract_address not specified")
	}
	if config.Chain.HelperContractAddress == "" {
		return fmt.Errorf("helper_contract_address not specified")
	}
	return nil
}

func checkAccounts(config *model.Config) error {
	if len(config.Accounts) == 0 {
		return fmt.Errorf("no accounts defined")
	}

	accountNames := make(map[string]bool)
	for _, account := range config.Accounts {
		if _, exists := accountNames[account.Name]; exists {
			return fmt.Errorf("duplicate account name: %s", account.Name)
		}
		accountNames[account.Name] = true

		if account.PrivateKeyEnv == "" {
			return fmt.Errorf("private_key_env not specified for account: %s", account.Name)
		}

		if len(account.Times) == 0 {
			return fmt.Errorf("no times specified for account: %s", account.Name)
		}
		if _, err := ParseTimes(account.Times); err != nil {
			return fmt.Errorf("account %s: %w", account.Name, err)
		}

		if len(account.Actions) == 0 {
			return fmt.Errorf("no actions specified for account: %s", account.Name)
		}
		for _, action := range account.Actions {
			if !model.ActionKind(action).Valid() {
				return fmt.Errorf("account %s: action must be one of %v, got %q", account.Name, model.PossibleActions, action)
			}
		}
	}

	return nil
}
