package agent

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unibalancer/paca-keeper-go/alert"
	"github.com/unibalancer/paca-keeper-go/chain"
	"github.com/unibalancer/paca-keeper-go/core"
	"github.com/unibalancer/paca-keeper-go/metrics"
	"github.com/unibalancer/paca-keeper-go/model"
	"github.com/unibalancer/paca-keeper-go/price"
	"github.com/unibalancer/paca-keeper-go/store"
	"github.com/unibalancer/paca-keeper-go/utils"
	"go.uber.org/zap"
)

const defaultDatabasePath = "keeper.db"

// KeeperAgent owns the process lifecycle: it builds the store, chain client,
// alert channels and accounts from configuration, then runs the engine.
type KeeperAgent struct {
	config        *model.Config
	log           *zap.Logger
	store         *store.Store
	client        *chain.Client
	notifier      *alert.Multi
	engine        *core.Engine
	metricsServer *http.Server
}

func NewKeeperAgent(log *zap.Logger, configPath string) (*KeeperAgent, error) {
	config, err := utils.ReadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return &KeeperAgent{
		config: config,
		log:    log,
	}, nil
}

func (a *KeeperAgent) Setup() error {
	databasePath := a.config.Daemon.DatabasePath
	if databasePath == "" {
		databasePath = defaultDatabasePath
	}

	db, err := store.Open(databasePath)
	if err != nil {
		return fmt.Errorf("cannot open store: %w", err)
	}
	a.store = db

	ctx, cancel := utils.GetContextWithTimeout(a.config)
	defer cancel()

	client, err := chain.Dial(ctx, a.config.Chain, a.log)
	if err != nil {
		return fmt.Errorf("cannot connect to chain: %w", err)
	}
	a.client = client

	a.notifier = a.buildNotifier()

	keeperMetrics := metrics.NewKeeperMetrics("paca_keeper")
	priceOracle := price.NewOracle(a.config.Chain.NativeToken.Symbol)

	submitterConfig := core.SubmitterConfig{
		CheckDelay: utils.GetReceiptCheckDelay(a.config),
	}

	accounts := make([]*core.Account, 0, len(a.config.Accounts))
	for _, accountConfig := range a.config.Accounts {
		times, err := utils.ParseTimes(accountConfig.Times)
		if err != nil {
			return fmt.Errorf("account %s: %w", accountConfig.Name, err)
		}

		actions := make([]model.ActionKind, 0, len(accountConfig.Actions))
		for _, action := range accountConfig.Actions {
			actions = append(actions, model.ActionKind(action))
		}

		signer, err := chain.NewSignerFromEnv(accountConfig.PrivateKeyEnv, a.config.Chain)
		if err != nil {
			return fmt.Errorf("account %s: %w", accountConfig.Name, err)
		}

		staking, err := chain.NewStaking(client, signer, a.config.Chain, a.log)
		if err != nil {
			return fmt.Errorf("account %s: %w", accountConfig.Name, err)
		}

		accounts = append(accounts, core.NewAccount(core.AccountParams{
			Name:        accountConfig.Name,
			Address:     signer.Address(),
			Times:       times,
			Actions:     actions,
			ReadTimeout: utils.GetTimeoutDuration(a.config),
			Staking:     staking,
			Store:       db,
			Balances:    client,
			Submitter:   core.NewSubmitter(client, submitterConfig, keeperMetrics, a.log),
			Notifier:    a.notifier,
			Price:       priceOracle,
			Metrics:     keeperMetrics,
			RewardToken: a.config.Chain.RewardToken,
			NativeToken: a.config.Chain.NativeToken,
			Log:         a.log,
		}))

		a.log.Info("configured account",
			zap.String("name", accountConfig.Name),
			zap.String("address", signer.Address().Hex()),
			zap.Strings("actions", accountConfig.Actions))
	}

	a.engine = core.NewEngine(accounts, a.notifier, keeperMetrics, a.log)

	if address := a.config.Daemon.MetricsAddress; address != "" {
		a.serveMetrics(address)
	}

	return nil
}

func (a *KeeperAgent) buildNotifier() *alert.Multi {
	var sinks []alert.Notifier

	if telegram := a.config.Alerts.Telegram; telegram != nil {
		token := os.Getenv(telegram.TokenEnv)
		if token == "" {
			a.log.Warn("telegram alerts configured but token env is empty", zap.String("env", telegram.TokenEnv))
		} else {
			sinks = append(sinks, alert.NewTelegram(token, *telegram, a.log))
		}
	}

	if email := a.config.Alerts.Email; email != nil {
		quiet := 5 * time.Minute
		if a.config.Alerts.QuietPeriodSeconds > 0 {
			quiet = time.Duration(a.config.Alerts.QuietPeriodSeconds) * time.Second
		}

		sinks = append(sinks, alert.NewEmail(*email, os.Getenv(email.PasswordEnv), quiet, a.log))
	}

	if len(sinks) == 0 {
		a.log.Warn("no alert channels configured, reports go to the log only")
	}

	return alert.NewMulti(sinks...)
}

func (a *KeeperAgent) serveMetrics(address string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	a.metricsServer = &http.Server{Addr: address, Handler: mux}

	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func (a *KeeperAgent) Run() error {
	a.log.Info("Paca.Finance Manager started.")
	a.notifier.Notify("Paca.Finance Manager started.")

	return a.engine.Start()
}

// Fatal surfaces an engine error that must abort the process.
func (a *KeeperAgent) Fatal() <-chan error {
	return a.engine.Fatal()
}

func (a *KeeperAgent) Stop() {
	a.engine.Stop()
	a.notifier.Close()

	if a.metricsServer != nil {
		a.metricsServer.Close()
	}

	a.client.Close()

	if err := a.store.Close(); err != nil {
		a.log.Warn("cannot close store", zap.Error(err))
	}

	a.log.Info("keeper agent shut down")
}
