package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/unibalancer/paca-keeper-go/agent"
	"go.uber.org/zap"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic("cannot initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Secrets come from the environment; a local .env is optional.
	if err := godotenv.Load(); err == nil {
		log.Info("loaded environment from .env")
	}

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	keeperAgent, err := agent.NewKeeperAgent(log, configPath)
	if err != nil {
		log.Error("failed to initialize keeper agent", zap.Error(err))
		os.Exit(1)
	}

	if err := keeperAgent.Setup(); err != nil {
		log.Error("failed to setup keeper agent", zap.Error(err))
		os.Exit(1)
	}

	if err := keeperAgent.Run(); err != nil {
		log.Error("error running keeper agent", zap.Error(err))
		os.Exit(1)
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stopChan:
		log.Info("Shutting down Paca Keeper...")
		keeperAgent.Stop()
	case err := <-keeperAgent.Fatal():
		log.Error("fatal scheduler error", zap.Error(err))
		keeperAgent.Stop()
		os.Exit(1)
	}
}
