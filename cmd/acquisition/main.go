package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/raymondelooff/fermentation-monitor/acquisition"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("error: config file location not specified")
	}

	c, err := acquisition.LoadConfig(os.Args[1])
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	// Set up logger
	var logger *zap.Logger
	if c.Env == "dev" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("error: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("acquisition: starting",
		"device", c.Bus.Device,
		"slave_id", c.Loop.SlaveID,
		"relay", c.Relay.Address,
		"store", c.Store.URL,
	)

	// Set up sinks
	store := acquisition.NewStoreWriter(c.Store, sugar)
	defer store.Close()

	loop := acquisition.NewLoop(
		c.Loop,
		c.Sensor,
		acquisition.NewBusReader(c.Bus, sugar),
		acquisition.NewRelayClient(c.Relay, sugar),
		store,
		sugar,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exit := make(chan os.Signal, 1)
		signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)

		<-exit

		sugar.Info("acquisition: shutting down")
		cancel()
	}()

	loop.Run(ctx)
	sugar.Info("acquisition: shutdown OK")
}
