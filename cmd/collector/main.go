package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raymondelooff/fermentation-monitor/collector"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("error: config file location not specified")
	}

	c, err := collector.LoadConfig(os.Args[1])
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

	// Set up metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := collector.NewMetrics(registry)

	if c.Metrics.Address != "" {
		mux := http.NewServeMux()
		mux.Handle(c.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			sugar.Infof("collector: metrics on %s%s", c.Metrics.Address, c.Metrics.Path)
			if err := http.ListenAndServe(c.Metrics.Address, mux); err != nil {
				sugar.Errorf("collector: metrics server: %v", err)
			}
		}()
	}

	// Set up forwarders
	var forwarders []collector.Forwarder

	if c.AMQP.DSN != "" {
		publisher := collector.NewPublisher(c.AMQP, sugar)
		if err := publisher.Connect(); err != nil {
			sugar.Fatalf("collector: %s", err)
		}
		defer publisher.Shutdown()
		forwarders = append(forwarders, publisher)
	}

	if c.MySQL.DSN != "" {
		db, err := collector.NewDbConnection(c.MySQL)
		if err != nil {
			sugar.Fatalf("collector: %s", err)
		}
		defer db.Close()

		writer := collector.NewConditionWriter(db, sugar)
		defer writer.Close()
		forwarders = append(forwarders, writer)
	}

	// Set up collector
	lineWriter, err := collector.NewLineWriter(c.Store, nil, sugar)
	if err != nil {
		sugar.Fatalf("collector: %s", err)
	}

	srv := collector.NewCollector(c, lineWriter, forwarders, metrics, sugar)
	supervisor := collector.NewSupervisor(c.Supervisor, srv, sugar)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exit := make(chan os.Signal, 1)
		signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)

		<-exit

		sugar.Info("collector: shutting down")
		cancel()
	}()

	supervisor.Run(ctx)
	sugar.Info("collector: shutdown OK")
}
