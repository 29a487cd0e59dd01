package main

import (
	"context"
	"flag"
	"log"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/buffer"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/config"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/enrich"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/lifecycle"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/processor"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/sync"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/zabbix"
)

func main() {
	configPath := flag.String("config", "/etc/lms-zabbix-sync/config.json", "Path to the configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zbx := zabbix.NewClient(cfg.Zabbix, logg.WithComponent("zabbix"))
	if err := zbx.Connect(ctx); err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to Zabbix API")
	}

	buf := buffer.New(cfg.Buffer.SnapshotPath, logg.WithComponent("buffer"))
	if err := buf.Load(); err != nil {
		logg.Fatal().Err(err).Msg("Failed to load buffer snapshot")
	}

	tags := enrich.NewResolver(cfg.Enrichment, logg.WithComponent("enrich"))
	dispatcher := processor.NewDispatcher(zbx, tags, logg.WithComponent("dispatcher"))
	router := processor.NewRouter(buf, zbx, dispatcher, logg.WithComponent("processor"))

	svc := sync.NewService(cfg.NATS, router, buf, logg.WithComponent("sync"))

	if err := lifecycle.Run(ctx, svc, logg); err != nil {
		logg.Fatal().Err(err).Msg("Service failed")
	}
}
