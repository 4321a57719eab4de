package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"pricingdesk/internal/api"
	"pricingdesk/internal/assistant"
	"pricingdesk/internal/cache"
	"pricingdesk/internal/config"
	"pricingdesk/internal/datachat"
	"pricingdesk/internal/logging"
	"pricingdesk/internal/pipeline"
	"pricingdesk/internal/session"
	"pricingdesk/internal/volume"
	"pricingdesk/internal/warehouse"
)

func main() {
	cfgPath := os.Getenv("PRICINGDESK_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(os.Getenv("PRICINGDESK_LOG"))
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	rdb, err := cache.New(cfg.Redis)
	if err != nil {
		logger.Fatalw("create redis client", "error", err)
	}
	defer rdb.Close()
	if rdb == nil {
		logger.Infow("redis not configured, session snapshots disabled")
	}

	wh := warehouse.NewClient(cfg.Warehouse, logger)
	stmts := warehouse.NewStatements(cfg.Warehouse.TablePrefix(), cfg.Volume.Path, cfg.Warehouse.AIEndpoint)
	vol := volume.NewManager(cfg.Volume, cfg.Warehouse, logger)
	runner := pipeline.NewRunner(wh, stmts, logger)

	var invoker assistant.Invoker
	switch cfg.Assistant.Mode {
	case "endpoint":
		ep, err := assistant.NewEndpointInvoker(context.Background(), cfg.Warehouse)
		if err != nil {
			logger.Fatalw("init endpoint invoker", "error", err)
		}
		invoker = ep
	default:
		invoker = assistant.NewWarehouseInvoker(wh, stmts)
	}
	chat := assistant.NewService(invoker, logger)

	var data api.DataChat
	if dc := datachat.NewClient(cfg.Warehouse, logger); dc != nil {
		data = dc
	} else {
		logger.Infow("data space not configured, data chat disabled")
	}

	ttl := time.Duration(cfg.Redis.SnapshotTTL) * time.Minute
	sessions := session.NewStore(rdb, ttl, logger)

	handlers := api.NewHandler(sessions, vol, runner, chat, data, logger)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	logger.Infow("pricingdesk listening", "addr", cfg.Server.Address, "assistant_mode", cfg.Assistant.Mode)
	if err := router.Run(cfg.Server.Address); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
