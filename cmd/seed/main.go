package main

import (
	"context"
	"log"
	"time"

	"formassist/internal/catalog"
	"formassist/internal/config"
	"formassist/internal/repository"
	"formassist/internal/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	embedded, err := catalog.Embedded()
	if err != nil {
		logger.Fatal("load embedded catalog", zap.Error(err))
	}
	if problems := catalog.Validate(embedded); len(problems) > 0 {
		for _, p := range problems {
			logger.Error("invalid module", zap.String("problem", p.String()))
		}
		logger.Fatal("refusing to seed an invalid catalog", zap.Int("problems", len(problems)))
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	catalogSvc := service.NewCatalogService(repository.NewModuleRepo(db), embedded, logger)

	n, err := catalogSvc.Seed(ctx)
	if err != nil {
		logger.Fatal("seed modules", zap.Int("seeded", n), zap.Error(err))
	}
	logger.Info("modules seeded", zap.Int("count", n), zap.String("db", cfg.MongoDB))
}
