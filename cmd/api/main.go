package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/moon-three/account/internal/account"
	accountStore "github.com/moon-three/account/internal/account/store"
	"github.com/moon-three/account/internal/config"
	"github.com/moon-three/account/internal/database"
	accountHttp "github.com/moon-three/account/internal/http"
	accountHandler "github.com/moon-three/account/internal/http/account"
	statementHandler "github.com/moon-three/account/internal/http/statement"
	txHandler "github.com/moon-three/account/internal/http/transaction"
	"github.com/moon-three/account/internal/lock"
	"github.com/moon-three/account/internal/redis"
	"github.com/moon-three/account/internal/statement"
	"github.com/moon-three/account/internal/transaction"
	txStore "github.com/moon-three/account/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	var (
		locks              = lock.NewCoordinator(redisClient, cfg.Lock.WaitBudget, cfg.Lock.Lease)
		accountService     = account.NewService(accountStore.New(db))
		transactionService = transaction.NewService(txStore.New(db))
		statementService   = statement.NewService(transactionService)
	)

	var (
		accountH = accountHandler.NewHandler(accountService)
		txH      = txHandler.NewHandler(transactionService, locks, txHandler.AmountBounds{
			Min: cfg.Transaction.MinAmount,
			Max: cfg.Transaction.MaxAmount,
		})
		statementH = statementHandler.NewHandler(statementService)
	)

	router := accountHttp.New(accountH, txH, statementH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
