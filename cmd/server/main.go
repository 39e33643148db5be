package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/config"
	"github.com/mamadbah2/posgate/internal/repository/mongodb"
	"github.com/mamadbah2/posgate/internal/repository/sheets"
	"github.com/mamadbah2/posgate/internal/scheduler"
	"github.com/mamadbah2/posgate/internal/server/handlers"
	"github.com/mamadbah2/posgate/internal/server/router"
	authsvc "github.com/mamadbah2/posgate/internal/service/auth"
	cartsvc "github.com/mamadbah2/posgate/internal/service/cart"
	checkoutsvc "github.com/mamadbah2/posgate/internal/service/checkout"
	historysvc "github.com/mamadbah2/posgate/internal/service/history"
	labelsvc "github.com/mamadbah2/posgate/internal/service/labels"
	scannersvc "github.com/mamadbah2/posgate/internal/service/scanner"
	"github.com/mamadbah2/posgate/pkg/clients/backend"
	"github.com/mamadbah2/posgate/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(os.Getenv("LOG_LEVEL")))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var sheetsRepo sheets.Repository
	if cfg.SheetsEnabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("sheet report push enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, report push disabled")
	}

	backendClient := backend.NewClient(cfg.Backend)

	authService := authsvc.NewService(backendClient, mongoRepo, baseLogger.Named("svc.auth"))
	if err := authService.Restore(context.Background()); err != nil {
		baseLogger.Warn("session restore failed, terminals must log in again", zap.Error(err))
	}

	cartService := cartsvc.NewService(backendClient, baseLogger.Named("svc.cart"))
	checkoutService := checkoutsvc.NewService(backendClient, cartService, baseLogger.Named("svc.checkout"))
	historyService := historysvc.NewService(backendClient, baseLogger.Named("svc.history"))
	labelService := labelsvc.NewService(backendClient, baseLogger.Named("svc.labels"))
	scannerManager := scannersvc.NewManager(cfg.Scanner, baseLogger.Named("svc.scanner"))

	engine := router.New(router.Handlers{
		Auth:     handlers.NewAuthHandler(authService, baseLogger.Named("handlers.auth")),
		Products: handlers.NewProductHandler(backendClient, baseLogger.Named("handlers.products")),
		Cart:     handlers.NewCartHandler(cartService, checkoutService, baseLogger.Named("handlers.cart")),
		Sales:    handlers.NewSalesHandler(historyService, labelService, baseLogger.Named("handlers.sales")),
		Scanner:  handlers.NewScannerHandler(scannerManager, cartService, baseLogger.Named("handlers.scanner")),
	}, authService, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, historyService, sheetsRepo, mongoRepo, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
