package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HaGotHem/optines/internal/api"
	"github.com/HaGotHem/optines/internal/client"
	"github.com/HaGotHem/optines/internal/client/notifier"
	"github.com/HaGotHem/optines/internal/config"
	"github.com/HaGotHem/optines/internal/logging"
	"github.com/HaGotHem/optines/internal/repository"
	"github.com/HaGotHem/optines/internal/scheduler"
	"github.com/HaGotHem/optines/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_INVALID, Description: %v", err)
	}

	if err := logging.Init(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Location: cfg.Location}); err != nil {
		logging.Logger.Fatalf("Event ID: LOGGER_INIT_FAILED, Description: %v", err)
	}
	logging.Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: Logger initialized at level %s", logging.Logger.GetLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: %v", err)
	}
	defer closeStores()
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Using %s store", cfg.StoreDriver)

	var n client.Notifier
	if cfg.NotifyWebhookURL != "" {
		n = notifier.NewWebhookClient(cfg.NotifyWebhookURL)
		logging.Logger.Infof("Event ID: NOTIFIER_WEBHOOK, Description: Notifications sent to %s", cfg.NotifyWebhookURL)
	} else {
		n = notifier.NewLogNotifier(logging.Logger)
	}

	router := api.SetupRouter(stores, n, service.PlanningOptions{
		Manager: service.Manager{
			Name:     cfg.Manager.Name,
			Section:  cfg.Manager.Section,
			Initials: cfg.Manager.Initials,
		},
		ReminderLead: cfg.ReminderLead,
		Location:     cfg.Location,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: %v", err)
		}
	}()

	logging.Logger.Infof("Event ID: SERVER_STARTED, Description: Listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Logger.Fatalf("Event ID: SERVER_FAILED, Description: %v", err)
	}
	logging.Logger.Info("Event ID: SERVER_STOPPED, Description: Server stopped")
}

func openStores(ctx context.Context, cfg *config.Config) (api.Stores, func(), error) {
	defaults := scheduler.DefaultWorkingHours()

	if cfg.StoreDriver == config.DriverMongo {
		mc, err := repository.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return api.Stores{}, nil, err
		}
		db := mc.Database(cfg.MongoDBName)
		closeFn := func() {
			if err := mc.Disconnect(context.Background()); err != nil {
				logging.Logger.Errorf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
			}
		}
		return api.Stores{
			Tasks:    repository.NewMongoTaskRepository(db),
			Roster:   repository.NewMongoEmployeeRepository(db),
			Settings: repository.NewMongoSettingsRepository(db, defaults),
		}, closeFn, nil
	}

	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		return api.Stores{}, nil, err
	}
	return api.Stores{
		Tasks:    repository.NewTaskRepository(db),
		Roster:   repository.NewEmployeeRepository(db),
		Settings: repository.NewSettingsRepository(db, defaults),
	}, func() { db.Close() }, nil
}
