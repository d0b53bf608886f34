package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/service"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Printf("redis unavailable at %s: rate limiting and response cache disabled", cfg.Redis.Address())
	} else {
		defer rdb.Close()
	}

	repo, closeRepo, err := openStateRepository(cfg, rdb)
	if err != nil {
		log.Fatalf("state repository: %v", err)
	}
	defer closeRepo()

	ledger, err := service.OpenLedger(ctx, repo)
	if err != nil {
		log.Fatalf("open ledger: %v", err)
	}

	var notifier queue.Notifier = queue.NopNotifier{}
	if cfg.Events.Enabled {
		notifier = queue.NewPublisher(cfg.Events.RabbitMQURL)
		go func() {
			if err := queue.StartTicketConsumer(ctx, cfg.Events.RabbitMQURL, cfg.Events.LogFile); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("ticket consumer stopped: %v", err)
			}
		}()
	}

	cat := ledger.Catalog()
	users := service.NewUserDirectory(ledger, cfg.BcryptCost)
	engine := service.NewBookingEngine(ledger, cat, model.Grid{Rows: cfg.SeatRows, Cols: cfg.SeatCols}, notifier)

	e := router.New(cfg, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users),
		Catalog: handler.NewCatalogHandler(cat),
		Tickets: handler.NewTicketHandler(engine, cat),
	}, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, state=%s)", addr, cfg.Env, cfg.State.Driver)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStateRepository selects the persistence gateway from configuration.
// The returned close function releases the MySQL pool when one was opened.
func openStateRepository(cfg config.Config, rdb *redis.Client) (repository.StateRepository, func(), error) {
	b := repository.Backends{
		FilePath: cfg.State.File,
		Redis:    rdb,
		RedisKey: cfg.State.RedisKey,
	}
	closeFn := func() {}
	if cfg.State.Driver == repository.DriverMySQL {
		db, err := database.Open(database.Options{
			User: cfg.DB.User,
			Pass: cfg.DB.Pass,
			Host: cfg.DB.Host,
			Port: cfg.DB.Port,
			Name: cfg.DB.Name,
		})
		if err != nil {
			return nil, nil, err
		}
		b.DB = db
		closeFn = func() { closeDB(db) }
	}
	repo, err := repository.Open(cfg.State.Driver, b)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return repo, closeFn, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Printf("close database: %v", err)
	}
}

func newLogger(env string) *slog.Logger {
	if env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
