package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hray3182/calendar/internal/api"
	"github.com/hray3182/calendar/internal/boltstore"
	"github.com/hray3182/calendar/internal/config"
	"github.com/hray3182/calendar/internal/database"
	"github.com/hray3182/calendar/internal/repository"
	"github.com/hray3182/calendar/internal/scheduler"
	"github.com/hray3182/calendar/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	notified := scheduler.NewNotifiedSet()
	notifiers := []scheduler.Notifier{scheduler.LogNotifier{}}
	if cfg.TelegramEnabled() {
		tgAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("Failed to create Telegram API: %v", err)
		}
		notifiers = append(notifiers, scheduler.NewTelegramNotifier(tgAPI, cfg.TelegramChatID))
		log.Printf("Telegram notifications enabled for chat %d", cfg.TelegramChatID)
	} else {
		log.Println("Telegram not configured, notifications go to the log only")
	}

	// The scheduler reads the service list, and the service pokes the
	// scheduler after every reload.
	var sched *scheduler.Scheduler
	svc := service.New(store,
		service.WithMaxOccurrences(cfg.MaxOccurrences),
		service.WithOnChange(func() {
			if sched != nil {
				sched.Notify()
			}
		}),
	)
	sched = scheduler.New(svc, notified, notifiers...)
	sched.SetCheckInterval(cfg.PollInterval)

	if err := svc.Reload(ctx); err != nil {
		log.Fatalf("Failed to load events: %v", err)
	}
	log.Printf("Loaded %d events", len(svc.Events()))

	server := api.New(store, svc, notified)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Start(ctx)
		return nil
	})
	g.Go(func() error {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.Echo().Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Echo().Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// openStore returns the configured persistence collaborator and its cleanup.
func openStore(ctx context.Context, cfg *config.Config) (service.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Connected to database")

		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Println("Database migrations completed")
		return repository.NewEventRepository(db), db.Close, nil

	default:
		store, err := boltstore.Open(boltstore.Config{Path: cfg.BoltPath, Timeout: time.Second})
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Opened bolt store at %s", cfg.BoltPath)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("Failed to close bolt store: %v", err)
			}
		}, nil
	}
}
