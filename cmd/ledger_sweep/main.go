package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"coursedesk/internal/config"
	"coursedesk/internal/database"
	"coursedesk/internal/domain"
	"coursedesk/internal/events"
	"coursedesk/internal/modules/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("db connect failed", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			slog.Error("amqp connect failed", "error", err)
			os.Exit(1)
		}
		defer amqpPub.Close()
		publisher = amqpPub
	}

	svc := ledger.NewService(db, publisher, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SweepInterval <= 0 {
		if err := sweep(ctx, db, svc); err != nil {
			slog.Error("ledger sweep failed", "error", err)
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		if err := sweep(ctx, db, svc); err != nil {
			slog.Error("ledger sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("ledger sweep stopped")
			return
		case <-ticker.C:
		}
	}
}

// sweep backfills missing amounts and then recomputes every booking.
func sweep(ctx context.Context, db *gorm.DB, svc *ledger.Service) error {
	var missing []domain.Booking
	if err := db.WithContext(ctx).Where("amount IS NULL").Find(&missing).Error; err != nil {
		return fmt.Errorf("list bookings without amount: %w", err)
	}
	filled := 0
	if len(missing) > 0 {
		rows, err := svc.FillAmounts(ctx, missing)
		if err != nil {
			return fmt.Errorf("fill amounts: %w", err)
		}
		for _, b := range rows {
			if b.Amount != nil {
				filled++
			}
		}
	}

	done, err := svc.RecomputeAll(ctx)
	slog.Info("ledger sweep completed", "backfilled", filled, "without_amount", len(missing)-filled, "recomputed", done)
	return err
}
