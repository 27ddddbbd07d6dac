package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/merchkit/order-service/internal/domain/order"
	"github.com/merchkit/order-service/internal/storage/postgres"
)

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return seedOrders(ctx, postgres.NewOrderRepository(pool))
}

// seedOrders inserts demo orders spread across statuses and the current and
// previous months so the analytics endpoint has data to report.
func seedOrders(ctx context.Context, repo *postgres.OrderRepository) error {
	now := time.Now().UTC()
	lastMonth := now.AddDate(0, -1, 0)

	demo := []order.Order{
		{
			Description: "Pre-order: wireless earbuds",
			OrderDate:   now,
			Amount:      4999,
			TotalAmount: 4999,
			Address:     "12 Baker St, London",
			Payment:     "card",
			Status:      order.StatusPending,
			CustomerID:  1,
		},
		{
			Description: "Mechanical keyboard",
			OrderDate:   now.AddDate(0, 0, -2),
			Amount:      12900,
			TotalAmount: 11610,
			Discount:    1290,
			Address:     "44 Elm Ave, Austin",
			Payment:     "card",
			Status:      order.StatusPlaced,
			CustomerID:  2,
			CouponCode:  "WELCOME10",
		},
		{
			Description: "Monitor stand and cable kit",
			OrderDate:   now.AddDate(0, 0, -5),
			Amount:      7450,
			TotalAmount: 7450,
			Address:     "9 Rue de la Paix, Paris",
			Payment:     "invoice",
			Status:      order.StatusShipped,
			CustomerID:  1,
		},
		{
			Description: "USB-C dock",
			OrderDate:   now.AddDate(0, 0, -8),
			Amount:      15900,
			TotalAmount: 15900,
			Address:     "221 Pine Rd, Seattle",
			Payment:     "card",
			Status:      order.StatusDelivered,
			CustomerID:  3,
		},
		{
			Description: "Desk lamp",
			OrderDate:   lastMonth,
			Amount:      3200,
			TotalAmount: 3200,
			Address:     "221 Pine Rd, Seattle",
			Payment:     "card",
			Status:      order.StatusDelivered,
			CustomerID:  3,
		},
		{
			Description: "Laptop sleeve",
			OrderDate:   lastMonth.AddDate(0, 0, -3),
			Amount:      2400,
			TotalAmount: 2160,
			Discount:    240,
			Address:     "44 Elm Ave, Austin",
			Payment:     "card",
			Status:      order.StatusDelivered,
			CustomerID:  2,
			CouponCode:  "WELCOME10",
		},
	}

	for i := range demo {
		demo[i].TrackingID = uuid.New()
		if err := repo.Create(ctx, &demo[i]); err != nil {
			return errors.Wrapf(err, "create order %q", demo[i].Description)
		}
		slog.Info("created order",
			slog.Int64("id", demo[i].ID),
			slog.String("status", string(demo[i].Status)),
			slog.String("tracking_id", demo[i].TrackingID.String()),
		)
	}

	return nil
}
