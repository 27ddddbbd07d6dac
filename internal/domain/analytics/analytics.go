// Package analytics computes monthly order-volume and revenue aggregates
// over the order store. Snapshots are computed on demand and never cached:
// an incomplete financial report is worse than no report, so any sub-query
// failure fails the whole snapshot.
package analytics

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/merchkit/order-service/internal/domain/order"
)

// OrderSource is the slice of the order store the aggregator consumes.
type OrderSource interface {
	ListByDateRangeAndStatus(ctx context.Context, start, end time.Time, status order.Status) ([]order.Order, error)
	CountByStatus(ctx context.Context, status order.Status) (int64, error)
}

// Snapshot is a point-in-time business report. Status counts cover all
// history; the monthly figures cover only delivered orders, because they are
// realized revenue rather than bookings.
type Snapshot struct {
	Placed    int64 `json:"placed"`
	Shipped   int64 `json:"shipped"`
	Delivered int64 `json:"delivered"`

	CurrentMonthOrders    int64 `json:"currentMonthOrders"`
	PreviousMonthOrders   int64 `json:"previousMonthOrders"`
	CurrentMonthEarnings  int64 `json:"currentMonthEarnings"`
	PreviousMonthEarnings int64 `json:"previousMonthEarnings"`
}

// Service derives analytics snapshots. The calendar location is explicit so
// month boundaries are reproducible across environments instead of depending
// on the process timezone.
type Service struct {
	orders OrderSource
	loc    *time.Location
}

// NewService constructs the aggregator. A nil location means UTC.
func NewService(orders OrderSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{orders: orders, loc: loc}
}

// ComputeSnapshot builds the snapshot for the calendar month containing ref
// and the immediately preceding month. January's preceding month is December
// of the prior year.
func (s *Service) ComputeSnapshot(ctx context.Context, ref time.Time) (*Snapshot, error) {
	currentStart := monthStart(ref, s.loc)
	previousStart := currentStart.AddDate(0, -1, 0)

	snap := &Snapshot{}

	var err error
	snap.CurrentMonthOrders, snap.CurrentMonthEarnings, err = s.monthTotals(ctx, currentStart)
	if err != nil {
		return nil, errors.Wrap(err, "current month totals")
	}
	snap.PreviousMonthOrders, snap.PreviousMonthEarnings, err = s.monthTotals(ctx, previousStart)
	if err != nil {
		return nil, errors.Wrap(err, "previous month totals")
	}

	counts := []struct {
		status order.Status
		dst    *int64
	}{
		{order.StatusPlaced, &snap.Placed},
		{order.StatusShipped, &snap.Shipped},
		{order.StatusDelivered, &snap.Delivered},
	}
	for _, c := range counts {
		n, err := s.orders.CountByStatus(ctx, c.status)
		if err != nil {
			return nil, errors.Wrapf(err, "count %s orders", c.status)
		}
		*c.dst = n
	}

	return snap, nil
}

// monthTotals returns the delivered-order count and earnings (sum of the
// pre-discount amount field) for the month starting at start.
func (s *Service) monthTotals(ctx context.Context, start time.Time) (int64, int64, error) {
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	orders, err := s.orders.ListByDateRangeAndStatus(ctx, start, end, order.StatusDelivered)
	if err != nil {
		return 0, 0, err
	}

	var earnings int64
	for _, o := range orders {
		earnings += o.Amount
	}
	return int64(len(orders)), earnings, nil
}

// monthStart returns the first instant of ref's calendar month in loc.
func monthStart(ref time.Time, loc *time.Location) time.Time {
	local := ref.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}
