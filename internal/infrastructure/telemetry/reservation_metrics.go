package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics recorder is built without a meter
var ErrMeterNil = errors.New("meter cannot be nil")

// ReserveDurationBuckets cover a reserve call including retries (seconds)
var ReserveDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// ReservationMetrics records reservation engine activity.
// All methods are safe on a nil receiver so callers can leave metrics unset.
type ReservationMetrics struct {
	reserveDuration *Histogram
	reserveAttempts *Histogram
	reservedLines   *Counter
	shortfalls      *Counter
	transitions     *Counter
	retries         *Counter
	archived        *Counter
	pendingExpired  *Gauge
}

// NewReservationMetrics creates the reservation instruments on meter
func NewReservationMetrics(meter metric.Meter) (*ReservationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var err error
	m := &ReservationMetrics{}

	if m.reserveDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "reservation_reserve_duration_seconds",
		Description: "Duration of reserve calls including retries",
		Unit:        "s",
		Boundaries:  ReserveDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.reserveAttempts, err = NewHistogram(meter, HistogramOpts{
		Name:        "reservation_reserve_attempts",
		Description: "Transaction attempts used per reserve call",
		Unit:        "{attempt}",
		Boundaries:  []float64{1, 2, 3, 5},
	}); err != nil {
		return nil, err
	}
	if m.reservedLines, err = NewCounter(meter, "reservation_lines_reserved_total", "Reservation rows created", "{reservation}"); err != nil {
		return nil, err
	}
	if m.shortfalls, err = NewCounter(meter, "reservation_shortfalls_total", "SKU lines rejected for insufficient stock", "{line}"); err != nil {
		return nil, err
	}
	if m.transitions, err = NewCounter(meter, "reservation_transitions_total", "Reservations moved out of ACTIVE", "{reservation}"); err != nil {
		return nil, err
	}
	if m.retries, err = NewCounter(meter, "reservation_retries_total", "Transaction attempts retried after a conflict", "{retry}"); err != nil {
		return nil, err
	}
	if m.archived, err = NewCounter(meter, "product_archived_total", "Products archived for zero stock", "{product}"); err != nil {
		return nil, err
	}
	if m.pendingExpired, err = NewGauge(meter, "reservation_pending_expired", "ACTIVE reservations past their deadline", "{reservation}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordReserveDuration records one reserve call and how many attempts it took
func (m *ReservationMetrics) RecordReserveDuration(ctx context.Context, d time.Duration, attempts int) {
	if m == nil {
		return
	}
	m.reserveDuration.RecordDuration(ctx, d)
	m.reserveAttempts.Record(ctx, float64(attempts))
}

// RecordReserved counts reservation rows created
func (m *ReservationMetrics) RecordReserved(ctx context.Context, lines int) {
	if m == nil || lines <= 0 {
		return
	}
	m.reservedLines.Add(ctx, int64(lines))
}

// RecordShortfall counts lines rejected for insufficient stock
func (m *ReservationMetrics) RecordShortfall(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.shortfalls.Add(ctx, int64(n))
}

// RecordTransition counts reservations moved to status
func (m *ReservationMetrics) RecordTransition(ctx context.Context, status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.transitions.Add(ctx, int64(n), AttrStatus.String(status))
}

// RecordRetry counts one retried attempt of operation
func (m *ReservationMetrics) RecordRetry(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.retries.Inc(ctx, AttrOperation.String(operation))
}

// RecordArchived counts archived products
func (m *ReservationMetrics) RecordArchived(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.archived.Add(ctx, int64(n))
}

// RecordPendingExpired reports the current expired backlog
func (m *ReservationMetrics) RecordPendingExpired(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.pendingExpired.Record(ctx, n, attribute.String("source", "sweeper"))
}
