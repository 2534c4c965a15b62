package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReservationService places, confirms and cancels stock holds
type ReservationService struct {
	txScope         TransactionScope
	reservationRepo inventory.ReservationRepository
	policy          RetryPolicy
	ttl             time.Duration
	logger          *zap.Logger

	eventPublisher shared.EventPublisher
	cache          AvailabilityCache
	metrics        *telemetry.ReservationMetrics
	now            func() time.Time
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	txScope TransactionScope,
	reservationRepo inventory.ReservationRepository,
	policy RetryPolicy,
	ttl time.Duration,
	logger *zap.Logger,
) *ReservationService {
	if ttl <= 0 {
		ttl = inventory.DefaultReservationTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		txScope:         txScope,
		reservationRepo: reservationRepo,
		policy:          policy.normalized(),
		ttl:             ttl,
		logger:          logger,
		now:             time.Now,
	}
}

// SetEventPublisher sets the publisher used for lifecycle events after commit
func (s *ReservationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetAvailabilityCache sets the cache invalidated after ledger changes
func (s *ReservationService) SetAvailabilityCache(cache AvailabilityCache) {
	s.cache = cache
}

// SetMetrics sets the reservation metrics recorder
func (s *ReservationService) SetMetrics(metrics *telemetry.ReservationMetrics) {
	s.metrics = metrics
}

// SetClock overrides the time source
func (s *ReservationService) SetClock(now func() time.Time) {
	s.now = now
}

// ReserveInventory places an all-or-nothing hold for every item of the order.
//
// Business shortfalls are returned in the result with a nil error. Errors are
// INVALID_INPUT, a terminal TRANSIENT_CONFLICT once retries are spent, or a
// SYSTEM_ERROR.
func (s *ReservationService) ReserveInventory(ctx context.Context, req ReserveInventoryRequest) (*ReserveInventoryResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reservation", "reserve")
	defer span.End()
	started := time.Now()

	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order ID cannot be empty")
	}
	lines, err := inventory.MergeLines(req.lines())
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, "order_id", orderID, "lines", len(lines))

	var result *ReserveInventoryResult
	attempts, err := s.policy.Run(ctx, func(ctx context.Context) error {
		result = nil
		return s.txScope.ExecuteSerializable(ctx, func(repos TransactionalRepositories) error {
			r, err := s.reserveInTx(ctx, repos, orderID, lines)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
	}, s.onRetry("reserve", orderID))
	s.metrics.RecordReserveDuration(ctx, time.Since(started), attempts)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Reservation failed",
			zap.String("order_id", orderID),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return nil, err
	}

	if !result.Success {
		s.metrics.RecordShortfall(ctx, len(result.InsufficientStock))
		s.logger.Info("Reservation rejected for insufficient stock",
			zap.String("order_id", orderID),
			zap.Int("short_skus", len(result.InsufficientStock)),
		)
		return result, nil
	}

	s.invalidate(ctx, inventory.SKUIDs(lines))
	s.metrics.RecordReserved(ctx, len(lines))
	telemetry.SetOK(span)
	s.logger.Info("Inventory reserved",
		zap.String("order_id", orderID),
		zap.Int("reservations", len(result.ReservationIDs)),
		zap.Int("attempts", attempts),
	)
	return result, nil
}

// reserveInTx checks every line and, only if all are covered, applies the holds.
func (s *ReservationService) reserveInTx(
	ctx context.Context,
	repos TransactionalRepositories,
	orderID string,
	lines []inventory.ReservationLine,
) (*ReserveInventoryResult, error) {
	skus, err := repos.SKURepo().FindByIDs(ctx, inventory.SKUIDs(lines))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*inventory.SKU, len(skus))
	for i := range skus {
		byID[skus[i].ID] = &skus[i]
	}

	shortfalls, err := inventory.CheckAvailability(lines, byID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureProductsActive(ctx, repos, byID); err != nil {
		return nil, err
	}
	if len(shortfalls) > 0 {
		return &ReserveInventoryResult{
			Success:           false,
			OrderID:           orderID,
			InsufficientStock: shortfalls,
		}, nil
	}

	now := s.now()
	reservations := make([]*inventory.Reservation, len(lines))
	for i, line := range lines {
		reservation, err := inventory.NewReservation(line.SKUID, orderID, line.Quantity, s.ttl, now)
		if err != nil {
			return nil, err
		}
		reservations[i] = reservation
	}

	// Counters are updated in SKU id order so concurrent carts lock rows consistently.
	ordered := slices.Clone(lines)
	slices.SortFunc(ordered, func(a, b inventory.ReservationLine) int {
		return strings.Compare(a.SKUID.String(), b.SKUID.String())
	})
	for _, line := range ordered {
		held, err := repos.SKURepo().IncrementReserved(ctx, line.SKUID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !held {
			return nil, shared.NewDomainError(shared.CodeTransientConflict,
				fmt.Sprintf("Stock of SKU %s changed during reservation", line.SKUID))
		}
	}

	if err := repos.ReservationRepo().CreateBatch(ctx, reservations); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(reservations))
	for i, r := range reservations {
		ids[i] = r.ID
	}
	expiresAt := now.Add(s.ttl)
	return &ReserveInventoryResult{
		Success:        true,
		OrderID:        orderID,
		ReservationIDs: ids,
		ExpiresAt:      &expiresAt,
	}, nil
}

func (s *ReservationService) ensureProductsActive(ctx context.Context, repos TransactionalRepositories, skus map[uuid.UUID]*inventory.SKU) error {
	productIDs := make([]uuid.UUID, 0, len(skus))
	for _, sku := range skus {
		if !slices.Contains(productIDs, sku.ProductID) {
			productIDs = append(productIDs, sku.ProductID)
		}
	}
	products, err := repos.ProductRepo().FindByIDs(ctx, productIDs)
	if err != nil {
		return err
	}
	active := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		active[p.ID] = p.IsActive
	}
	for _, sku := range skus {
		if !active[sku.ProductID] {
			return shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("SKU %s belongs to a product that is not on sale", sku.ID))
		}
	}
	return nil
}

// ConfirmReservation turns every ACTIVE hold of the order into a sale
func (s *ReservationService) ConfirmReservation(ctx context.Context, orderID string) (*TransitionResult, error) {
	return s.transition(ctx, orderID, inventory.ReservationStatusConfirmed)
}

// CancelReservation releases every ACTIVE hold of the order without selling
func (s *ReservationService) CancelReservation(ctx context.Context, orderID string) (*TransitionResult, error) {
	return s.transition(ctx, orderID, inventory.ReservationStatusCancelled)
}

// transition moves the order's ACTIVE reservations to a terminal status.
// Each row is claimed with a status CAS before its counters are touched, so a
// row already claimed by another confirm, cancel or sweep is skipped.
func (s *ReservationService) transition(ctx context.Context, orderID string, to inventory.ReservationStatus) (*TransitionResult, error) {
	operation := strings.ToLower(to.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "reservation", operation)
	defer span.End()

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order ID cannot be empty")
	}
	telemetry.SetAttribute(span, "order_id", orderID)

	var transitioned []*inventory.Reservation
	attempts, err := s.policy.Run(ctx, func(ctx context.Context) error {
		transitioned = nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			active, err := repos.ReservationRepo().FindActiveByOrder(ctx, orderID)
			if err != nil {
				return err
			}
			now := s.now()
			for i := range active {
				r := &active[i]
				claimed, err := repos.ReservationRepo().TransitionFromActive(ctx, r.ID, to, now)
				if err != nil {
					return err
				}
				if !claimed {
					continue
				}
				if err := applyLedger(ctx, repos.SKURepo(), r, to); err != nil {
					return err
				}
				applyStatus(r, to, now)
				transitioned = append(transitioned, r)
			}
			return nil
		})
	}, s.onRetry(operation, orderID))
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Reservation transition failed",
			zap.String("order_id", orderID),
			zap.String("target_status", to.String()),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return nil, err
	}

	if len(transitioned) == 0 {
		s.logger.Info("No active reservations for order",
			zap.String("order_id", orderID),
			zap.String("target_status", to.String()),
		)
		return &TransitionResult{
			Success: false,
			OrderID: orderID,
			Outcome: TransitionAlreadyProcessed,
		}, nil
	}

	ids := make([]uuid.UUID, len(transitioned))
	skuIDs := make([]uuid.UUID, len(transitioned))
	for i, r := range transitioned {
		ids[i] = r.ID
		skuIDs[i] = r.SKUID
	}
	s.invalidate(ctx, skuIDs)
	s.publish(ctx, transitioned)
	s.metrics.RecordTransition(ctx, to.String(), len(transitioned))
	telemetry.SetOK(span)
	s.logger.Info("Reservations transitioned",
		zap.String("order_id", orderID),
		zap.String("status", to.String()),
		zap.Int("count", len(transitioned)),
	)

	return &TransitionResult{
		Success:        true,
		OrderID:        orderID,
		Outcome:        TransitionApplied,
		ReservationIDs: ids,
	}, nil
}

// ListOrderReservations returns every reservation of the order, newest last
func (s *ReservationService) ListOrderReservations(ctx context.Context, orderID string) ([]ReservationResponse, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Order ID cannot be empty")
	}
	reservations, err := s.reservationRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]ReservationResponse, len(reservations))
	for i := range reservations {
		out[i] = ToReservationResponse(&reservations[i])
	}
	return out, nil
}

func (s *ReservationService) onRetry(operation, orderID string) RetryNotify {
	return func(attempt int, wait time.Duration, err error) {
		s.metrics.RecordRetry(context.Background(), operation)
		s.logger.Debug("Retrying reservation transaction",
			zap.String("operation", operation),
			zap.String("order_id", orderID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}
}

func (s *ReservationService) invalidate(ctx context.Context, skuIDs []uuid.UUID) {
	invalidateAvailability(ctx, s.cache, s.logger, skuIDs)
}

func (s *ReservationService) publish(ctx context.Context, reservations []*inventory.Reservation) {
	publishReservationEvents(ctx, s.eventPublisher, s.logger, reservations)
}

// applyLedger moves the SKU counters for a claimed reservation
func applyLedger(ctx context.Context, skuRepo inventory.SKURepository, r *inventory.Reservation, to inventory.ReservationStatus) error {
	switch to {
	case inventory.ReservationStatusConfirmed:
		return skuRepo.CommitReserved(ctx, r.SKUID, r.Quantity)
	case inventory.ReservationStatusCancelled, inventory.ReservationStatusExpired:
		return skuRepo.ReleaseReserved(ctx, r.SKUID, r.Quantity)
	}
	return shared.NewDomainError(shared.CodeInvalidState, "Unsupported reservation status "+to.String())
}

// applyStatus mirrors a persisted transition on the loaded entity, recording its event
func applyStatus(r *inventory.Reservation, to inventory.ReservationStatus, now time.Time) {
	switch to {
	case inventory.ReservationStatusConfirmed:
		r.Confirm(now)
	case inventory.ReservationStatusCancelled:
		r.Cancel(now)
	case inventory.ReservationStatusExpired:
		r.Expire(now)
	}
}

func invalidateAvailability(ctx context.Context, cache AvailabilityCache, logger *zap.Logger, skuIDs []uuid.UUID) {
	if cache == nil || len(skuIDs) == 0 {
		return
	}
	if err := cache.Invalidate(ctx, skuIDs...); err != nil {
		logger.Warn("Failed to invalidate availability cache", zap.Int("skus", len(skuIDs)), zap.Error(err))
	}
}

func publishReservationEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, reservations []*inventory.Reservation) {
	if publisher == nil {
		return
	}
	var events []shared.DomainEvent
	for _, r := range reservations {
		events = append(events, r.GetDomainEvents()...)
		r.ClearDomainEvents()
	}
	if len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish reservation events", zap.Int("events", len(events)), zap.Error(err))
	}
}
