package inventory

import (
	"context"

	"github.com/storefront/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the ledger repositories.
// All repository operations inside fn share one database transaction and are
// committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn in a transaction at the store's default isolation level.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error

	// ExecuteSerializable runs fn in a SERIALIZABLE transaction. A commit or
	// statement rejected for serialization reasons surfaces as
	// shared.ErrTransientConflict.
	ExecuteSerializable(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to the current transaction
type TransactionalRepositories interface {
	// SKURepo returns the stock ledger repository
	SKURepo() inventory.SKURepository
	// ReservationRepo returns the reservation log repository
	ReservationRepo() inventory.ReservationRepository
	// ProductRepo returns the product repository
	ProductRepo() inventory.ProductRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Used by unit tests with mocked repositories.
type NoOpTransactionScope struct {
	skuRepo         inventory.SKURepository
	reservationRepo inventory.ReservationRepository
	productRepo     inventory.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	skuRepo inventory.SKURepository,
	reservationRepo inventory.ReservationRepository,
	productRepo inventory.ProductRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		skuRepo:         skuRepo,
		reservationRepo: reservationRepo,
		productRepo:     productRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ExecuteSerializable runs the function without a real transaction.
func (s *NoOpTransactionScope) ExecuteSerializable(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SKURepo returns the SKU repository.
func (s *NoOpTransactionScope) SKURepo() inventory.SKURepository {
	return s.skuRepo
}

// ReservationRepo returns the reservation repository.
func (s *NoOpTransactionScope) ReservationRepo() inventory.ReservationRepository {
	return s.reservationRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() inventory.ProductRepository {
	return s.productRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
