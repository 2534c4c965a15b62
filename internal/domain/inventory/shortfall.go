package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ReservationLine is one requested (SKU, quantity) pair of a reserve call
type ReservationLine struct {
	SKUID    uuid.UUID
	Quantity int
}

// Shortfall describes a SKU that could not cover the requested quantity
type Shortfall struct {
	SKUID     uuid.UUID `json:"sku_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// MergeLines validates the lines of a reserve call and folds repeated SKUs
// into a single line. The result keeps first-seen order.
func MergeLines(lines []ReservationLine) ([]ReservationLine, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one item is required")
	}
	merged := make([]ReservationLine, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.SKUID == uuid.Nil {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "SKU ID cannot be empty")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Quantity for SKU %s must be positive, got %d", line.SKUID, line.Quantity))
		}
		if i, ok := index[line.SKUID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.SKUID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// SKUIDs returns the SKU ids of the lines
func SKUIDs(lines []ReservationLine) []uuid.UUID {
	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.SKUID
	}
	return ids
}

// CheckAvailability compares every line against the loaded SKUs and returns
// the shortfalls. Lines whose SKU is missing from skus are reported as an
// INVALID_INPUT error, as are inactive SKUs.
func CheckAvailability(lines []ReservationLine, skus map[uuid.UUID]*SKU) ([]Shortfall, error) {
	var missing []string
	var shortfalls []Shortfall
	for _, line := range lines {
		sku, ok := skus[line.SKUID]
		if !ok {
			missing = append(missing, line.SKUID.String())
			continue
		}
		if !sku.IsActive {
			return nil, shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("SKU %s is not available for sale", sku.ID))
		}
		if !sku.CanReserve(line.Quantity) {
			shortfalls = append(shortfalls, Shortfall{
				SKUID:     line.SKUID,
				Requested: line.Quantity,
				Available: max(sku.AvailableStock(), 0),
			})
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			"Unknown SKU: "+strings.Join(missing, ", "))
	}
	return shortfalls, nil
}
