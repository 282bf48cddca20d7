package stock

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"possync/internal/domain/entity"
)

// Kind names the origin of a stock movement.
type Kind string

const (
	KindSale       Kind = "sale"
	KindDelivery   Kind = "delivery"
	KindAdjustment Kind = "adjustment"
)

// Movement is one signed quantity delta for a product. Devices exchange
// movements, never absolute quantities: the current level is always
// recomputed by replaying the movement log.
type Movement struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Kind       Kind      `json:"kind"`
	Delta      int       `json:"delta"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`

	entity.SyncMeta
}

// NewMovement builds a movement recorded now on the given device.
func NewMovement(deviceID string, productID uuid.UUID, kind Kind, delta int, reason string) *Movement {
	mv := &Movement{
		ID:         uuid.New(),
		ProductID:  productID,
		Kind:       kind,
		Delta:      delta,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	mv.DeviceID = deviceID
	mv.Touch()
	return mv
}

// Level is a replayed quantity for one product.
type Level struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Replay folds a movement log into per-product quantities. Duplicate
// movement IDs are counted once, and the result does not depend on the
// input order.
func Replay(movements []Movement) map[uuid.UUID]int {
	sorted := make([]Movement, len(movements))
	copy(sorted, movements)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	seen := make(map[uuid.UUID]struct{}, len(sorted))
	levels := make(map[uuid.UUID]int)
	for _, mv := range sorted {
		if _, dup := seen[mv.ID]; dup {
			continue
		}
		seen[mv.ID] = struct{}{}
		levels[mv.ProductID] += mv.Delta
	}
	return levels
}
