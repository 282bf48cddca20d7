package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReplay_SumsDeltasPerProduct(t *testing.T) {
	cola := uuid.New()
	chips := uuid.New()
	base := time.Now().UTC()

	movements := []Movement{
		{ID: uuid.New(), ProductID: cola, Kind: KindDelivery, Delta: 24, OccurredAt: base},
		{ID: uuid.New(), ProductID: cola, Kind: KindSale, Delta: -3, OccurredAt: base.Add(time.Minute)},
		{ID: uuid.New(), ProductID: chips, Kind: KindDelivery, Delta: 10, OccurredAt: base},
		{ID: uuid.New(), ProductID: cola, Kind: KindAdjustment, Delta: -1, OccurredAt: base.Add(2 * time.Minute)},
	}

	levels := Replay(movements)

	assert.Equal(t, 20, levels[cola])
	assert.Equal(t, 10, levels[chips])
}

func TestReplay_DuplicateIDsCountOnce(t *testing.T) {
	productID := uuid.New()
	mv := Movement{ID: uuid.New(), ProductID: productID, Kind: KindSale, Delta: -5, OccurredAt: time.Now().UTC()}

	levels := Replay([]Movement{mv, mv, mv})

	assert.Equal(t, -5, levels[productID])
}

func TestReplay_OrderIndependent(t *testing.T) {
	productID := uuid.New()
	base := time.Now().UTC()
	a := Movement{ID: uuid.New(), ProductID: productID, Delta: 7, OccurredAt: base}
	b := Movement{ID: uuid.New(), ProductID: productID, Delta: -2, OccurredAt: base.Add(time.Hour)}
	c := Movement{ID: uuid.New(), ProductID: productID, Delta: -1, OccurredAt: base.Add(2 * time.Hour)}

	forward := Replay([]Movement{a, b, c})
	shuffled := Replay([]Movement{c, a, b})

	assert.Equal(t, forward, shuffled)
	assert.Equal(t, 4, forward[productID])
}

func TestReplay_Empty(t *testing.T) {
	assert.Empty(t, Replay(nil))
}
