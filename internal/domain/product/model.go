package product

import (
	"time"

	"github.com/google/uuid"

	"possync/internal/domain/entity"
)

// Product is a catalog entry. The server owns the catalog; devices hold a
// read copy and the server value always wins on conflict.
type Product struct {
	ID        uuid.UUID `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode,omitempty"`
	Price     int64     `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`

	entity.SyncMeta
}

// Differs reports whether the remote copy carries different catalog data.
// Sync bookkeeping fields are ignored.
func (p *Product) Differs(remote *Product) bool {
	return p.SKU != remote.SKU ||
		p.Name != remote.Name ||
		p.Barcode != remote.Barcode ||
		p.Price != remote.Price ||
		p.Active != remote.Active
}
