package sale

import (
	"time"

	"github.com/google/uuid"

	"possync/internal/domain/entity"
)

// Sale is one completed checkout. Sales are append-only: once recorded they
// are never updated or deleted, locally or on the server.
type Sale struct {
	ID        uuid.UUID `json:"id"`
	InvoiceNo string    `json:"invoice_no"`
	Items     []Item    `json:"items,omitempty"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`

	entity.SyncMeta
}

// Item is one line of a sale. Prices are minor currency units.
type Item struct {
	ID        uuid.UUID `json:"id"`
	SaleID    uuid.UUID `json:"sale_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
}

// New builds a sale for the given device, assigning IDs and computing the
// total from the items.
func New(deviceID, invoiceNo string, items []Item) *Sale {
	s := &Sale{
		ID:        uuid.New(),
		InvoiceNo: invoiceNo,
		CreatedAt: time.Now().UTC(),
	}
	s.DeviceID = deviceID
	s.Touch()

	for _, item := range items {
		item.ID = uuid.New()
		item.SaleID = s.ID
		s.Items = append(s.Items, item)
		s.Total += int64(item.Quantity) * item.UnitPrice
	}

	return s
}
