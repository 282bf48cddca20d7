package client

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"possync/internal/domain/product"
	"possync/internal/domain/sale"
	"possync/internal/domain/stock"
	syncdomain "possync/internal/domain/sync"
)

// localReader is the slice of the local store the resolver reads from.
type localReader interface {
	GetProduct(id uuid.UUID) (*product.Product, error)
	HasSale(id uuid.UUID) (bool, error)
	HasMovement(id uuid.UUID) (bool, error)
}

// Resolution is the merge plan produced by one resolve pass. The engine
// commits it atomically through the store; stock quantities are not part of
// the plan, they are replayed from the movement log wherever levels are read.
type Resolution struct {
	Products  []product.Product
	Sales     []sale.Sale
	Movements []stock.Movement

	// ConflictsResolved counts entities where local and remote actually
	// disagreed. Plain additions are not conflicts.
	ConflictsResolved int
}

// Resolver applies the deterministic per-entity-type rule table:
//
//	Product   server wins, unconditionally
//	Sale      append-only, existing local sales are never touched
//	Stock     quantities recomputed by replaying the merged movement log
//
// There is no manual intervention path; the only output a user sees is the
// resolved-conflict count.
type Resolver struct {
	store localReader
	log   *slog.Logger
}

func NewResolver(store localReader, log *slog.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   log,
	}
}

func (r *Resolver) Resolve(remote *syncdomain.DownloadResponse) (*Resolution, error) {
	res := &Resolution{}

	for _, remoteProduct := range remote.Products {
		local, err := r.store.GetProduct(remoteProduct.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", remoteProduct.ID, err)
		}

		if local != nil && local.Differs(&remoteProduct) {
			res.ConflictsResolved++
			r.log.Debug("product conflict, server wins",
				"product_id", remoteProduct.ID,
				"local_price", local.Price,
				"server_price", remoteProduct.Price,
			)
		}
		res.Products = append(res.Products, remoteProduct)
	}

	for _, remoteSale := range remote.Sales {
		exists, err := r.store.HasSale(remoteSale.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve sale %s: %w", remoteSale.ID, err)
		}
		if exists {
			// Append-only: the local copy stands, whatever the server sent.
			res.ConflictsResolved++
			continue
		}
		res.Sales = append(res.Sales, remoteSale)
	}

	for _, remoteMovement := range remote.Stock {
		exists, err := r.store.HasMovement(remoteMovement.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve movement %s: %w", remoteMovement.ID, err)
		}
		if exists {
			continue
		}
		res.Movements = append(res.Movements, remoteMovement)
	}

	r.log.Debug("resolution prepared",
		"products", len(res.Products),
		"sales_added", len(res.Sales),
		"movements_merged", len(res.Movements),
		"conflicts", res.ConflictsResolved,
	)

	return res, nil
}
