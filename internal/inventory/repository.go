package inventory

import (
	"context"

	"github.com/bissquit/sports-inventory/internal/domain"
)

// Repository defines the data access interface for the inventory module.
// Update and Delete return ErrNotFound when no row matches the key.
type Repository interface {
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
	CreateItem(ctx context.Context, item *domain.InventoryItem) error
	UpdateItem(ctx context.Context, code int, update domain.InventoryItemUpdate) error
	DeleteItem(ctx context.Context, code int) error

	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *domain.Supplier) error
	UpdateSupplier(ctx context.Context, code int, update domain.SupplierUpdate) error
	DeleteSupplier(ctx context.Context, code int) error

	ListActivities(ctx context.Context) ([]domain.Activity, error)
	CreateActivity(ctx context.Context, activity *domain.Activity) error
	UpdateActivity(ctx context.Context, code int, update domain.ActivityUpdate) error
	DeleteActivity(ctx context.Context, code int) error

	ListInventorySuppliers(ctx context.Context) ([]domain.InventorySupplier, error)
	CreateInventorySupplier(ctx context.Context, link *domain.InventorySupplier) error
	UpdateInventorySupplier(ctx context.Context, itemCode, supplierCode int, update domain.InventorySupplierUpdate) error
	DeleteInventorySupplier(ctx context.Context, itemCode, supplierCode int) error
}
