// Package inventory provides HTTP handlers and business logic for inventory
// items, suppliers, activities and the links between items and suppliers.
package inventory

import (
	"context"
	"fmt"

	"github.com/bissquit/sports-inventory/internal/domain"
)

// Service implements inventory business logic.
type Service struct {
	repo Repository
}

// NewService creates a new inventory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListItems returns every inventory item ordered by code.
func (s *Service) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	return items, nil
}

// CreateItem stores a new inventory item.
func (s *Service) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return fmt.Errorf("create inventory item: %w", err)
	}
	return nil
}

// UpdateItem applies the non-nil fields of update to the item with code.
func (s *Service) UpdateItem(ctx context.Context, code int, update domain.InventoryItemUpdate) error {
	if update == (domain.InventoryItemUpdate{}) {
		return ErrNoUpdateData
	}
	if err := s.repo.UpdateItem(ctx, code, update); err != nil {
		return fmt.Errorf("update inventory item %d: %w", code, err)
	}
	return nil
}

// DeleteItem removes the item with code.
func (s *Service) DeleteItem(ctx context.Context, code int) error {
	if err := s.repo.DeleteItem(ctx, code); err != nil {
		return fmt.Errorf("delete inventory item %d: %w", code, err)
	}
	return nil
}

// ListSuppliers returns every supplier ordered by code.
func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *Service) CreateSupplier(ctx context.Context, supplier *domain.Supplier) error {
	if err := s.repo.CreateSupplier(ctx, supplier); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

func (s *Service) UpdateSupplier(ctx context.Context, code int, update domain.SupplierUpdate) error {
	if update == (domain.SupplierUpdate{}) {
		return ErrNoUpdateData
	}
	if err := s.repo.UpdateSupplier(ctx, code, update); err != nil {
		return fmt.Errorf("update supplier %d: %w", code, err)
	}
	return nil
}

func (s *Service) DeleteSupplier(ctx context.Context, code int) error {
	if err := s.repo.DeleteSupplier(ctx, code); err != nil {
		return fmt.Errorf("delete supplier %d: %w", code, err)
	}
	return nil
}

// ListActivities returns every activity ordered by code.
func (s *Service) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	activities, err := s.repo.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

func (s *Service) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

func (s *Service) UpdateActivity(ctx context.Context, code int, update domain.ActivityUpdate) error {
	if update == (domain.ActivityUpdate{}) {
		return ErrNoUpdateData
	}
	if err := s.repo.UpdateActivity(ctx, code, update); err != nil {
		return fmt.Errorf("update activity %d: %w", code, err)
	}
	return nil
}

func (s *Service) DeleteActivity(ctx context.Context, code int) error {
	if err := s.repo.DeleteActivity(ctx, code); err != nil {
		return fmt.Errorf("delete activity %d: %w", code, err)
	}
	return nil
}

// ListInventorySuppliers returns every item-supplier link.
func (s *Service) ListInventorySuppliers(ctx context.Context) ([]domain.InventorySupplier, error) {
	links, err := s.repo.ListInventorySuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list inventory suppliers: %w", err)
	}
	return links, nil
}

func (s *Service) CreateInventorySupplier(ctx context.Context, link *domain.InventorySupplier) error {
	if err := s.repo.CreateInventorySupplier(ctx, link); err != nil {
		return fmt.Errorf("create inventory supplier: %w", err)
	}
	return nil
}

// UpdateInventorySupplier re-points the link identified by itemCode and supplierCode.
func (s *Service) UpdateInventorySupplier(ctx context.Context, itemCode, supplierCode int, update domain.InventorySupplierUpdate) error {
	if update == (domain.InventorySupplierUpdate{}) {
		return ErrNoUpdateData
	}
	if err := s.repo.UpdateInventorySupplier(ctx, itemCode, supplierCode, update); err != nil {
		return fmt.Errorf("update inventory supplier %d/%d: %w", itemCode, supplierCode, err)
	}
	return nil
}

func (s *Service) DeleteInventorySupplier(ctx context.Context, itemCode, supplierCode int) error {
	if err := s.repo.DeleteInventorySupplier(ctx, itemCode, supplierCode); err != nil {
		return fmt.Errorf("delete inventory supplier %d/%d: %w", itemCode, supplierCode, err)
	}
	return nil
}
