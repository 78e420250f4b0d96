// Package postgres provides PostgreSQL implementation of the inventory repository.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/inventory"
	"github.com/bissquit/sports-inventory/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
)

// Repository implements the inventory.Repository interface using PostgreSQL.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ListItems returns every inventory item ordered by code.
func (r *Repository) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	query := `
		SELECT item_code, item_description, item_type_name, quantity_in_stock, reorder_level
		FROM inventory
		ORDER BY item_code
	`
	var items []domain.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	return items, nil
}

// CreateItem inserts a new inventory item.
func (r *Repository) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		INSERT INTO inventory (item_code, item_description, item_type_name, quantity_in_stock, reorder_level)
		VALUES (:item_code, :item_description, :item_type_name, :quantity_in_stock, :reorder_level)
	`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return writeError("insert inventory", err, inventory.ErrItemExists)
	}
	return nil
}

// UpdateItem updates the non-nil fields of update.
func (r *Repository) UpdateItem(ctx context.Context, code int, update domain.InventoryItemUpdate) error {
	var set setList
	set.add("item_description", update.ItemDescription)
	set.add("item_type_name", update.ItemTypeName)
	set.add("quantity_in_stock", update.QuantityInStock)
	set.add("reorder_level", update.ReorderLevel)

	return r.update(ctx, "inventory", set, inventory.ErrItemExists, keyColumn{"item_code", code})
}

// DeleteItem deletes the item with code. Activities and supplier links
// referencing it are removed by the ON DELETE CASCADE constraints.
func (r *Repository) DeleteItem(ctx context.Context, code int) error {
	return r.delete(ctx, "inventory", keyColumn{"item_code", code})
}

// ListSuppliers returns every supplier ordered by code.
func (r *Repository) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	query := `
		SELECT supplier_code, supplier_name, supplier_phone
		FROM suppliers
		ORDER BY supplier_code
	`
	var suppliers []domain.Supplier
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, fmt.Errorf("select suppliers: %w", err)
	}
	return suppliers, nil
}

// CreateSupplier inserts a new supplier.
func (r *Repository) CreateSupplier(ctx context.Context, supplier *domain.Supplier) error {
	query := `
		INSERT INTO suppliers (supplier_code, supplier_name, supplier_phone)
		VALUES (:supplier_code, :supplier_name, :supplier_phone)
	`
	if _, err := r.db.NamedExecContext(ctx, query, supplier); err != nil {
		return writeError("insert supplier", err, inventory.ErrSupplierExists)
	}
	return nil
}

// UpdateSupplier updates the non-nil fields of update.
func (r *Repository) UpdateSupplier(ctx context.Context, code int, update domain.SupplierUpdate) error {
	var set setList
	set.add("supplier_name", update.SupplierName)
	set.add("supplier_phone", update.SupplierPhone)

	return r.update(ctx, "suppliers", set, inventory.ErrSupplierExists, keyColumn{"supplier_code", code})
}

// DeleteSupplier deletes the supplier with code.
func (r *Repository) DeleteSupplier(ctx context.Context, code int) error {
	return r.delete(ctx, "suppliers", keyColumn{"supplier_code", code})
}

// ListActivities returns every activity ordered by code.
func (r *Repository) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	query := `
		SELECT activity_code, activity_description, item_code, average_monthly_usage
		FROM activities
		ORDER BY activity_code
	`
	var activities []domain.Activity
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("select activities: %w", err)
	}
	return activities, nil
}

// CreateActivity inserts a new activity.
func (r *Repository) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	query := `
		INSERT INTO activities (activity_code, activity_description, item_code, average_monthly_usage)
		VALUES (:activity_code, :activity_description, :item_code, :average_monthly_usage)
	`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return writeError("insert activity", err, inventory.ErrActivityExists)
	}
	return nil
}

// UpdateActivity updates the non-nil fields of update.
func (r *Repository) UpdateActivity(ctx context.Context, code int, update domain.ActivityUpdate) error {
	var set setList
	set.add("activity_description", update.ActivityDescription)
	set.add("item_code", update.ItemCode)
	set.add("average_monthly_usage", update.AverageMonthlyUsage)

	return r.update(ctx, "activities", set, inventory.ErrActivityExists, keyColumn{"activity_code", code})
}

// DeleteActivity deletes the activity with code.
func (r *Repository) DeleteActivity(ctx context.Context, code int) error {
	return r.delete(ctx, "activities", keyColumn{"activity_code", code})
}

// ListInventorySuppliers returns every item-supplier link.
func (r *Repository) ListInventorySuppliers(ctx context.Context) ([]domain.InventorySupplier, error) {
	query := `
		SELECT item_code, supplier_code
		FROM inventory_suppliers
		ORDER BY item_code, supplier_code
	`
	var links []domain.InventorySupplier
	if err := r.db.SelectContext(ctx, &links, query); err != nil {
		return nil, fmt.Errorf("select inventory suppliers: %w", err)
	}
	return links, nil
}

// CreateInventorySupplier inserts a new item-supplier link.
func (r *Repository) CreateInventorySupplier(ctx context.Context, link *domain.InventorySupplier) error {
	query := `
		INSERT INTO inventory_suppliers (item_code, supplier_code)
		VALUES (:item_code, :supplier_code)
	`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return writeError("insert inventory supplier", err, inventory.ErrLinkExists)
	}
	return nil
}

// UpdateInventorySupplier rewrites the key columns of an existing link.
func (r *Repository) UpdateInventorySupplier(ctx context.Context, itemCode, supplierCode int, update domain.InventorySupplierUpdate) error {
	var set setList
	set.add("item_code", update.ItemCode)
	set.add("supplier_code", update.SupplierCode)

	return r.update(ctx, "inventory_suppliers", set, inventory.ErrLinkExists,
		keyColumn{"item_code", itemCode}, keyColumn{"supplier_code", supplierCode})
}

// DeleteInventorySupplier deletes one item-supplier link.
func (r *Repository) DeleteInventorySupplier(ctx context.Context, itemCode, supplierCode int) error {
	return r.delete(ctx, "inventory_suppliers",
		keyColumn{"item_code", itemCode}, keyColumn{"supplier_code", supplierCode})
}

type keyColumn struct {
	name  string
	value int
}

// setList collects the assignments of a partial UPDATE.
type setList struct {
	columns []string
	args    []interface{}
}

func (s *setList) add(column string, value interface{}) {
	switch v := value.(type) {
	case *string:
		if v == nil {
			return
		}
		s.args = append(s.args, *v)
	case *int:
		if v == nil {
			return
		}
		s.args = append(s.args, *v)
	default:
		s.args = append(s.args, v)
	}
	s.columns = append(s.columns, column)
}

func (r *Repository) update(ctx context.Context, table string, set setList, existsErr error, keys ...keyColumn) error {
	if len(set.columns) == 0 {
		return inventory.ErrNoUpdateData
	}

	assignments := make([]string, 0, len(set.columns))
	args := append([]interface{}{}, set.args...)
	for i, col := range set.columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, i+1))
	}

	where, args := whereClause(keys, args)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(assignments, ", "), where)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return writeError("update "+table, err, existsErr)
	}
	return expectAffected(res.RowsAffected())
}

func (r *Repository) delete(ctx context.Context, table string, keys ...keyColumn) error {
	where, args := whereClause(keys, nil)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return expectAffected(res.RowsAffected())
}

// whereClause ANDs keys together, numbering placeholders after the existing args.
func whereClause(keys []keyColumn, args []interface{}) (string, []interface{}) {
	conds := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, k.value)
		conds = append(conds, fmt.Sprintf("%s = $%d", k.name, len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func expectAffected(n int64, err error) error {
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

func writeError(op string, err error, existsErr error) error {
	switch {
	case postgres.IsUniqueViolation(err):
		return existsErr
	case postgres.IsForeignKeyViolation(err):
		return inventory.ErrReferenceNotFound
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
