package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/inventory"
	pgpkg "github.com/bissquit/sports-inventory/internal/pkg/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, pgpkg.DriverName)), mock
}

func ptr[T any](v T) *T { return &v }

func TestRepository_ListItems(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT item_code, item_description, item_type_name, quantity_in_stock, reorder_level\s+FROM inventory\s+ORDER BY item_code`).
		WillReturnRows(sqlmock.NewRows([]string{"item_code", "item_description", "item_type_name", "quantity_in_stock", "reorder_level"}).
			AddRow(1, "Football", "Ball", 20, 5).
			AddRow(2, "Racket", "Tennis", 8, 2))

	items, err := repo.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.InventoryItem{ItemCode: 1, ItemDescription: "Football", ItemTypeName: "Ball", QuantityInStock: 20, ReorderLevel: 5}, items[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListItemsEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM inventory`).
		WillReturnRows(sqlmock.NewRows([]string{"item_code", "item_description", "item_type_name", "quantity_in_stock", "reorder_level"}))

	items, err := repo.ListItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRepository_CreateItem(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs(1, "Football", "Ball", 20, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateItem(context.Background(), &domain.InventoryItem{
		ItemCode: 1, ItemDescription: "Football", ItemTypeName: "Ball", QuantityInStock: 20, ReorderLevel: 5,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, inventory.ErrSupplierExists},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, inventory.ErrReferenceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectExec(`INSERT INTO suppliers`).WillReturnError(tt.dbErr)

			err := repo.CreateSupplier(context.Background(), &domain.Supplier{SupplierCode: 1, SupplierName: "Acme", SupplierPhone: "555"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRepository_CreateUnexpectedError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO activities`).WillReturnError(errors.New("connection reset"))

	err := repo.CreateActivity(context.Background(), &domain.Activity{ActivityCode: 1, ActivityDescription: "Yoga", ItemCode: 1, AverageMonthlyUsage: 3})
	require.Error(t, err)
	assert.NotErrorIs(t, err, inventory.ErrActivityExists)
	assert.Contains(t, err.Error(), "insert activity")
}

func TestRepository_UpdateItemPartial(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE inventory SET item_description = $1, reorder_level = $2 WHERE item_code = $3`)).
		WithArgs("Size 5 football", 7, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateItem(context.Background(), 1, domain.InventoryItemUpdate{
		ItemDescription: ptr("Size 5 football"),
		ReorderLevel:    ptr(7),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE suppliers SET supplier_phone = \$1 WHERE supplier_code = \$2`).
		WithArgs("555-0100", 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSupplier(context.Background(), 99, domain.SupplierUpdate{SupplierPhone: ptr("555-0100")})
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestRepository_UpdateNoFields(t *testing.T) {
	repo, mock := newMockRepo(t)

	err := repo.UpdateActivity(context.Background(), 1, domain.ActivityUpdate{})
	assert.ErrorIs(t, err, inventory.ErrNoUpdateData)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateActivityBadReference(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE activities SET item_code = \$1 WHERE activity_code = \$2`).
		WithArgs(42, 1).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.UpdateActivity(context.Background(), 1, domain.ActivityUpdate{ItemCode: ptr(42)})
	assert.ErrorIs(t, err, inventory.ErrReferenceNotFound)
}

func TestRepository_UpdateInventorySupplier(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE inventory_suppliers SET supplier_code = $1 WHERE item_code = $2 AND supplier_code = $3`)).
		WithArgs(3, 1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateInventorySupplier(context.Background(), 1, 2, domain.InventorySupplierUpdate{SupplierCode: ptr(3)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM inventory WHERE item_code = $1`)).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM inventory_suppliers WHERE item_code = $1 AND supplier_code = $2`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteItem(context.Background(), 1))
	err := repo.DeleteInventorySupplier(context.Background(), 1, 2)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListInventorySuppliers(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT item_code, supplier_code\s+FROM inventory_suppliers`).
		WillReturnRows(sqlmock.NewRows([]string{"item_code", "supplier_code"}).AddRow(1, 2))

	links, err := repo.ListInventorySuppliers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.InventorySupplier{{ItemCode: 1, SupplierCode: 2}}, links)
}
