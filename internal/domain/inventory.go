package domain

// InventoryItem is a stocked piece of equipment.
type InventoryItem struct {
	ItemCode        int    `json:"item_code" db:"item_code"`
	ItemDescription string `json:"item_description" db:"item_description"`
	ItemTypeName    string `json:"item_type_name" db:"item_type_name"`
	QuantityInStock int    `json:"quantity_in_stock" db:"quantity_in_stock"`
	ReorderLevel    int    `json:"reorder_level" db:"reorder_level"`
}

type Supplier struct {
	SupplierCode  int    `json:"supplier_code" db:"supplier_code"`
	SupplierName  string `json:"supplier_name" db:"supplier_name"`
	SupplierPhone string `json:"supplier_phone" db:"supplier_phone"`
}

// Activity records how an inventory item is consumed by a sports activity.
type Activity struct {
	ActivityCode        int    `json:"activity_code" db:"activity_code"`
	ActivityDescription string `json:"activity_description" db:"activity_description"`
	ItemCode            int    `json:"item_code" db:"item_code"`
	AverageMonthlyUsage int    `json:"average_monthly_usage" db:"average_monthly_usage"`
}

// InventorySupplier links an inventory item to one of its suppliers.
type InventorySupplier struct {
	ItemCode     int `json:"item_code" db:"item_code"`
	SupplierCode int `json:"supplier_code" db:"supplier_code"`
}

// InventoryItemUpdate holds the fields of a partial inventory update.
// Nil fields are left unchanged.
type InventoryItemUpdate struct {
	ItemDescription *string
	ItemTypeName    *string
	QuantityInStock *int
	ReorderLevel    *int
}

type SupplierUpdate struct {
	SupplierName  *string
	SupplierPhone *string
}

type ActivityUpdate struct {
	ActivityDescription *string
	ItemCode            *int
	AverageMonthlyUsage *int
}

type InventorySupplierUpdate struct {
	ItemCode     *int
	SupplierCode *int
}
