package inventory

import "errors"

// Domain errors for the inventory module. The messages are returned to clients verbatim.
var (
	ErrNotFound          = errors.New("Item not found")
	ErrNoUpdateData      = errors.New("No data provided for update")
	ErrReferenceNotFound = errors.New("Referenced record does not exist")

	ErrItemExists     = errors.New("Inventory item already exists")
	ErrSupplierExists = errors.New("Supplier already exists")
	ErrActivityExists = errors.New("Activity already exists")
	ErrLinkExists     = errors.New("Inventory supplier link already exists")
)
