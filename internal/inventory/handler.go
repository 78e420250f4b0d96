package inventory

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/pkg/ctxlog"
	"github.com/bissquit/sports-inventory/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the inventory module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new inventory handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: httputil.NewValidator(),
	}
}

// RegisterReadRoutes registers the list routes.
func (h *Handler) RegisterReadRoutes(r chi.Router) {
	r.Get("/inventory", h.ListItems)
	r.Get("/suppliers", h.ListSuppliers)
	r.Get("/activities", h.ListActivities)
	r.Get("/inventory_suppliers", h.ListInventorySuppliers)
}

// RegisterWriteRoutes registers the create, update and delete routes.
func (h *Handler) RegisterWriteRoutes(r chi.Router) {
	r.Route("/add", func(r chi.Router) {
		r.Post("/inventory", h.CreateItem)
		r.Post("/suppliers", h.CreateSupplier)
		r.Post("/activities", h.CreateActivity)
		r.Post("/inventory_suppliers", h.CreateInventorySupplier)
	})

	r.Route("/update", func(r chi.Router) {
		r.Put("/inventory/{code}", h.UpdateItem)
		r.Put("/suppliers/{code}", h.UpdateSupplier)
		r.Put("/activities/{code}", h.UpdateActivity)
		r.Put("/inventory_suppliers/{item_code}/{supplier_code}", h.UpdateInventorySupplier)
	})

	r.Route("/delete", func(r chi.Router) {
		r.Delete("/inventory/{code}", h.DeleteItem)
		r.Delete("/suppliers/{code}", h.DeleteSupplier)
		r.Delete("/activities/{code}", h.DeleteActivity)
		r.Delete("/inventory_suppliers/{item_code}/{supplier_code}", h.DeleteInventorySupplier)
	})
}

// CreateItemRequest represents the body of POST /add/inventory.
// Pointer fields tell a missing value apart from zero.
type CreateItemRequest struct {
	ItemCode        *int    `json:"item_code" validate:"required,min=1,max=2147483647"`
	ItemDescription *string `json:"item_description" validate:"required,max=255"`
	ItemTypeName    *string `json:"item_type_name" validate:"required,max=100"`
	QuantityInStock *int    `json:"quantity_in_stock" validate:"required,min=0,max=2147483647"`
	ReorderLevel    *int    `json:"reorder_level" validate:"required,min=0,max=2147483647"`
}

// UpdateItemRequest represents the body of PUT /update/inventory/{code}.
type UpdateItemRequest struct {
	ItemDescription *string `json:"item_description" validate:"omitempty,max=255"`
	ItemTypeName    *string `json:"item_type_name" validate:"omitempty,max=100"`
	QuantityInStock *int    `json:"quantity_in_stock" validate:"omitempty,min=0,max=2147483647"`
	ReorderLevel    *int    `json:"reorder_level" validate:"omitempty,min=0,max=2147483647"`
}

type CreateSupplierRequest struct {
	SupplierCode  *int    `json:"supplier_code" validate:"required,min=1,max=2147483647"`
	SupplierName  *string `json:"supplier_name" validate:"required,max=255"`
	SupplierPhone *string `json:"supplier_phone" validate:"required,max=50"`
}

type UpdateSupplierRequest struct {
	SupplierName  *string `json:"supplier_name" validate:"omitempty,max=255"`
	SupplierPhone *string `json:"supplier_phone" validate:"omitempty,max=50"`
}

type CreateActivityRequest struct {
	ActivityCode        *int    `json:"activity_code" validate:"required,min=1,max=2147483647"`
	ActivityDescription *string `json:"activity_description" validate:"required,max=255"`
	ItemCode            *int    `json:"item_code" validate:"required,min=1,max=2147483647"`
	AverageMonthlyUsage *int    `json:"average_monthly_usage" validate:"required,min=0,max=2147483647"`
}

type UpdateActivityRequest struct {
	ActivityDescription *string `json:"activity_description" validate:"omitempty,max=255"`
	ItemCode            *int    `json:"item_code" validate:"omitempty,min=1,max=2147483647"`
	AverageMonthlyUsage *int    `json:"average_monthly_usage" validate:"omitempty,min=0,max=2147483647"`
}

type CreateInventorySupplierRequest struct {
	ItemCode     *int `json:"item_code" validate:"required,min=1,max=2147483647"`
	SupplierCode *int `json:"supplier_code" validate:"required,min=1,max=2147483647"`
}

type UpdateInventorySupplierRequest struct {
	ItemCode     *int `json:"item_code" validate:"omitempty,min=1,max=2147483647"`
	SupplierCode *int `json:"supplier_code" validate:"omitempty,min=1,max=2147483647"`
}

// ListItems handles GET /inventory.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if len(items) == 0 {
		httputil.Error(w, http.StatusNotFound, "No inventory items found")
		return
	}
	httputil.List(w, items, len(items))
}

// CreateItem handles POST /add/inventory.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	item := &domain.InventoryItem{
		ItemCode:        *req.ItemCode,
		ItemDescription: *req.ItemDescription,
		ItemTypeName:    *req.ItemTypeName,
		QuantityInStock: *req.QuantityInStock,
		ReorderLevel:    *req.ReorderLevel,
	}
	if err := h.service.CreateItem(r.Context(), item); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	ctxlog.FromContext(r.Context()).Info("inventory item created", "item_code", item.ItemCode)
	httputil.Message(w, http.StatusCreated, "Inventory item created successfully")
}

// UpdateItem handles PUT /update/inventory/{code}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.UpdateItem(r.Context(), code, domain.InventoryItemUpdate{
		ItemDescription: req.ItemDescription,
		ItemTypeName:    req.ItemTypeName,
		QuantityInStock: req.QuantityInStock,
		ReorderLevel:    req.ReorderLevel,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusOK, fmt.Sprintf("Item with code %d updated successfully", code))
}

// DeleteItem handles DELETE /delete/inventory/{code}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), code); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusOK, fmt.Sprintf("Item with code %d deleted successfully", code))
}

// ListSuppliers handles GET /suppliers.
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if len(suppliers) == 0 {
		httputil.Error(w, http.StatusNotFound, "No suppliers found")
		return
	}
	httputil.List(w, suppliers, len(suppliers))
}

// CreateSupplier handles POST /add/suppliers.
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req CreateSupplierRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	supplier := &domain.Supplier{
		SupplierCode:  *req.SupplierCode,
		SupplierName:  *req.SupplierName,
		SupplierPhone: *req.SupplierPhone,
	}
	if err := h.service.CreateSupplier(r.Context(), supplier); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	ctxlog.FromContext(r.Context()).Info("supplier created", "supplier_code", supplier.SupplierCode)
	httputil.Message(w, http.StatusCreated, "Supplier created successfully")
}

// UpdateSupplier handles PUT /update/suppliers/{code}.
func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}

	var req UpdateSupplierRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.UpdateSupplier(r.Context(), code, domain.SupplierUpdate{
		SupplierName:  req.SupplierName,
		SupplierPhone: req.SupplierPhone,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusOK, fmt.Sprintf("Supplier with code %d updated successfully", code))
}

// DeleteSupplier handles DELETE /delete/suppliers/{code}.
func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}

	if err := h.service.DeleteSupplier(r.Context(), code); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusOK, fmt.Sprintf("Supplier with code %d deleted successfully", code))
}

// ListActivities handles GET /activities.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if len(activities) == 0 {
		httputil.Error(w, http.StatusNotFound, "No activities found")
		return
	}
	httputil.List(w, activities, len(activities))
}

// CreateActivity handles POST /add/activities.
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	activity := &domain.Activity{
		ActivityCode:        *req.ActivityCode,
		ActivityDescription: *req.ActivityDescription,
		ItemCode:            *req.ItemCode,
		AverageMonthlyUsage: *req.AverageMonthlyUsage,
	}
	if err := h.service.CreateActivity(r.Context(), activity); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	ctxlog.FromContext(r.Context()).Info("activity created", "activity_code", activity.ActivityCode)
	httputil.Message(w, http.StatusCreated, "Activity created successfully")
}

// UpdateActivity handles PUT /update/activities/{code}.
func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}

	var req UpdateActivityRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.UpdateActivity(r.Context(), code, domain.ActivityUpdate{
		ActivityDescription: req.ActivityDescription,
		ItemCode:            req.ItemCode,
		AverageMonthlyUsage: req.AverageMonthlyUsage,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusOK, fmt.Sprintf("Activity with code %d updated successfully", code))
}

// DeleteActivity handles DELETE /delete/activities/{code}.
// The success message keeps the "Item" wording existing clients match on.
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	code, ok := pathCode(w, r, "code")
	if !ok {
		return
	}

	if err := h.service.DeleteActivity(r.Context(), code); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusOK, fmt.Sprintf("Item with code %d deleted successfully", code))
}

// ListInventorySuppliers handles GET /inventory_suppliers.
func (h *Handler) ListInventorySuppliers(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.ListInventorySuppliers(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if len(links) == 0 {
		httputil.Error(w, http.StatusNotFound, "No inventory-supplier relationships found")
		return
	}
	httputil.List(w, links, len(links))
}

// CreateInventorySupplier handles POST /add/inventory_suppliers.
func (h *Handler) CreateInventorySupplier(w http.ResponseWriter, r *http.Request) {
	var req CreateInventorySupplierRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	link := &domain.InventorySupplier{
		ItemCode:     *req.ItemCode,
		SupplierCode: *req.SupplierCode,
	}
	if err := h.service.CreateInventorySupplier(r.Context(), link); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusCreated, "Inventory supplier created successfully")
}

// UpdateInventorySupplier handles PUT /update/inventory_suppliers/{item_code}/{supplier_code}.
func (h *Handler) UpdateInventorySupplier(w http.ResponseWriter, r *http.Request) {
	itemCode, ok := pathCode(w, r, "item_code")
	if !ok {
		return
	}
	supplierCode, ok := pathCode(w, r, "supplier_code")
	if !ok {
		return
	}

	var req UpdateInventorySupplierRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.UpdateInventorySupplier(r.Context(), itemCode, supplierCode, domain.InventorySupplierUpdate{
		ItemCode:     req.ItemCode,
		SupplierCode: req.SupplierCode,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusOK, "Inventory supplier link updated successfully")
}

// DeleteInventorySupplier handles DELETE /delete/inventory_suppliers/{item_code}/{supplier_code}.
func (h *Handler) DeleteInventorySupplier(w http.ResponseWriter, r *http.Request) {
	itemCode, ok := pathCode(w, r, "item_code")
	if !ok {
		return
	}
	supplierCode, ok := pathCode(w, r, "supplier_code")
	if !ok {
		return
	}

	if err := h.service.DeleteInventorySupplier(r.Context(), itemCode, supplierCode); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusOK, "Inventory supplier link deleted successfully")
}

// decodeAndValidate reads the JSON body into req and validates it, writing a
// 400 response and returning false on failure. An empty body decodes to the
// zero request.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := httputil.DecodeJSON(r, req); err != nil && !errors.Is(err, httputil.ErrEmptyBody) {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return false
	}
	return true
}

func pathCode(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	code, err := strconv.ParseInt(chi.URLParam(r, name), 10, 32)
	if err != nil || code < 1 {
		httputil.Error(w, http.StatusBadRequest, "Invalid code")
		return 0, false
	}
	return int(code), true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrNotFound, Status: http.StatusNotFound},
		{Error: ErrNoUpdateData, Status: http.StatusBadRequest},
		{Error: ErrReferenceNotFound, Status: http.StatusBadRequest},
		{Error: ErrItemExists, Status: http.StatusBadRequest},
		{Error: ErrSupplierExists, Status: http.StatusBadRequest},
		{Error: ErrActivityExists, Status: http.StatusBadRequest},
		{Error: ErrLinkExists, Status: http.StatusBadRequest},
	})
}
