package handler

import (
	partnerapp "github.com/dropship/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
)

const supplierNotFound = "Supplier not found"

// SupplierHandler handles supplier administration endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
	ratingService   *partnerapp.SupplierRatingService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService, ratingService *partnerapp.SupplierRatingService) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		ratingService:   ratingService,
	}
}

// List handles GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.SupplierListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	suppliers, total, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, suppliers, total, page, pageSize)
}

// GetByID handles GET /suppliers/:id
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "supplier")
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleResourceError(c, err, supplierNotFound)
		return
	}

	h.Success(c, supplier)
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, supplier)
}

// Update handles PUT /suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "supplier")
	if !ok {
		return
	}

	var req partnerapp.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleResourceError(c, err, supplierNotFound)
		return
	}

	h.Success(c, supplier)
}

// Deactivate handles POST /suppliers/:id/deactivate
func (h *SupplierHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParseID(c, "supplier")
	if !ok {
		return
	}

	supplier, err := h.supplierService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleResourceError(c, err, supplierNotFound)
		return
	}

	h.Success(c, supplier)
}

// Activate handles POST /suppliers/:id/activate
func (h *SupplierHandler) Activate(c *gin.Context) {
	id, ok := h.ParseID(c, "supplier")
	if !ok {
		return
	}

	supplier, err := h.supplierService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleResourceError(c, err, supplierNotFound)
		return
	}

	h.Success(c, supplier)
}

// RecalculateRating handles POST /suppliers/:id/rating/recalculate
func (h *SupplierHandler) RecalculateRating(c *gin.Context) {
	id, ok := h.ParseID(c, "supplier")
	if !ok {
		return
	}

	supplier, err := h.ratingService.Recalculate(c.Request.Context(), id)
	if err != nil {
		h.HandleResourceError(c, err, supplierNotFound)
		return
	}

	h.Success(c, supplier)
}

func pageOrDefault(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}
