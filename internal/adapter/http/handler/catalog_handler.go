package handler

import (
	"producers-avenue/internal/adapter/http/dto"
	"producers-avenue/internal/adapter/http/middleware"
	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"
	"producers-avenue/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogHandler handles listing and feed endpoints.
type CatalogHandler struct {
	catalogSvc ports.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogSvc ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// CreateListing handles POST /api/v1/services.
func (h *CatalogHandler) CreateListing(c *gin.Context) {
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	listing := &domain.Listing{
		SellerID:     middleware.UserID(c),
		Kind:         dto.ToItemType(req.Kind),
		Title:        req.Title,
		Description:  req.Description,
		Price:        price,
		DeliveryDays: req.DeliveryDays,
	}
	if err := h.catalogSvc.CreateListing(c.Request.Context(), listing); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, listing)
}

// GetListing handles GET /api/v1/services/:id.
func (h *CatalogHandler) GetListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	listing, err := h.catalogSvc.GetListing(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, listing)
}

// UpdateListing handles PATCH /api/v1/services/:id.
func (h *CatalogHandler) UpdateListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	listing, err := h.catalogSvc.UpdateListing(c.Request.Context(), middleware.UserID(c), &domain.Listing{
		ID:           id,
		Title:        req.Title,
		Description:  req.Description,
		Price:        price,
		Status:       domain.ListingStatus(req.Status),
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, listing)
}

// DeactivateListing handles DELETE /api/v1/services/:id (soft-deactivate).
func (h *CatalogHandler) DeactivateListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid listing id"))
		return
	}

	if err := h.catalogSvc.DeactivateListing(c.Request.Context(), middleware.UserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"status": string(domain.ListingStatusInactive)})
}

// ListListings handles GET /api/v1/services.
func (h *CatalogHandler) ListListings(c *gin.Context) {
	page, pageSize := pagination(c)

	params := ports.ListingListParams{Page: page, PageSize: pageSize}
	if k := c.Query("kind"); k != "" {
		if k != string(domain.ItemTypeProduct) && k != string(domain.ItemTypeService) {
			response.Error(c, apperror.Validation("invalid kind filter"))
			return
		}
		kind := domain.ItemType(k)
		params.Kind = &kind
	}
	if s := c.Query("seller_id"); s != "" {
		sellerID, err := uuid.Parse(s)
		if err != nil {
			response.Error(c, apperror.Validation("invalid seller_id filter"))
			return
		}
		params.SellerID = &sellerID
	}
	if st := c.Query("status"); st != "" {
		status := domain.ListingStatus(st)
		params.Status = &status
	} else {
		active := domain.ListingStatusActive
		params.Status = &active
	}

	listings, total, err := h.catalogSvc.ListListings(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewListResponse(listings, total, page, pageSize))
}

// CreatePost handles POST /api/v1/posts.
func (h *CatalogHandler) CreatePost(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	post := &domain.Post{
		AuthorID: middleware.UserID(c),
		Content:  req.Content,
		MediaURL: req.MediaURL,
	}
	if err := h.catalogSvc.CreatePost(c.Request.Context(), post); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, post)
}

// GetPost handles GET /api/v1/posts/:id.
func (h *CatalogHandler) GetPost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid post id"))
		return
	}

	post, err := h.catalogSvc.GetPost(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, post)
}

// DeletePost handles DELETE /api/v1/posts/:id.
func (h *CatalogHandler) DeletePost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid post id"))
		return
	}

	if err := h.catalogSvc.DeletePost(c.Request.Context(), middleware.UserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// ListPosts handles GET /api/v1/posts.
func (h *CatalogHandler) ListPosts(c *gin.Context) {
	page, pageSize := pagination(c)

	posts, total, err := h.catalogSvc.ListPosts(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewListResponse(posts, total, page, pageSize))
}
