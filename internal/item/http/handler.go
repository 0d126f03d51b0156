package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	"github.com/nekogravitycat/item-sharing-backend/internal/comment"
	commentHttp "github.com/nekogravitycat/item-sharing-backend/internal/comment/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/response"
)

type Handler struct {
	service        item.Service
	bookingService booking.Service
	commentService comment.Service
}

func NewHandler(service item.Service, bookingService booking.Service, commentService comment.Service) *Handler {
	return &Handler{
		service:        service,
		bookingService: bookingService,
		commentService: commentService,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	it, err := h.service.Create(c.Request.Context(), item.CreateRequest{
		OwnerID:     auth.GetUserID(c),
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewItemResponse(it))
}

// ListOwn lists the current user's items with their last and next bookings.
func (h *Handler) ListOwn(c *gin.Context) {
	var q request.ListParams
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	q.Normalize()

	ctx := c.Request.Context()
	items, total, err := h.service.ListByOwner(ctx, auth.GetUserID(c), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]OwnedItemResponse, len(items))
	for i, it := range items {
		last, next, err := h.bookingService.LastAndNextForItem(ctx, it.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		out[i] = OwnedItemResponse{
			ItemResponse: NewItemResponse(it),
			LastBooking:  newBookingShort(last),
			NextBooking:  newBookingShort(next),
		}
	}

	c.JSON(http.StatusOK, response.NewPageResponse(out, q.Page, q.PageSize, total))
}

// Search finds available items by text in their name or description.
func (h *Handler) Search(c *gin.Context) {
	var q SearchItemsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	q.Normalize()

	items, total, err := h.service.Search(c.Request.Context(), q.Text, q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = NewItemResponse(it)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(out, q.Page, q.PageSize, total))
}

// Get returns an item with its comments. The owner also sees the last and
// next bookings.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	ctx := c.Request.Context()
	it, err := h.service.GetByID(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := ItemDetailResponse{ItemResponse: NewItemResponse(it)}

	if it.OwnerID == auth.GetUserID(c) {
		last, next, err := h.bookingService.LastAndNextForItem(ctx, it.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		resp.LastBooking = newBookingShort(last)
		resp.NextBooking = newBookingShort(next)
	}

	comments, err := h.commentService.ListByItem(ctx, it.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp.Comments = commentHttp.NewCommentResponses(comments)

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body UpdateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	it, err := h.service.Update(c.Request.Context(), uri.ID, auth.GetUserID(c), item.UpdateRequest{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewItemResponse(it))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
