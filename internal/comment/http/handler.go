package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/comment"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/response"
)

type Handler struct {
	service comment.Service
}

func NewHandler(service comment.Service) *Handler {
	return &Handler{service: service}
}

// Create adds a comment to an item. Only users who have finished a booking
// of the item may comment.
func (h *Handler) Create(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body CreateCommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	cm, err := h.service.Create(c.Request.Context(), comment.CreateRequest{
		ItemID:   uri.ID,
		AuthorID: auth.GetUserID(c),
		Text:     body.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewCommentResponse(cm))
}

func (h *Handler) List(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	comments, err := h.service.ListByItem(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewCommentResponses(comments))
}
