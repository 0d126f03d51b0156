package http

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/itemrequest"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
)

// AnswerResponse is an item listed in answer to a request.
type AnswerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

type RequestResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created"`
}

type RequestWithItemsResponse struct {
	RequestResponse
	Items []AnswerResponse `json:"items"`
}

func NewRequestResponse(r *itemrequest.Request) RequestResponse {
	return RequestResponse{
		ID:          r.ID,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

func NewRequestWithItemsResponse(r *itemrequest.Request) RequestWithItemsResponse {
	return RequestWithItemsResponse{
		RequestResponse: NewRequestResponse(r),
		Items:           newAnswers(r.Items),
	}
}

func newAnswers(items []*item.Item) []AnswerResponse {
	out := make([]AnswerResponse, len(items))
	for i, it := range items {
		out[i] = AnswerResponse{ID: it.ID, Name: it.Name, OwnerID: it.OwnerID}
	}
	return out
}

type CreateItemRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

type ListOthersRequest struct {
	request.ListParams
}
