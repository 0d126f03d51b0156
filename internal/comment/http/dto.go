package http

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/comment"
)

type CommentResponse struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created"`
}

func NewCommentResponse(c *comment.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		CreatedAt:  c.CreatedAt,
	}
}

// NewCommentResponses maps comments in order, never returning nil.
func NewCommentResponses(comments []*comment.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = NewCommentResponse(c)
	}
	return out
}

type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}
