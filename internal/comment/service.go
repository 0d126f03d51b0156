package comment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/user"
)

type UserGetter interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type ItemGetter interface {
	GetByID(ctx context.Context, id string) (*item.Item, error)
}

// EligibilityChecker decides whether a user may comment on an item.
// It is satisfied by booking.Service.
type EligibilityChecker interface {
	IsEligibleToComment(ctx context.Context, userID, itemID string) (bool, error)
}

type CreateRequest struct {
	ItemID   string
	AuthorID string
	Text     string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Comment, error)
	ListByItem(ctx context.Context, itemID string) ([]*Comment, error)
}

type service struct {
	repo     Repository
	users    UserGetter
	items    ItemGetter
	bookings EligibilityChecker
}

func NewService(repo Repository, users UserGetter, items ItemGetter, bookings EligibilityChecker) Service {
	return &service{
		repo:     repo,
		users:    users,
		items:    items,
		bookings: bookings,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return nil, ErrTextTooLong
	}

	author, err := s.users.GetByID(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureItem(ctx, req.ItemID); err != nil {
		return nil, err
	}

	ok, err := s.bookings.IsEligibleToComment(ctx, author.ID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotEligible
	}

	c := &Comment{
		ItemID:     req.ItemID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	slog.Info("comment created", "comment_id", c.ID, "item_id", c.ItemID, "author_id", c.AuthorID)
	return c, nil
}

func (s *service) ListByItem(ctx context.Context, itemID string) ([]*Comment, error) {
	if err := s.ensureItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListByItem(ctx, itemID)
}

func (s *service) ensureItem(ctx context.Context, id string) error {
	if _, err := s.items.GetByID(ctx, id); err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}
