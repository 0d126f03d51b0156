package item

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nekogravitycat/item-sharing-backend/internal/user"
)

// UserGetter resolves item owners.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type CreateRequest struct {
	OwnerID     string
	Name        string
	Description string
	Available   bool
	RequestID   *string
}

// UpdateRequest carries optional changes; nil fields are left untouched.
type UpdateRequest struct {
	Name        *string
	Description *string
	Available   *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]*Item, int, error)
	Search(ctx context.Context, text string, page, pageSize int) ([]*Item, int, error)
	Update(ctx context.Context, id, actorID string, req UpdateRequest) (*Item, error)
	SetPhoto(ctx context.Context, id, actorID, photoID string) (*Item, error)
	Delete(ctx context.Context, id, actorID string) error
	ListByRequests(ctx context.Context, requestIDs []string) ([]*Item, error)
}

type service struct {
	repo  Repository
	users UserGetter
}

func NewService(repo Repository, users UserGetter) Service {
	return &service{
		repo:  repo,
		users: users,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	desc, err := cleanDescription(req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUser(ctx, req.OwnerID); err != nil {
		return nil, err
	}

	it := &Item{
		OwnerID:     req.OwnerID,
		Name:        name,
		Description: desc,
		Available:   req.Available,
		RequestID:   req.RequestID,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}

	slog.Info("item created", "item_id", it.ID, "owner_id", it.OwnerID)
	return it, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) ([]*Item, int, error) {
	if err := s.ensureUser(ctx, ownerID); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, Filter{OwnerID: ownerID, Page: page, PageSize: pageSize})
}

// Search returns available items whose name or description contains text.
// Blank text matches nothing.
func (s *service) Search(ctx context.Context, text string, page, pageSize int) ([]*Item, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, 0, nil
	}
	return s.repo.List(ctx, Filter{Text: text, Page: page, PageSize: pageSize})
}

// ListByRequests returns the items listed in answer to any of requestIDs.
func (s *service) ListByRequests(ctx context.Context, requestIDs []string) ([]*Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	return s.repo.ListByRequests(ctx, requestIDs)
}

func (s *service) Update(ctx context.Context, id, actorID string, req UpdateRequest) (*Item, error) {
	it, err := s.ownedItem(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if it.Name, err = cleanName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if it.Description, err = cleanDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.Available != nil {
		it.Available = *req.Available
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) SetPhoto(ctx context.Context, id, actorID, photoID string) (*Item, error) {
	it, err := s.ownedItem(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	it.PhotoID = &photoID
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) Delete(ctx context.Context, id, actorID string) error {
	if _, err := s.ownedItem(ctx, id, actorID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) ownedItem(ctx context.Context, id, actorID string) (*Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != actorID {
		return nil, ErrNotOwner
	}
	return it, nil
}

func (s *service) ensureUser(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrOwnerNotFound
		}
		return err
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

func cleanDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return "", ErrDescTooLong
	}
	return desc, nil
}
