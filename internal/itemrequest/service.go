package itemrequest

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

// ItemLister finds the items listed in answer to requests. It is satisfied by item.Service.
type ItemLister interface {
	ListByRequests(ctx context.Context, requestIDs []string) ([]*item.Item, error)
}

type CreateRequest struct {
	RequesterID string
	Description string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Request, error)
	// ListOwn returns every request of the user, newest first, with their answers.
	ListOwn(ctx context.Context, userID string) ([]*Request, error)
	// ListOthers pages through everyone else's requests, newest first.
	ListOthers(ctx context.Context, userID string, page, pageSize int) ([]*Request, int, error)
	GetByID(ctx context.Context, viewerID, id string) (*Request, error)
}

type service struct {
	repo  Repository
	users UserGetter
	items ItemLister
}

func NewService(repo Repository, users UserGetter, items ItemLister) Service {
	return &service{
		repo:  repo,
		users: users,
		items: items,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Request, error) {
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	if err := s.ensureUser(ctx, req.RequesterID); err != nil {
		return nil, err
	}

	r := &Request{
		RequesterID: req.RequesterID,
		Description: desc,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	slog.Info("item request created", "request_id", r.ID, "requester_id", r.RequesterID)
	return r, nil
}

func (s *service) ListOwn(ctx context.Context, userID string) ([]*Request, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	requests, _, err := s.repo.List(ctx, Filter{RequesterID: userID})
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *service) ListOthers(ctx context.Context, userID string, page, pageSize int) ([]*Request, int, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.repo.List(ctx, Filter{ExcludeRequesterID: userID, Page: page, PageSize: pageSize})
}

func (s *service) GetByID(ctx context.Context, viewerID, id string) (*Request, error) {
	if err := s.ensureUser(ctx, viewerID); err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, []*Request{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// attachItems fills in the answers of every request with a single lookup.
func (s *service) attachItems(ctx context.Context, requests []*Request) error {
	if len(requests) == 0 {
		return nil
	}

	byID := make(map[string]*Request, len(requests))
	ids := make([]string, len(requests))
	for i, r := range requests {
		r.Items = []*item.Item{}
		byID[r.ID] = r
		ids[i] = r.ID
	}

	items, err := s.items.ListByRequests(ctx, ids)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.RequestID == nil {
			continue
		}
		if r, ok := byID[*it.RequestID]; ok {
			r.Items = append(r.Items, it)
		}
	}
	return nil
}

func (s *service) ensureUser(ctx context.Context, id string) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
