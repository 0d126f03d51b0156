package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/user"
)

// UserGetter resolves bookers and owners.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// ItemGetter resolves the item being booked.
type ItemGetter interface {
	GetByID(ctx context.Context, id string) (*item.Item, error)
}

type CreateRequest struct {
	BookerID  string
	ItemID    string
	StartTime time.Time
	EndTime   time.Time
}

type ListRequest struct {
	Category Category
	Page     int
	PageSize int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	UpdateStatus(ctx context.Context, ownerID, bookingID string, approved bool) (*Booking, error)
	GetByID(ctx context.Context, viewerID, bookingID string) (*Booking, error)
	ListForBooker(ctx context.Context, bookerID string, req ListRequest) ([]*Booking, int, error)
	ListForOwner(ctx context.Context, ownerID string, req ListRequest) ([]*Booking, int, error)
	// LastAndNextForItem returns the item's most recently finished booking and
	// its next upcoming one. Either may be nil.
	LastAndNextForItem(ctx context.Context, itemID string) (last, next *Booking, err error)
	// IsEligibleToComment reports whether the user has finished a booking of the item.
	IsEligibleToComment(ctx context.Context, userID, itemID string) (bool, error)
}

type service struct {
	repo  Repository
	users UserGetter
	items ItemGetter
	now   func() time.Time
}

// NewService creates a booking service. now is the clock every operation reads
// once; pass nil for the wall clock.
func NewService(repo Repository, users UserGetter, items ItemGetter, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:  repo,
		users: users,
		items: items,
		now:   now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	now := s.now()

	// Postgres keeps microseconds.
	req.StartTime = req.StartTime.Truncate(time.Microsecond)
	req.EndTime = req.EndTime.Truncate(time.Microsecond)

	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidTimeRange
	}
	if !req.StartTime.After(now) {
		return nil, ErrStartTimePast
	}
	if req.EndTime.Before(now) {
		return nil, ErrEndTimePast
	}

	booker, err := s.user(ctx, req.BookerID)
	if err != nil {
		return nil, err
	}

	it, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !it.Available {
		return nil, ErrItemUnavailable
	}
	if it.OwnerID == booker.ID {
		return nil, ErrOwnItem
	}

	b := &Booking{
		ItemID:     it.ID,
		ItemName:   it.Name,
		BookerID:   booker.ID,
		BookerName: booker.Name,
		OwnerID:    it.OwnerID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     StatusPending,
	}

	err = s.repo.WithinLock(ctx, "item:"+it.ID, func(repo Repository) error {
		existing, err := repo.FindOverlapping(ctx, it.ID, req.StartTime, req.EndTime)
		if err != nil {
			return err
		}
		if err := CheckConflict(existing, req.StartTime, req.EndTime); err != nil {
			return err
		}
		return repo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("booking created", "booking_id", b.ID, "item_id", b.ItemID, "booker_id", b.BookerID)
	return b, nil
}

func (s *service) UpdateStatus(ctx context.Context, ownerID, bookingID string, approved bool) (*Booking, error) {
	if _, err := s.user(ctx, ownerID); err != nil {
		return nil, err
	}

	var b *Booking
	err := s.repo.WithinLock(ctx, "booking:"+bookingID, func(repo Repository) error {
		var err error
		b, err = repo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}

		it, err := s.items.GetByID(ctx, b.ItemID)
		if err != nil {
			if errors.Is(err, item.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		next, err := Transition(b, ownerID, it.OwnerID, approved)
		if err != nil {
			return err
		}

		updatedAt, err := repo.UpdateStatus(ctx, b.ID, b.Status, next)
		if err != nil {
			if errors.Is(err, ErrStatusChanged) {
				slog.Warn("booking status changed concurrently", "booking_id", b.ID)
			}
			return err
		}
		b.Status = next
		b.UpdatedAt = updatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("booking status updated", "booking_id", b.ID, "status", b.Status, "owner_id", ownerID)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, viewerID, bookingID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if viewerID != b.BookerID && viewerID != b.OwnerID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) ListForBooker(ctx context.Context, bookerID string, req ListRequest) ([]*Booking, int, error) {
	if _, err := s.user(ctx, bookerID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, Filter{BookerID: bookerID}, req)
}

func (s *service) ListForOwner(ctx context.Context, ownerID string, req ListRequest) ([]*Booking, int, error) {
	if _, err := s.user(ctx, ownerID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, Filter{OwnerID: ownerID}, req)
}

func (s *service) list(ctx context.Context, filter Filter, req ListRequest) ([]*Booking, int, error) {
	category := req.Category
	if category == "" {
		category = CategoryAll
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, 0, err
	}

	filter.Category = category
	filter.Now = s.now()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	return s.repo.List(ctx, filter)
}

func (s *service) LastAndNextForItem(ctx context.Context, itemID string) (*Booking, *Booking, error) {
	now := s.now()

	last, err := s.repo.FindLastPast(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	next, err := s.repo.FindNextFuture(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	return last, next, nil
}

func (s *service) IsEligibleToComment(ctx context.Context, userID, itemID string) (bool, error) {
	return s.repo.ExistsFinishedForBooker(ctx, userID, itemID, s.now())
}

func (s *service) user(ctx context.Context, id string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
