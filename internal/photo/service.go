package photo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/storage"
)

// ItemStore resolves items and attaches photos to them on behalf of their owner.
type ItemStore interface {
	GetByID(ctx context.Context, id string) (*item.Item, error)
	SetPhoto(ctx context.Context, id, actorID, photoID string) (*item.Item, error)
}

type UploadRequest struct {
	ItemID     string
	UploaderID string
	Filename   string
	Content    io.Reader
}

type Service interface {
	// Upload stores an image and makes it the item's photo, replacing any
	// previous one. Only the item owner may upload.
	Upload(ctx context.Context, req UploadRequest) (*Photo, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
}

type service struct {
	repo     Repository
	items    ItemStore
	store    storage.Storage
	maxBytes int64
}

func NewService(repo Repository, items ItemStore, store storage.Storage, maxBytes int64) Service {
	return &service{
		repo:     repo,
		items:    items,
		store:    store,
		maxBytes: maxBytes,
	}
}

func (s *service) Upload(ctx context.Context, req UploadRequest) (*Photo, error) {
	it, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != req.UploaderID {
		return nil, item.ErrNotOwner
	}

	data, err := io.ReadAll(io.LimitReader(req.Content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrTooLarge
	}
	contentType, ext, err := storage.DetectImage(data)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	dir := "photos/" + id[:2]
	p := &Photo{
		ID:          id,
		ItemID:      it.ID,
		UploaderID:  req.UploaderID,
		Filename:    path.Base(req.Filename),
		StoragePath: dir + "/" + id + ext,
		ContentType: contentType,
		Size:        int64(len(data)),
	}

	if err := s.store.Save(ctx, p.StoragePath, bytes.NewReader(data)); err != nil {
		return nil, err
	}

	thumb, err := storage.Thumbnail(bytes.NewReader(data), storage.ThumbnailSize)
	if err != nil {
		slog.Warn("thumbnail generation failed", "photo_id", id, "error", err)
	} else {
		thumbPath := dir + "/" + id + "_thumb.jpg"
		if err := s.store.Save(ctx, thumbPath, bytes.NewReader(thumb)); err != nil {
			slog.Warn("thumbnail save failed", "photo_id", id, "error", err)
		} else {
			p.ThumbnailPath = &thumbPath
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.removeFiles(ctx, p)
		return nil, err
	}

	if _, err := s.items.SetPhoto(ctx, it.ID, req.UploaderID, p.ID); err != nil {
		s.remove(ctx, p)
		return nil, err
	}

	if it.PhotoID != nil {
		if old, err := s.repo.GetByID(ctx, *it.PhotoID); err == nil {
			s.remove(ctx, old)
		}
	}

	slog.Info("item photo uploaded", "photo_id", p.ID, "item_id", p.ItemID, "size", p.Size)
	return p, nil
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Open(ctx, p.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return rc, p, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if p.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}
	rc, err := s.store.Open(ctx, *p.ThumbnailPath)
	if err != nil {
		return nil, nil, err
	}
	return rc, p, nil
}

// remove deletes the photo record and its files, logging failures.
func (s *service) remove(ctx context.Context, p *Photo) {
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		slog.Warn("photo record cleanup failed", "photo_id", p.ID, "error", err)
	}
	s.removeFiles(ctx, p)
}

func (s *service) removeFiles(ctx context.Context, p *Photo) {
	if err := s.store.Delete(ctx, p.StoragePath); err != nil {
		slog.Warn("photo file cleanup failed", "photo_id", p.ID, "error", err)
	}
	if p.ThumbnailPath != nil {
		if err := s.store.Delete(ctx, *p.ThumbnailPath); err != nil {
			slog.Warn("thumbnail cleanup failed", "photo_id", p.ID, "error", err)
		}
	}
}
