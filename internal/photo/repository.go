package photo

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/item-sharing-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, p *Photo) error
	GetByID(ctx context.Context, id string) (*Photo, error)
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) Create(ctx context.Context, p *Photo) error {
	query, args, err := psql.Insert("public.photos").
		Columns("id", "item_id", "uploader_id", "filename", "storage_path", "thumbnail_path", "content_type", "size").
		Values(p.ID, p.ItemID, p.UploaderID, p.Filename, p.StoragePath, p.ThumbnailPath, p.ContentType, p.Size).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return db.Wrap(err, "build create photo query")
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.CreatedAt); err != nil {
		return db.Wrap(err, "create photo")
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Photo, error) {
	query, args, err := psql.Select(
		"id", "item_id", "uploader_id", "filename", "storage_path", "thumbnail_path", "content_type", "size", "created_at",
	).
		From("public.photos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, db.Wrap(err, "build get photo query")
	}

	var p Photo
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.ItemID, &p.UploaderID, &p.Filename, &p.StoragePath, &p.ThumbnailPath, &p.ContentType, &p.Size, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, db.Wrap(err, "get photo")
	}
	return &p, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.photos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return db.Wrap(err, "build delete photo query")
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return db.Wrap(err, "delete photo")
	}
	return nil
}
