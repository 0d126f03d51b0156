package item

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/item-sharing-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, filter Filter) ([]*Item, int, error)
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id string) error
	ListByRequests(ctx context.Context, requestIDs []string) ([]*Item, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const requestFKey = "items_request_id_fkey"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var itemColumns = []string{
	"id", "owner_id", "name", "description", "available", "photo_id", "request_id", "created_at", "updated_at",
}

func scanDest(it *Item) []any {
	return []any{
		&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.Available, &it.PhotoID, &it.RequestID, &it.CreatedAt, &it.UpdatedAt,
	}
}

func (r *pgxRepository) Create(ctx context.Context, it *Item) error {
	query, args, err := psql.Insert("public.items").
		Columns("owner_id", "name", "description", "available", "request_id").
		Values(it.OwnerID, it.Name, it.Description, it.Available, it.RequestID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return db.Wrap(err, "build create item query")
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if db.IsForeignKeyViolation(err) {
			if db.ConstraintName(err) == requestFKey {
				return ErrRequestNotFound
			}
			return ErrOwnerNotFound
		}
		return db.Wrap(err, "create item")
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From("public.items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, db.Wrap(err, "build get item query")
	}

	var it Item
	if err := r.pool.QueryRow(ctx, query, args...).Scan(scanDest(&it)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, db.Wrap(err, "get item")
	}
	return &it, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Item, int, error) {
	query := psql.Select(append(itemColumns, "count(*) OVER() AS total_count")...).
		From("public.items")

	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	if filter.Text != "" {
		pattern := "%" + filter.Text + "%"
		query = query.
			Where(squirrel.Eq{"available": true}).
			Where(squirrel.Or{
				squirrel.ILike{"name": pattern},
				squirrel.ILike{"description": pattern},
			})
	}

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, db.Wrap(err, "build list items query")
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, db.Wrap(err, "list items")
	}
	defer rows.Close()

	var items []*Item
	var total int
	for rows.Next() {
		var it Item
		if err := rows.Scan(append(scanDest(&it), &total)...); err != nil {
			return nil, 0, db.Wrap(err, "scan item")
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Wrap(err, "iterate items")
	}

	return items, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, it *Item) error {
	query, args, err := psql.Update("public.items").
		Set("name", it.Name).
		Set("description", it.Description).
		Set("available", it.Available).
		Set("photo_id", it.PhotoID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": it.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return db.Wrap(err, "build update item query")
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&it.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return db.Wrap(err, "update item")
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return db.Wrap(err, "build delete item query")
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return db.Wrap(err, "delete item")
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRequests returns every item listed in answer to one of requestIDs,
// oldest first.
func (r *pgxRepository) ListByRequests(ctx context.Context, requestIDs []string) ([]*Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From("public.items").
		Where(squirrel.Eq{"request_id": requestIDs}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, db.Wrap(err, "build list items by request query")
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Wrap(err, "list items by request")
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(scanDest(&it)...); err != nil {
			return nil, db.Wrap(err, "scan item")
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(err, "iterate items")
	}
	return items, nil
}
