package itemrequest

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/item-sharing-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	// List returns matching requests newest first. A zero PageSize returns all of them.
	List(ctx context.Context, filter Filter) ([]*Request, int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var requestColumns = []string{"id", "requester_id", "description", "created_at"}

func (r *pgxRepository) Create(ctx context.Context, req *Request) error {
	query, args, err := psql.Insert("public.item_requests").
		Columns("requester_id", "description").
		Values(req.RequesterID, req.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return db.Wrap(err, "build create item request query")
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&req.ID, &req.CreatedAt); err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return db.Wrap(err, "create item request")
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	query, args, err := psql.Select(requestColumns...).
		From("public.item_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, db.Wrap(err, "build get item request query")
	}

	var req Request
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&req.ID, &req.RequesterID, &req.Description, &req.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, db.Wrap(err, "get item request")
	}
	return &req, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Request, int, error) {
	query := psql.Select(append(requestColumns, "count(*) OVER() AS total_count")...).
		From("public.item_requests").
		OrderBy("created_at DESC", "id")

	if filter.RequesterID != "" {
		query = query.Where(squirrel.Eq{"requester_id": filter.RequesterID})
	}
	if filter.ExcludeRequesterID != "" {
		query = query.Where(squirrel.NotEq{"requester_id": filter.ExcludeRequesterID})
	}

	if filter.PageSize > 0 {
		if filter.Page < 1 {
			filter.Page = 1
		}
		query = query.
			Limit(uint64(filter.PageSize)).
			Offset(uint64((filter.Page - 1) * filter.PageSize))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, db.Wrap(err, "build list item requests query")
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, db.Wrap(err, "list item requests")
	}
	defer rows.Close()

	var requests []*Request
	var total int
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.Description, &req.CreatedAt, &total); err != nil {
			return nil, 0, db.Wrap(err, "scan item request")
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Wrap(err, "iterate item requests")
	}

	return requests, total, nil
}
