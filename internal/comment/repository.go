package comment

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/item-sharing-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	// ListByItem returns the item's comments, oldest first.
	ListByItem(ctx context.Context, itemID string) ([]*Comment, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) Create(ctx context.Context, c *Comment) error {
	query, args, err := psql.Insert("public.comments").
		Columns("item_id", "author_id", "text").
		Values(c.ItemID, c.AuthorID, c.Text).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return db.Wrap(err, "build create comment query")
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrItemNotFound
		}
		return db.Wrap(err, "create comment")
	}
	return nil
}

func (r *pgxRepository) ListByItem(ctx context.Context, itemID string) ([]*Comment, error) {
	query, args, err := psql.Select("c.id", "c.item_id", "c.author_id", "u.name", "c.text", "c.created_at").
		From("public.comments c").
		Join("public.users u ON c.author_id = u.id").
		Where(squirrel.Eq{"c.item_id": itemID}).
		OrderBy("c.created_at ASC", "c.id").
		ToSql()
	if err != nil {
		return nil, db.Wrap(err, "build list comments query")
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Wrap(err, "list comments")
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &c.CreatedAt); err != nil {
			return nil, db.Wrap(err, "scan comment")
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(err, "iterate comments")
	}
	return comments, nil
}
