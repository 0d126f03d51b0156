package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/item-sharing-backend/internal/db"
)

type Repository interface {
	// WithinLock runs fn against a transaction scoped repository while holding
	// an advisory lock on key. The transaction commits when fn returns nil.
	WithinLock(ctx context.Context, key string, fn func(Repository) error) error

	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	// UpdateStatus moves the booking from one status to another and returns the
	// new update time. It fails with ErrStatusChanged if the stored status is
	// no longer from.
	UpdateStatus(ctx context.Context, id string, from, to Status) (time.Time, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// FindOverlapping returns every booking of the item whose closed interval
	// intersects [start, end], whatever its status.
	FindOverlapping(ctx context.Context, itemID string, start, end time.Time) ([]*Booking, error)
	// FindLastPast returns the booking of the item with the latest end at or
	// before now, or nil.
	FindLastPast(ctx context.Context, itemID string, now time.Time) (*Booking, error)
	// FindNextFuture returns the booking of the item with the earliest start
	// after now, or nil.
	FindNextFuture(ctx context.Context, itemID string, now time.Time) (*Booking, error)
	ExistsFinishedForBooker(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
	q    db.Querier
	tx   pgx.Tx
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, q: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.item_id", "i.name", "b.booker_id", "u.name", "i.owner_id",
	"b.start_time", "b.end_time", "b.status", "b.created_at", "b.updated_at",
}

func selectBookings(extra ...string) squirrel.SelectBuilder {
	cols := make([]string, 0, len(bookingColumns)+len(extra))
	cols = append(cols, bookingColumns...)
	cols = append(cols, extra...)
	return psql.Select(cols...).
		From("public.bookings b").
		Join("public.items i ON b.item_id = i.id").
		Join("public.users u ON b.booker_id = u.id")
}

func scanDest(b *Booking) []any {
	return []any{
		&b.ID, &b.ItemID, &b.ItemName, &b.BookerID, &b.BookerName, &b.OwnerID,
		&b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	}
}

func (r *pgxRepository) WithinLock(ctx context.Context, key string, fn func(Repository) error) error {
	if r.tx != nil {
		if err := db.AdvisoryLock(ctx, r.tx, key); err != nil {
			return err
		}
		return fn(r)
	}

	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := db.AdvisoryLock(ctx, tx, key); err != nil {
			return err
		}
		return fn(&pgxRepository{q: tx, tx: tx})
	})
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("item_id", "booker_id", "start_time", "end_time", "status").
		Values(b.ItemID, b.BookerID, b.StartTime, b.EndTime, b.Status).
		Suffix("RETURNING id, start_time, end_time, created_at, updated_at").
		ToSql()
	if err != nil {
		return db.Wrap(err, "build create booking query")
	}

	row := r.q.QueryRow(ctx, query, args...)
	if err := row.Scan(&b.ID, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if db.IsExclusionViolation(err) {
			return ErrTimeConflict
		}
		return db.Wrap(err, "create booking")
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, db.Wrap(err, "build get booking query")
	}

	var b Booking
	if err := r.q.QueryRow(ctx, query, args...).Scan(scanDest(&b)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, db.Wrap(err, "get booking")
	}
	return &b, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (time.Time, error) {
	query, args, err := psql.Update("public.bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return time.Time{}, db.Wrap(err, "build update booking status query")
	}

	var updatedAt time.Time
	if err := r.q.QueryRow(ctx, query, args...).Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrStatusChanged
		}
		return time.Time{}, db.Wrap(err, "update booking status")
	}
	return updatedAt, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBookings("count(*) OVER() AS total_count")

	if filter.BookerID != "" {
		query = query.Where(squirrel.Eq{"b.booker_id": filter.BookerID})
	}
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"i.owner_id": filter.OwnerID})
	}
	if pred := filter.Category.Where(filter.Now); pred != nil {
		query = query.Where(pred)
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
		OrderBy("b.start_time DESC", "b.id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, db.Wrap(err, "build list bookings query")
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, db.Wrap(err, "list bookings")
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		var b Booking
		if err := rows.Scan(append(scanDest(&b), &total)...); err != nil {
			return nil, 0, db.Wrap(err, "scan booking")
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Wrap(err, "iterate bookings")
	}

	return bookings, total, nil
}

func (r *pgxRepository) FindOverlapping(ctx context.Context, itemID string, start, end time.Time) ([]*Booking, error) {
	sql, args, err := selectBookings().
		Where(squirrel.Eq{"b.item_id": itemID}).
		Where(squirrel.LtOrEq{"b.start_time": end}).
		Where(squirrel.GtOrEq{"b.end_time": start}).
		OrderBy("b.start_time").
		ToSql()
	if err != nil {
		return nil, db.Wrap(err, "build find overlapping query")
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.Wrap(err, "find overlapping bookings")
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(scanDest(&b)...); err != nil {
			return nil, db.Wrap(err, "scan booking")
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(err, "iterate bookings")
	}
	return bookings, nil
}

func (r *pgxRepository) FindLastPast(ctx context.Context, itemID string, now time.Time) (*Booking, error) {
	return r.findOne(ctx, "find last booking", selectBookings().
		Where(squirrel.Eq{"b.item_id": itemID}).
		Where(squirrel.LtOrEq{"b.end_time": now}).
		OrderBy("b.end_time DESC").
		Limit(1))
}

func (r *pgxRepository) FindNextFuture(ctx context.Context, itemID string, now time.Time) (*Booking, error) {
	return r.findOne(ctx, "find next booking", selectBookings().
		Where(squirrel.Eq{"b.item_id": itemID}).
		Where(squirrel.Gt{"b.start_time": now}).
		OrderBy("b.start_time ASC").
		Limit(1))
}

func (r *pgxRepository) findOne(ctx context.Context, op string, query squirrel.SelectBuilder) (*Booking, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, db.Wrap(err, "build "+op+" query")
	}

	var b Booking
	if err := r.q.QueryRow(ctx, sql, args...).Scan(scanDest(&b)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, db.Wrap(err, op)
	}
	return &b, nil
}

func (r *pgxRepository) ExistsFinishedForBooker(ctx context.Context, bookerID, itemID string, now time.Time) (bool, error) {
	sub, args, err := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"booker_id": bookerID, "item_id": itemID}).
		Where(squirrel.LtOrEq{"end_time": now}).
		ToSql()
	if err != nil {
		return false, db.Wrap(err, "build finished booking query")
	}

	var exists bool
	if err := r.q.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, db.Wrap(err, "check finished booking")
	}
	return exists, nil
}
