package db

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: no two bookings of one item may share an instant, whatever
	// their status. The service checks this under a per-item lock; the
	// constraint catches anything that bypasses it.
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
			ALTER TABLE public.bookings ADD CONSTRAINT bookings_no_overlap
				EXCLUDE USING gist (item_id WITH =, tstzrange(start_time, end_time, '[]') WITH &&);
		END IF;
	END $$`,
	// Migration 2: PENDING and REJECTED listings filter on status.
	`CREATE INDEX IF NOT EXISTS idx_bookings_status ON public.bookings(status)`,
	// Migration 3: items may be listed in answer to an item request.
	`ALTER TABLE public.items ADD COLUMN IF NOT EXISTS request_id UUID
		CONSTRAINT items_request_id_fkey REFERENCES public.item_requests(id) ON DELETE SET NULL`,
	`CREATE INDEX IF NOT EXISTS idx_items_request ON public.items(request_id)`,
}

// Migrate creates the schema and runs every migration.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
		slog.Debug("migration applied", "index", i+1)
	}

	return nil
}
