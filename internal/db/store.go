package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kiosk/internal/domain"
)

var ErrMenuNotFound = errors.New("menu item not found")

// Store is the menu/order persistence layer. The ordering core never touches
// it directly: the catalog is loaded once per session and orders are written
// at checkout.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS menu_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT 'beverage',
			base_price INTEGER NOT NULL,
			size_variants TEXT[] NOT NULL DEFAULT '{}',
			temperature_variants TEXT[] NOT NULL DEFAULT '{}',
			tags TEXT[] NOT NULL DEFAULT '{}',
			popularity INTEGER NOT NULL DEFAULT 0,
			admin_priority INTEGER,
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_menu_items_priority_popularity ON menu_items(admin_priority, popularity DESC);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			total_price INTEGER NOT NULL,
			ordered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			menu_id TEXT NOT NULL REFERENCES menu_items(id),
			quantity INTEGER NOT NULL,
			unit_price INTEGER NOT NULL,
			option_size TEXT NOT NULL DEFAULT '',
			option_temperature TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

const menuColumns = `id, name, category, base_price, size_variants, temperature_variants, tags, popularity, admin_priority, image_url`

// ListMenu returns menu items, optionally filtered by category. The caller
// applies the display sort: the locale-aware name tiebreaker lives in the
// catalog package, not in SQL.
func (s *Store) ListMenu(ctx context.Context, category string) ([]domain.CatalogItem, error) {
	var rows pgx.Rows
	var err error
	if category == "" {
		rows, err = s.pool.Query(ctx, `SELECT `+menuColumns+` FROM menu_items`)
	} else {
		rows, err = s.pool.Query(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE LOWER(category) = LOWER($1)`, category)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (domain.CatalogItem, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id)
	item, err := scanMenuItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CatalogItem{}, ErrMenuNotFound
	}
	return item, err
}

// UpdatePriority sets or clears the administrative display priority.
func (s *Store) UpdatePriority(ctx context.Context, id string, priority *int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE menu_items SET admin_priority = $2, updated_at = NOW() WHERE id = $1`, id, priority)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMenuNotFound
	}
	return nil
}

// CreateOrder records a checkout and increments each item's popularity by the
// ordered quantity, in one transaction.
func (s *Store) CreateOrder(ctx context.Context, items []domain.LineItem) (domain.Order, error) {
	order := domain.Order{
		ID:        uuid.NewString(),
		Items:     items,
		OrderedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, item := range items {
		order.Total += item.LineTotal
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO orders (id, total_price) VALUES ($1, $2)`, order.ID, order.Total); err != nil {
		return domain.Order{}, err
	}
	for _, item := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, menu_id, quantity, unit_price, option_size, option_temperature)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, item.CatalogID, item.Quantity, item.UnitPrice, item.Options.Size, item.Options.Temperature); err != nil {
			return domain.Order{}, err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE menu_items SET popularity = popularity + $2, updated_at = NOW() WHERE id = $1`,
			item.CatalogID, item.Quantity); err != nil {
			return domain.Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// SeedMenu inserts items that are not present yet, keyed by name. Used to
// bootstrap an empty database.
func (s *Store) SeedMenu(ctx context.Context, items []domain.CatalogItem) error {
	for _, item := range items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO menu_items (id, name, category, base_price, size_variants, temperature_variants, tags, popularity, admin_priority, image_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (name) DO NOTHING`,
			id, item.Name, item.Category, item.BasePrice,
			emptyIfNil(item.SizeVariants), emptyIfNil(item.TemperatureVariants), emptyIfNil(item.Tags),
			item.PopularityScore, item.AdminPriority, item.ImageURL); err != nil {
			return err
		}
	}
	return nil
}

// emptyIfNil keeps variant-less items insertable: pgx encodes a nil []string
// as SQL NULL, which the NOT NULL array columns reject.
func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func scanMenuItem(row pgx.Row) (domain.CatalogItem, error) {
	var item domain.CatalogItem
	err := row.Scan(
		&item.ID, &item.Name, &item.Category, &item.BasePrice,
		&item.SizeVariants, &item.TemperatureVariants, &item.Tags,
		&item.PopularityScore, &item.AdminPriority, &item.ImageURL,
	)
	return item, err
}
