package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

const menuColumns = `id, name, category, price, is_available, photo_url, created_at, updated_at`

type menuRepository struct {
	db DB
}

func NewMenuRepository(db DB) interfaces.MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) List(ctx context.Context) ([]*domain.MenuItem, error) {
	return r.query(ctx, `SELECT `+menuColumns+` FROM menu_items ORDER BY category, name`)
}

// FindByIDs resolves ids in one round trip. Missing ids are absent from the
// result.
func (r *menuRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.MenuItem, error) {
	items, err := r.query(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	query := `
		INSERT INTO menu_items (name, category, price, is_available, photo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		item.Name, item.Category, item.Price, item.IsAvailable, item.PhotoURL,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

func (r *menuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $1, category = $2, price = $3, is_available = $4, photo_url = $5, updated_at = now()
		WHERE id = $6
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		item.Name, item.Category, item.Price, item.IsAvailable, item.PhotoURL, item.ID,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menuItemNotFound()
		}
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return nil
}

func (r *menuRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewValidationError("id", domain.CodeInvalidValue, domain.ErrMenuItemInUse)
		}
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return menuItemNotFound()
	}
	return nil
}

func (r *menuRepository) query(ctx context.Context, query string, args ...any) ([]*domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []*domain.MenuItem{}
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Price, &m.IsAvailable, &m.PhotoURL,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read menu items: %w", err)
	}
	return items, nil
}

func menuItemNotFound() error {
	return domain.NewValidationError("id", domain.CodeMenuItemNotFound, domain.ErrMenuItemNotFound)
}
