package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/YelzhanWeb/kasir/internal/domain"
	"github.com/YelzhanWeb/kasir/internal/interfaces"
)

const tableColumns = `id, label, capacity, status, note, updated_at`

type tableRepository struct {
	db DB
}

func NewTableRepository(db DB) interfaces.TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) List(ctx context.Context) ([]*domain.Table, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tableColumns+` FROM tables ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	tables := []*domain.Table{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}
	return tables, nil
}

func (r *tableRepository) Create(ctx context.Context, table *domain.Table) error {
	query := `
		INSERT INTO tables (label, capacity, status, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		table.Label, table.Capacity, table.Status, table.Note,
	).Scan(&table.ID, &table.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Update changes only the non-nil fields of patch.
func (r *tableRepository) Update(ctx context.Context, id int64, patch domain.TablePatch) (*domain.Table, error) {
	query := `
		UPDATE tables
		SET label = COALESCE($1, label),
		    capacity = COALESCE($2, capacity),
		    status = COALESCE($3, status),
		    note = COALESCE($4, note),
		    updated_at = now()
		WHERE id = $5
		RETURNING ` + tableColumns

	t, err := scanTable(r.db.QueryRow(ctx, query, patch.Label, patch.Capacity, patch.Status, patch.Note, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tableNotFound()
		}
		return nil, fmt.Errorf("failed to update table: %w", err)
	}
	return t, nil
}

func (r *tableRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tableNotFound()
	}
	return nil
}

func scanTable(row Row) (*domain.Table, error) {
	var t domain.Table
	if err := row.Scan(&t.ID, &t.Label, &t.Capacity, &t.Status, &t.Note, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func tableNotFound() error {
	return domain.NewValidationError("id", domain.CodeTableNotFound, domain.ErrTableNotFound)
}
