package postgres

import (
	"context"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"
)

const toolColumns = `id, owner_id, name, COALESCE(description, ''), COALESCE(address, ''), lat, lng, icon_key, is_available, active_request_id, created_at, updated_at, deleted_at`

type toolRepository struct {
	db DBTX
}

func NewToolRepository(db DBTX) repository.ToolRepository {
	return &toolRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTool(row rowScanner, t *domain.Tool) error {
	return row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.Address, &t.Lat, &t.Lng, &t.IconKey, &t.IsAvailable, &t.ActiveRequestID, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
}

func (r *toolRepository) Create(ctx context.Context, t *domain.Tool) error {
	now := time.Now().UTC()
	query := `INSERT INTO tools (owner_id, name, description, address, lat, lng, icon_key, is_available, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, t.OwnerID, t.Name, t.Description, t.Address, t.Lat, t.Lng, t.IconKey, t.IsAvailable, now, now).Scan(&t.ID)
	if err != nil {
		return mapError(err)
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	t := &domain.Tool{}
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1`
	if err := scanTool(r.db.QueryRowContext(ctx, query, id), t); err != nil {
		return nil, notFoundOr(err, "tool %d not found", id)
	}
	return t, nil
}

func (r *toolRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Tool, error) {
	t := &domain.Tool{}
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1 FOR UPDATE`
	if err := scanTool(r.db.QueryRowContext(ctx, query, id), t); err != nil {
		return nil, notFoundOr(err, "tool %d not found", id)
	}
	return t, nil
}

func (r *toolRepository) Update(ctx context.Context, t *domain.Tool) error {
	now := time.Now().UTC()
	query := `UPDATE tools SET name=$1, description=$2, address=$3, lat=$4, lng=$5, icon_key=$6, updated_at=$7 WHERE id=$8 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, t.Name, t.Description, t.Address, t.Lat, t.Lng, t.IconKey, now, t.ID)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("tool %d not found", t.ID)
	}
	t.UpdatedAt = now
	return nil
}

func (r *toolRepository) SetAvailability(ctx context.Context, id int32, available bool, activeRequestID *int32) error {
	query := `UPDATE tools SET is_available=$1, active_request_id=$2, updated_at=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, available, activeRequestID, time.Now().UTC(), id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("tool %d not found", id)
	}
	return nil
}

func (r *toolRepository) Delete(ctx context.Context, id int32) error {
	query := `UPDATE tools SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("tool %d not found", id)
	}
	return nil
}

func (r *toolRepository) List(ctx context.Context) ([]domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE deleted_at IS NULL ORDER BY id`
	return r.list(ctx, query)
}

func (r *toolRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY id`
	return r.list(ctx, query, ownerID)
}

func (r *toolRepository) list(ctx context.Context, query string, args ...any) ([]domain.Tool, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tools []domain.Tool
	for rows.Next() {
		var t domain.Tool
		if err := scanTool(rows, &t); err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, rows.Err()
}
