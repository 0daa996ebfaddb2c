package postgres

import (
	"context"
	"database/sql"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// PermissionPostgres is a PostgreSQL implementation of repository.PermissionRepository.
type PermissionPostgres struct {
	db *sql.DB
}

// NewPermissionPostgres creates a new PermissionPostgres repository.
func NewPermissionPostgres(db *sql.DB) *PermissionPostgres {
	return &PermissionPostgres{db: db}
}

var _ repository.PermissionRepository = (*PermissionPostgres)(nil)

func scanPermission(row rowScanner) (*model.Permission, error) {
	var (
		p    model.Permission
		desc sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &desc); err != nil {
		return nil, err
	}
	p.Description = desc.String
	return &p, nil
}

// Create inserts a permission; existing names are returned unchanged.
func (r *PermissionPostgres) Create(ctx context.Context, p *model.Permission) (*model.Permission, error) {
	const q = `
		INSERT INTO permissions (name, description)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id, name, COALESCE(description, '')
	`
	return scanPermission(r.db.QueryRowContext(ctx, q, p.Name, p.Description))
}

// FindByName fetches a permission by its unique name.
func (r *PermissionPostgres) FindByName(ctx context.Context, name string) (*model.Permission, error) {
	const q = `SELECT id, name, description FROM permissions WHERE name = $1`
	return scanPermission(r.db.QueryRowContext(ctx, q, name))
}

// List returns the whole catalog ordered by id.
func (r *PermissionPostgres) List(ctx context.Context) ([]model.Permission, error) {
	const q = `SELECT id, name, description FROM permissions ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Permission, 0)
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// ListForRole returns the permission names assigned to a role.
func (r *PermissionPostgres) ListForRole(ctx context.Context, roleID int64) ([]string, error) {
	const q = `
		SELECT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name
	`
	rows, err := r.db.QueryContext(ctx, q, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AssignToRole links a permission to a role; assigning twice is a no-op.
func (r *PermissionPostgres) AssignToRole(ctx context.Context, roleID, permissionID int64) error {
	const q = `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, roleID, permissionID)
	return err
}
