package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// RolePostgres is a PostgreSQL implementation of repository.RoleRepository.
type RolePostgres struct {
	db *sql.DB
}

// NewRolePostgres creates a new RolePostgres repository.
func NewRolePostgres(db *sql.DB) *RolePostgres {
	return &RolePostgres{db: db}
}

var _ repository.RoleRepository = (*RolePostgres)(nil)

func scanRole(row rowScanner) (*model.Role, error) {
	var (
		r    model.Role
		desc sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Name, &desc); err != nil {
		return nil, err
	}
	r.Description = desc.String
	return &r, nil
}

// Create inserts a new role and returns the stored record.
func (r *RolePostgres) Create(ctx context.Context, role *model.Role) (*model.Role, error) {
	const q = `
		INSERT INTO roles (name, description)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id, name, COALESCE(description, '')
	`
	return scanRole(r.db.QueryRowContext(ctx, q, role.Name, role.Description))
}

// FindByID fetches a role by id.
func (r *RolePostgres) FindByID(ctx context.Context, id int64) (*model.Role, error) {
	const q = `SELECT id, name, description FROM roles WHERE id = $1`
	return scanRole(r.db.QueryRowContext(ctx, q, id))
}

// FindByName fetches a role by its unique name.
func (r *RolePostgres) FindByName(ctx context.Context, name string) (*model.Role, error) {
	const q = `SELECT id, name, description FROM roles WHERE name = $1`
	return scanRole(r.db.QueryRowContext(ctx, q, name))
}

// List returns all roles ordered by id.
func (r *RolePostgres) List(ctx context.Context) ([]model.Role, error) {
	const q = `SELECT id, name, description FROM roles ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *role)
	}
	return items, rows.Err()
}

// Update writes the role's name and description.
func (r *RolePostgres) Update(ctx context.Context, role *model.Role) (*model.Role, error) {
	const q = `
		UPDATE roles SET name = $2, description = NULLIF($3, '')
		WHERE id = $1
		RETURNING id, name, COALESCE(description, '')
	`
	return scanRole(r.db.QueryRowContext(ctx, q, role.ID, role.Name, role.Description))
}

// Delete removes a role by id.
func (r *RolePostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM roles WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// CountUsers returns how many users hold the role.
func (r *RolePostgres) CountUsers(ctx context.Context, roleID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE role_id = $1`
	var n int
	err := r.db.QueryRowContext(ctx, q, roleID).Scan(&n)
	return n, err
}

// MatrixPostgres is a PostgreSQL implementation of repository.MatrixRepository.
type MatrixPostgres struct {
	db *sql.DB
}

// NewMatrixPostgres creates a new MatrixPostgres repository.
func NewMatrixPostgres(db *sql.DB) *MatrixPostgres {
	return &MatrixPostgres{db: db}
}

var _ repository.MatrixRepository = (*MatrixPostgres)(nil)

func scanMatrix(row rowScanner) (*model.RoleMatrix, error) {
	var (
		m      model.RoleMatrix
		grants []byte
	)
	if err := row.Scan(&m.ID, &m.RoleID, &grants); err != nil {
		return nil, err
	}
	if len(grants) > 0 {
		if err := json.Unmarshal(grants, &m.Grants); err != nil {
			return nil, err
		}
	}
	if m.Grants == nil {
		m.Grants = map[string][]string{}
	}
	return &m, nil
}

// FindByRoleID fetches the matrix row for an acting role.
func (r *MatrixPostgres) FindByRoleID(ctx context.Context, roleID int64) (*model.RoleMatrix, error) {
	const q = `SELECT id, role_id, grants FROM role_matrix WHERE role_id = $1`
	return scanMatrix(r.db.QueryRowContext(ctx, q, roleID))
}

// List returns all matrix rows.
func (r *MatrixPostgres) List(ctx context.Context) ([]model.RoleMatrix, error) {
	const q = `SELECT id, role_id, grants FROM role_matrix ORDER BY role_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.RoleMatrix, 0)
	for rows.Next() {
		m, err := scanMatrix(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// Upsert inserts or replaces the grants for the given role.
func (r *MatrixPostgres) Upsert(ctx context.Context, m *model.RoleMatrix) (*model.RoleMatrix, error) {
	grants, err := json.Marshal(m.Grants)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO role_matrix (role_id, grants)
		VALUES ($1, $2)
		ON CONFLICT (role_id) DO UPDATE SET grants = EXCLUDED.grants
		RETURNING id, role_id, grants
	`
	return scanMatrix(r.db.QueryRowContext(ctx, q, m.RoleID, grants))
}

// SettingPostgres is a PostgreSQL implementation of repository.SettingRepository.
type SettingPostgres struct {
	db *sql.DB
}

// NewSettingPostgres creates a new SettingPostgres repository.
func NewSettingPostgres(db *sql.DB) *SettingPostgres {
	return &SettingPostgres{db: db}
}

var _ repository.SettingRepository = (*SettingPostgres)(nil)

func scanSetting(row rowScanner) (*model.RoleSetting, error) {
	var (
		s   model.RoleSetting
		ids []byte
	)
	if err := row.Scan(&s.ID, &s.Kind, &ids); err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		if err := json.Unmarshal(ids, &s.RoleIDs); err != nil {
			return nil, err
		}
	}
	if s.RoleIDs == nil {
		s.RoleIDs = []int64{}
	}
	return &s, nil
}

// FindByKind fetches the setting row for a kind.
func (r *SettingPostgres) FindByKind(ctx context.Context, kind string) (*model.RoleSetting, error) {
	const q = `SELECT id, kind, role_ids FROM role_settings WHERE kind = $1`
	return scanSetting(r.db.QueryRowContext(ctx, q, kind))
}

// Upsert inserts or replaces the role id list for a kind.
func (r *SettingPostgres) Upsert(ctx context.Context, s *model.RoleSetting) (*model.RoleSetting, error) {
	ids, err := json.Marshal(s.RoleIDs)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO role_settings (kind, role_ids)
		VALUES ($1, $2)
		ON CONFLICT (kind) DO UPDATE SET role_ids = EXCLUDED.role_ids
		RETURNING id, kind, role_ids
	`
	return scanSetting(r.db.QueryRowContext(ctx, q, s.Kind, ids))
}
