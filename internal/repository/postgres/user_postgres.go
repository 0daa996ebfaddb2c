package postgres

import (
	"context"
	"database/sql"
	"time"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `
	u.id, u.email, u.username, u.hashed_password, u.first_name, u.last_name,
	u.role_id, u.is_active, u.is_verified, u.verification_token, u.avatar_path,
	u.created_at, u.updated_at, r.id, r.name, r.description`

const userFrom = ` FROM users u LEFT JOIN roles r ON r.id = u.role_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u                   model.User
		firstName, lastName sql.NullString
		roleID              sql.NullInt64
		verifToken, avatar  sql.NullString
		updatedAt           sql.NullTime
		rID                 sql.NullInt64
		rName, rDescription sql.NullString
	)
	if err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.HashedPassword, &firstName, &lastName,
		&roleID, &u.IsActive, &u.IsVerified, &verifToken, &avatar,
		&u.CreatedAt, &updatedAt, &rID, &rName, &rDescription,
	); err != nil {
		return nil, err
	}
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.RoleID = roleID.Int64
	u.VerificationToken = verifToken.String
	u.AvatarPath = avatar.String
	if updatedAt.Valid {
		t := updatedAt.Time
		u.UpdatedAt = &t
	}
	if rID.Valid {
		u.Role = &model.Role{ID: rID.Int64, Name: rName.String, Description: rDescription.String}
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (email, username, hashed_password, first_name, last_name,
			role_id, is_active, is_verified, verification_token, avatar_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''))
		RETURNING id, created_at
	`
	out := *u
	err := r.db.QueryRowContext(ctx, q,
		u.Email, u.Username, u.HashedPassword, u.FirstName, u.LastName,
		u.RoleID, u.IsActive, u.IsVerified, u.VerificationToken, u.AvatarPath,
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserPostgres) findOne(ctx context.Context, where string, arg any) (*model.User, error) {
	q := `SELECT` + userColumns + userFrom + ` WHERE ` + where
	return scanUser(r.db.QueryRowContext(ctx, q, arg))
}

// FindByID fetches a single user with its role joined in.
func (r *UserPostgres) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, `u.id = $1`, id)
}

// FindByEmail fetches a user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, `u.email = $1`, email)
}

// FindByUsername fetches a user by username.
func (r *UserPostgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, `u.username = $1`, username)
}

// FindByVerificationToken fetches a user by its pending verification or reset code.
func (r *UserPostgres) FindByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.findOne(ctx, `u.verification_token = $1`, token)
}

// List returns users using LIMIT/OFFSET pagination and a total count.
// A non-empty roleIDs set restricts both the page and the count.
func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery, roleIDs []int64) (*repository.PageResult[model.User], error) {
	qCount := `SELECT COUNT(*) FROM users u`
	qList := `SELECT` + userColumns + userFrom
	args := []any{}
	if len(roleIDs) > 0 {
		// role_ids are bound as a Postgres array to keep the query parameterized
		qCount += ` WHERE u.role_id = ANY($1::bigint[])`
		qList += ` WHERE u.role_id = ANY($1::bigint[])`
		args = append(args, int64Array(roleIDs))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList += ` ORDER BY u.created_at DESC, u.id DESC`
	n := len(args)
	qList += ` LIMIT $` + itoa(n+1) + ` OFFSET $` + itoa(n+2)
	args = append(args, pq.Limit, pq.Offset)

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

// Update writes all mutable columns and stamps updated_at.
func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		UPDATE users SET
			email = $2, username = $3, hashed_password = $4, first_name = $5,
			last_name = $6, role_id = $7, is_active = $8, is_verified = $9,
			verification_token = NULLIF($10, ''), avatar_path = NULLIF($11, ''),
			updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	out := *u
	var updatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.Username, u.HashedPassword, u.FirstName, u.LastName,
		u.RoleID, u.IsActive, u.IsVerified, u.VerificationToken, u.AvatarPath,
	).Scan(&out.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		out.UpdatedAt = &t
	}
	return &out, nil
}

// Delete removes a user by ID. It does not return an error if the row does not exist.
func (r *UserPostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// Stats returns the dashboard counters in a single round trip.
func (r *UserPostgres) Stats(ctx context.Context, newSince time.Time) (*repository.UserStats, error) {
	const q = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE is_verified),
			COUNT(*) FILTER (WHERE created_at >= $1)
		FROM users
	`
	var s repository.UserStats
	if err := r.db.QueryRowContext(ctx, q, newSince).Scan(&s.Total, &s.Active, &s.Verified, &s.NewSince); err != nil {
		return nil, err
	}
	return &s, nil
}
