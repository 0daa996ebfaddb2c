package postgres

import (
	"context"
	"database/sql"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// StudentProfilePostgres is a PostgreSQL implementation of repository.StudentProfileRepository.
type StudentProfilePostgres struct {
	db *sql.DB
}

// NewStudentProfilePostgres creates a new StudentProfilePostgres repository.
func NewStudentProfilePostgres(db *sql.DB) *StudentProfilePostgres {
	return &StudentProfilePostgres{db: db}
}

var _ repository.StudentProfileRepository = (*StudentProfilePostgres)(nil)

const profileColumns = `id, user_id, student_id, department, phone_number, address, created_at, updated_at`

func scanProfile(row rowScanner) (*model.StudentProfile, error) {
	var (
		p                    model.StudentProfile
		dept, phone, address sql.NullString
		updatedAt            sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.StudentID, &dept, &phone, &address, &p.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Department = dept.String
	p.PhoneNumber = phone.String
	p.Address = address.String
	if updatedAt.Valid {
		t := updatedAt.Time
		p.UpdatedAt = &t
	}
	return &p, nil
}

// Create inserts a new profile row and returns the stored record.
func (r *StudentProfilePostgres) Create(ctx context.Context, p *model.StudentProfile) (*model.StudentProfile, error) {
	const q = `
		INSERT INTO student_profiles (user_id, student_id, department, phone_number, address)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRowContext(ctx, q, p.UserID, p.StudentID, p.Department, p.PhoneNumber, p.Address))
}

// FindByID fetches a single profile by its ID.
func (r *StudentProfilePostgres) FindByID(ctx context.Context, id int64) (*model.StudentProfile, error) {
	const q = `SELECT ` + profileColumns + ` FROM student_profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, q, id))
}

// FindByUserID fetches the profile owned by a user, if any.
func (r *StudentProfilePostgres) FindByUserID(ctx context.Context, userID int64) (*model.StudentProfile, error) {
	const q = `SELECT ` + profileColumns + ` FROM student_profiles WHERE user_id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, q, userID))
}

// List returns profiles using LIMIT/OFFSET pagination and a total count.
func (r *StudentProfilePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.StudentProfile], error) {
	const qCount = `SELECT COUNT(*) FROM student_profiles`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + profileColumns + `
		FROM student_profiles
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.StudentProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.StudentProfile]{Items: items, Total: total}, nil
}

// Update writes all mutable columns and stamps updated_at.
func (r *StudentProfilePostgres) Update(ctx context.Context, p *model.StudentProfile) (*model.StudentProfile, error) {
	const q = `
		UPDATE student_profiles SET
			department = NULLIF($2, ''), phone_number = NULLIF($3, ''),
			address = NULLIF($4, ''), updated_at = now()
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRowContext(ctx, q, p.ID, p.Department, p.PhoneNumber, p.Address))
}

// Delete removes a profile by ID. It does not return an error if the row does not exist.
func (r *StudentProfilePostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM student_profiles WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
