package postgres

import (
	"context"
	"database/sql"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// CoursePostgres is a PostgreSQL implementation of repository.CourseRepository.
type CoursePostgres struct {
	db *sql.DB
}

// NewCoursePostgres creates a new CoursePostgres repository.
func NewCoursePostgres(db *sql.DB) *CoursePostgres {
	return &CoursePostgres{db: db}
}

var _ repository.CourseRepository = (*CoursePostgres)(nil)

const courseColumns = `id, code, title, description, credits, teacher_id, created_at, updated_at`

func scanCourse(row rowScanner) (*model.Course, error) {
	var (
		c         model.Course
		desc      sql.NullString
		teacherID sql.NullInt64
		updatedAt sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Code, &c.Title, &desc, &c.Credits, &teacherID, &c.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Description = desc.String
	c.TeacherID = teacherID.Int64
	if updatedAt.Valid {
		t := updatedAt.Time
		c.UpdatedAt = &t
	}
	return &c, nil
}

// Create inserts a new course row and returns the stored record.
func (r *CoursePostgres) Create(ctx context.Context, c *model.Course) (*model.Course, error) {
	const q = `
		INSERT INTO courses (code, title, description, credits, teacher_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, 0))
		RETURNING ` + courseColumns
	return scanCourse(r.db.QueryRowContext(ctx, q, c.Code, c.Title, c.Description, c.Credits, c.TeacherID))
}

// FindByID fetches a single course by its ID.
func (r *CoursePostgres) FindByID(ctx context.Context, id int64) (*model.Course, error) {
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.db.QueryRowContext(ctx, q, id))
}

// FindByCode fetches a single course by its unique code.
func (r *CoursePostgres) FindByCode(ctx context.Context, code string) (*model.Course, error) {
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE code = $1`
	return scanCourse(r.db.QueryRowContext(ctx, q, code))
}

// List returns courses using LIMIT/OFFSET pagination and a total count.
func (r *CoursePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Course], error) {
	const qCount = `SELECT COUNT(*) FROM courses`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Course]{Items: items, Total: total}, nil
}

// Update writes all mutable columns and stamps updated_at.
func (r *CoursePostgres) Update(ctx context.Context, c *model.Course) (*model.Course, error) {
	const q = `
		UPDATE courses SET
			code = $2, title = $3, description = NULLIF($4, ''), credits = $5,
			teacher_id = NULLIF($6, 0), updated_at = now()
		WHERE id = $1
		RETURNING ` + courseColumns
	return scanCourse(r.db.QueryRowContext(ctx, q, c.ID, c.Code, c.Title, c.Description, c.Credits, c.TeacherID))
}

// Delete removes a course by ID. It does not return an error if the row does not exist.
func (r *CoursePostgres) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM courses WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
