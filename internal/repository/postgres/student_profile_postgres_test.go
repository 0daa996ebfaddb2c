package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"schoolapi/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "student_id", "department",
		"phone_number", "address", "created_at", "updated_at"})
}

func TestStudentProfilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewStudentProfilePostgres(db)

	p := &model.StudentProfile{UserID: 4, StudentID: "S-100", Department: "CS"}

	mock.ExpectQuery("INSERT INTO student_profiles").
		WithArgs(p.UserID, p.StudentID, p.Department, "", "").
		WillReturnRows(profileRows().AddRow(1, 4, "S-100", "CS", nil, nil, time.Now(), nil))

	stored, err := repo.Create(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID)
}

func TestStudentProfilePostgres_FindByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewStudentProfilePostgres(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM student_profiles WHERE user_id").
			WithArgs(int64(4)).
			WillReturnRows(profileRows().AddRow(1, 4, "S-100", "CS", "555", nil, time.Now(), nil))

		p, err := repo.FindByUserID(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, "S-100", p.StudentID)
		assert.Equal(t, "555", p.PhoneNumber)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM student_profiles WHERE user_id").
			WithArgs(int64(5)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByUserID(context.Background(), 5)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestStudentProfilePostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewStudentProfilePostgres(db)

	p := &model.StudentProfile{ID: 1, UserID: 4, StudentID: "S-100", Department: "Math"}

	mock.ExpectQuery("UPDATE student_profiles SET").
		WithArgs(p.ID, p.Department, "", "").
		WillReturnRows(profileRows().AddRow(1, 4, "S-100", "Math", nil, nil, time.Now(), time.Now()))

	stored, err := repo.Update(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, "Math", stored.Department)
	assert.NotNil(t, stored.UpdatedAt)
}
