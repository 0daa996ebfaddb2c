package model

import "time"

// StudentProfile extends a user account with student registry data.
// Each user has at most one profile.
type StudentProfile struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	StudentID   string     `json:"student_id"`
	Department  string     `json:"department,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Address     string     `json:"address,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
