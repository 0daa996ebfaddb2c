package model

import "time"

// Course is a taught unit owned by a teacher user.
type Course struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Credits     float64    `json:"credits"`
	TeacherID   int64      `json:"teacher_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
