package model

// Permission is a named capability from the seeded catalog, e.g. "view_courses".
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
