// Package adminmeta exposes a static description of the managed models so
// admin frontends can render list and form views without hardcoding fields.
package adminmeta

// Field describes a single model attribute.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	ReadOnly bool   `json:"read_only"`
}

// Model describes how an admin UI should present one resource.
type Model struct {
	Name         string   `json:"name"`
	Endpoint     string   `json:"endpoint"`
	Fields       []Field  `json:"fields"`
	ListDisplay  []string `json:"list_display"`
	SearchFields []string `json:"search_fields"`
	FilterFields []string `json:"filter_fields"`
	Ordering     []string `json:"ordering"`
}

// Registry returns the metadata for every managed model. The slice is rebuilt
// on each call so callers may not mutate shared state.
func Registry() []Model {
	return []Model{
		{
			Name:     "users",
			Endpoint: "/api/users",
			Fields: []Field{
				{Name: "id", Type: "integer", ReadOnly: true},
				{Name: "email", Type: "string", Required: true},
				{Name: "username", Type: "string", Required: true},
				{Name: "first_name", Type: "string"},
				{Name: "last_name", Type: "string"},
				{Name: "role_id", Type: "integer", Required: true},
				{Name: "is_active", Type: "boolean"},
				{Name: "is_verified", Type: "boolean", ReadOnly: true},
				{Name: "created_at", Type: "datetime", ReadOnly: true},
			},
			ListDisplay:  []string{"id", "email", "username", "role_id", "is_active"},
			SearchFields: []string{"email", "username", "first_name", "last_name"},
			FilterFields: []string{"role_id", "is_active", "is_verified"},
			Ordering:     []string{"-created_at"},
		},
		{
			Name:     "courses",
			Endpoint: "/api/courses",
			Fields: []Field{
				{Name: "id", Type: "integer", ReadOnly: true},
				{Name: "code", Type: "string", Required: true},
				{Name: "title", Type: "string", Required: true},
				{Name: "description", Type: "text"},
				{Name: "credits", Type: "number"},
				{Name: "teacher_id", Type: "integer", Required: true},
				{Name: "created_at", Type: "datetime", ReadOnly: true},
			},
			ListDisplay:  []string{"id", "code", "title", "credits", "teacher_id"},
			SearchFields: []string{"code", "title", "description"},
			FilterFields: []string{"teacher_id"},
			Ordering:     []string{"-created_at"},
		},
		{
			Name:     "student_profiles",
			Endpoint: "/api/student-profiles",
			Fields: []Field{
				{Name: "id", Type: "integer", ReadOnly: true},
				{Name: "user_id", Type: "integer", Required: true},
				{Name: "student_id", Type: "string", Required: true},
				{Name: "department", Type: "string"},
				{Name: "phone_number", Type: "string"},
				{Name: "address", Type: "text"},
				{Name: "created_at", Type: "datetime", ReadOnly: true},
			},
			ListDisplay:  []string{"id", "user_id", "student_id", "department"},
			SearchFields: []string{"student_id", "department", "phone_number"},
			FilterFields: []string{"user_id"},
			Ordering:     []string{"id"},
		},
		{
			Name:     "roles",
			Endpoint: "/api/rbac/roles",
			Fields: []Field{
				{Name: "id", Type: "integer", ReadOnly: true},
				{Name: "name", Type: "string", Required: true},
				{Name: "description", Type: "string"},
			},
			ListDisplay:  []string{"id", "name"},
			SearchFields: []string{"name"},
			FilterFields: nil,
			Ordering:     []string{"id"},
		},
	}
}
