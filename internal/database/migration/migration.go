package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_roles",
		SQL: `CREATE TABLE IF NOT EXISTS roles (
  id          BIGSERIAL PRIMARY KEY,
  name        TEXT      NOT NULL UNIQUE,
  description TEXT
);`,
	},
	{
		Name: "create_table_permissions",
		SQL: `CREATE TABLE IF NOT EXISTS permissions (
  id          BIGSERIAL PRIMARY KEY,
  name        TEXT      NOT NULL UNIQUE,
  description TEXT
);`,
	},
	{
		Name: "create_table_role_permissions",
		SQL: `CREATE TABLE IF NOT EXISTS role_permissions (
  role_id       BIGINT NOT NULL REFERENCES roles (id) ON DELETE CASCADE,
  permission_id BIGINT NOT NULL REFERENCES permissions (id) ON DELETE CASCADE,
  PRIMARY KEY (role_id, permission_id)
);`,
	},
	{
		Name: "create_table_role_matrix",
		SQL: `CREATE TABLE IF NOT EXISTS role_matrix (
  id      BIGSERIAL PRIMARY KEY,
  role_id BIGINT    NOT NULL UNIQUE REFERENCES roles (id) ON DELETE CASCADE,
  grants  JSONB     NOT NULL DEFAULT '{}'::jsonb
);`,
	},
	{
		Name: "create_table_role_settings",
		SQL: `CREATE TABLE IF NOT EXISTS role_settings (
  id       BIGSERIAL PRIMARY KEY,
  kind     TEXT      NOT NULL UNIQUE,
  role_ids JSONB     NOT NULL DEFAULT '[]'::jsonb
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                 BIGSERIAL   PRIMARY KEY,
  email              TEXT        NOT NULL UNIQUE,
  username           TEXT        NOT NULL UNIQUE,
  hashed_password    TEXT        NOT NULL,
  first_name         TEXT,
  last_name          TEXT,
  role_id            BIGINT      REFERENCES roles (id),
  is_active          BOOLEAN     NOT NULL DEFAULT TRUE,
  is_verified        BOOLEAN     NOT NULL DEFAULT FALSE,
  verification_token TEXT,
  avatar_path        TEXT,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_users_email",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_email ON users (email);`,
	},
	{
		Name: "create_index_users_role_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_role_id ON users (role_id);`,
	},
	{
		Name: "create_index_users_verification_token",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_verification_token ON users (verification_token);`,
	},
	{
		Name: "create_table_courses",
		SQL: `CREATE TABLE IF NOT EXISTS courses (
  id          BIGSERIAL        PRIMARY KEY,
  code        TEXT             NOT NULL UNIQUE,
  title       TEXT             NOT NULL,
  description TEXT,
  credits     DOUBLE PRECISION NOT NULL DEFAULT 0,
  teacher_id  BIGINT           REFERENCES users (id),
  created_at  TIMESTAMPTZ      NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_courses_title",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_courses_title ON courses (title);`,
	},
	{
		Name: "create_table_student_profiles",
		SQL: `CREATE TABLE IF NOT EXISTS student_profiles (
  id           BIGSERIAL   PRIMARY KEY,
  user_id      BIGINT      NOT NULL UNIQUE REFERENCES users (id) ON DELETE CASCADE,
  student_id   TEXT        NOT NULL UNIQUE,
  department   TEXT,
  phone_number TEXT,
  address      TEXT,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_audit_logs",
		SQL: `CREATE TABLE IF NOT EXISTS audit_logs (
  id            BIGSERIAL   PRIMARY KEY,
  user_id       BIGINT      REFERENCES users (id) ON DELETE SET NULL,
  action        TEXT        NOT NULL,
  resource_type TEXT        NOT NULL,
  resource_id   BIGINT,
  changes       JSONB,
  ip_address    TEXT,
  user_agent    TEXT,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_audit_logs_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at);`,
	},
}

// EnsureMigrated checks if the 'users' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.users') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
