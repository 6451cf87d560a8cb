package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fileshare/internal/applog"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step, so its presence means the schema is complete.
const sentinelTable = "public.revoked_tokens"

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY,
  email         TEXT        NOT NULL,
  first_name    TEXT        NOT NULL,
  last_name     TEXT        NOT NULL,
  password_hash TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT users_email_key UNIQUE (email)
);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id           UUID        PRIMARY KEY,
  file_id      VARCHAR(10) NOT NULL,
  owner_id     UUID        NOT NULL REFERENCES users (id),
  name         TEXT        NOT NULL,
  blob_key     TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT files_file_id_key UNIQUE (file_id)
);`,
	},
	{
		Name: "create_index_files_owner_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_owner_created_at ON files (owner_id, created_at DESC);`,
	},
	{
		// no ON DELETE CASCADE: grants are purged explicitly before a file row is removed
		Name: "create_table_file_accesses",
		SQL: `CREATE TABLE IF NOT EXISTS file_accesses (
  id         UUID        PRIMARY KEY,
  file_id    UUID        NOT NULL REFERENCES files (id),
  user_id    UUID        NOT NULL REFERENCES users (id),
  type       TEXT        NOT NULL DEFAULT 'co-author',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT file_accesses_file_user_key UNIQUE (file_id, user_id)
);`,
	},
	{
		Name: "create_index_file_accesses_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_file_accesses_user ON file_accesses (user_id);`,
	},
	{
		Name: "create_table_revoked_tokens",
		SQL: `CREATE TABLE IF NOT EXISTS revoked_tokens (
  token_id   TEXT        PRIMARY KEY,
  expires_at TIMESTAMPTZ NOT NULL,
  revoked_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_revoked_tokens_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_revoked_tokens_expires_at ON revoked_tokens (expires_at);`,
	},
}

// EnsureMigrated runs every step unless the sentinel table already exists.
// Steps are idempotent, so a partially applied schema is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()
	logEvent := func(event, status string, fields map[string]any) {
		entry := map[string]any{
			"component": "database",
			"event":     event,
			"status":    status,
			"db_host":   dbHost,
		}
		for k, v := range fields {
			entry[k] = v
		}
		applog.Write(loc, entry)
	}

	logEvent("db_migration_check", "starting", nil)

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists); err != nil {
		logEvent("db_migration_failed", "error", map[string]any{
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logEvent("db_migration_skip", "success", map[string]any{
			"msg":         "schema already exists, skipping migration",
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logEvent("db_migration_start", "in_progress", map[string]any{"steps": len(steps)})

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logEvent("db_migration_failed", "error", map[string]any{
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		logEvent("db_migration_step", "success", map[string]any{
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logEvent("db_migration_success", "success", map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
