package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileshare/internal/model"
	"fileshare/internal/repository"
)

var fileCols = []string{"id", "file_id", "owner_id", "name", "blob_key", "size", "content_type", "created_at"}

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	f := &model.File{
		ID:          "uuid-1",
		FileID:      "0123456789",
		OwnerID:     "owner-1",
		Name:        "report.pdf",
		BlobKey:     "uploads/owner-1/uuid-1.pdf",
		Size:        1024,
		ContentType: "application/pdf",
		CreatedAt:   now,
	}

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(fileCols).
			AddRow(f.ID, f.FileID, f.OwnerID, f.Name, f.BlobKey, f.Size, f.ContentType, f.CreatedAt)
		mock.ExpectQuery("INSERT INTO files").
			WithArgs(f.ID, f.FileID, f.OwnerID, f.Name, f.BlobKey, f.Size, f.ContentType, f.CreatedAt).
			WillReturnRows(rows)

		got, err := repo.Create(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, f.FileID, got.FileID)
		assert.Equal(t, f.OwnerID, got.OwnerID)
	})

	t.Run("duplicate file id", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO files").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "files_file_id_key"})

		got, err := repo.Create(ctx, f)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, got)
	})

	t.Run("other error is wrapped", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO files").WillReturnError(errors.New("boom"))

		_, err := repo.Create(ctx, f)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrDuplicate)
		assert.Contains(t, err.Error(), "insert file: boom")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_FindByFileID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(fileCols).
			AddRow("id-1", "abcdef0123", "owner", "a.pdf", "k", 10, "application/pdf", time.Now())
		mock.ExpectQuery("SELECT (.+) FROM files WHERE file_id = ").
			WithArgs("abcdef0123").
			WillReturnRows(rows)

		f, err := repo.FindByFileID(ctx, "abcdef0123")
		require.NoError(t, err)
		assert.Equal(t, "id-1", f.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE file_id = ").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByFileID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, f)
	})
}

func TestFilePostgres_UpdateName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(fileCols).
		AddRow("id-1", "abcdef0123", "owner", "renamed.pdf", "k", 10, "application/pdf", time.Now())
	mock.ExpectQuery("UPDATE files SET name").
		WithArgs("id-1", "renamed.pdf").
		WillReturnRows(rows)

	f, err := repo.UpdateName(ctx, "id-1", "renamed.pdf")
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", f.Name)

	mock.ExpectQuery("UPDATE files SET name").
		WithArgs("gone", "x").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.UpdateName(ctx, "gone", "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM files WHERE id = ").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "id-1"))

	mock.ExpectExec("DELETE FROM files WHERE id = ").
		WithArgs("id-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "id-2"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_WithFileLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := NewFilePostgres(db)
	accesses := NewAccessPostgres(db)
	ctx := context.Background()

	deleteFileAndGrants := func(id string) error {
		return files.WithFileLock(ctx, id, func(ctx context.Context) error {
			if err := accesses.DeleteByFile(ctx, id); err != nil {
				return err
			}
			return files.Delete(ctx, id)
		})
	}

	t.Run("grants and record removed in one transaction under the row lock", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM files WHERE id = (.+) FOR UPDATE").
			WithArgs("file-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("file-1"))
		mock.ExpectExec("DELETE FROM file_accesses WHERE file_id = ").
			WithArgs("file-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM files WHERE id = ").
			WithArgs("file-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, deleteFileAndGrants("file-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("record delete failure rolls back the grant purge", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM files WHERE id = (.+) FOR UPDATE").
			WithArgs("file-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("file-1"))
		mock.ExpectExec("DELETE FROM file_accesses WHERE file_id = ").
			WithArgs("file-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM files WHERE id = ").
			WithArgs("file-1").
			WillReturnError(errors.New("fk violation"))
		mock.ExpectRollback()

		assert.ErrorContains(t, deleteFileAndGrants("file-1"), "fk violation")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing file", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM files WHERE id = (.+) FOR UPDATE").
			WithArgs("gone").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		called := false
		err := files.WithFileLock(ctx, "gone", func(context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.False(t, called)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFilePostgres_Lists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("owned", func(t *testing.T) {
		rows := sqlmock.NewRows(fileCols).
			AddRow("id-1", "aaaaaaaaaa", "owner", "a.pdf", "k1", 1, "application/pdf", time.Now()).
			AddRow("id-2", "bbbbbbbbbb", "owner", "b.png", "k2", 2, "image/png", time.Now())
		mock.ExpectQuery("SELECT (.+) FROM files WHERE owner_id = ").
			WithArgs("owner").
			WillReturnRows(rows)

		items, err := repo.ListByOwner(ctx, "owner")
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("not owned", func(t *testing.T) {
		rows := sqlmock.NewRows(fileCols).
			AddRow("id-3", "cccccccccc", "someone", "c.zip", "k3", 3, "application/zip", time.Now())
		mock.ExpectQuery("SELECT (.+) FROM files WHERE owner_id <> ").
			WithArgs("owner").
			WillReturnRows(rows)

		items, err := repo.ListNotOwnedBy(ctx, "owner")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "someone", items[0].OwnerID)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE owner_id = ").
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(fileCols))

		items, err := repo.ListByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
