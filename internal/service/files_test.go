package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"fileshare/internal/metrics"
	"fileshare/internal/model"
	"fileshare/internal/repository"
	repoMocks "fileshare/internal/repository/mocks"
	"fileshare/internal/storage"
	storeMocks "fileshare/internal/storage/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

var testFileOptions = FileOptions{
	MaxBytes:     2 * mib,
	AllowedTypes: []string{"doc", "pdf", "docx", "zip", "jpeg", "jpg", "png"},
}

var (
	alice = &model.User{ID: "u-alice", Email: "alice@example.com", FirstName: "Alice", LastName: "A"}
	bob   = &model.User{ID: "u-bob", Email: "bob@example.com", FirstName: "Bob", LastName: "B"}
)

func storedAs(key string) func(context.Context, string, io.Reader, storage.PutObjectOptions) storage.ObjectInfo {
	return func(_ context.Context, k string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
		if key != "" {
			k = key
		}
		return storage.ObjectInfo{Key: k, Size: opt.Size, ContentType: opt.ContentType}
	}
}

func echoFile(_ context.Context, f *model.File) *model.File {
	cp := *f
	return &cp
}

func TestFileService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		upload     Upload
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository)
		wantFields []string
		wantErrMsg string
		check      func(t *testing.T, f *model.File)
	}{
		{
			name:   "1 MiB pdf accepted",
			upload: Upload{Filename: "report.pdf", ContentType: "application/pdf", Size: 1 * mib, Body: strings.NewReader("%PDF")},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "uploads/u-alice/") && strings.HasSuffix(key, ".pdf")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.Size == 1*mib && opt.ContentType == "application/pdf" &&
						opt.Metadata["original-filename"] == "report.pdf"
				})).Return(storedAs(""), nil)
				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(f *model.File) bool {
					return f.FileID == ShortID("report.pdf", "")
				})).Return(echoFile, nil)
			},
			check: func(t *testing.T, f *model.File) {
				assert.Equal(t, "u-alice", f.OwnerID)
				assert.Equal(t, "report.pdf", f.Name)
				assert.Equal(t, ShortID("report.pdf", ""), f.FileID)
				assert.Len(t, f.FileID, ShortIDLength)
				assert.NotEmpty(t, f.ID)
			},
		},
		{
			name:   "upper case extension accepted and content type guessed",
			upload: Upload{Filename: "PHOTO.PNG", ContentType: "application/octet-stream", Size: 10, Body: strings.NewReader("png")},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.ContentType == "image/png"
				})).Return(storedAs(""), nil)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(echoFile, nil)
			},
			check: func(t *testing.T, f *model.File) {
				assert.Equal(t, "image/png", f.ContentType)
			},
		},
		{
			name:       "3 MiB file rejected before storing",
			upload:     Upload{Filename: "big.zip", Size: 3 * mib, Body: strings.NewReader("x")},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockFileRepository) {},
			wantFields: []string{"size"},
		},
		{
			name:       "500 KiB exe rejected",
			upload:     Upload{Filename: "setup.exe", Size: 500 * 1024, Body: strings.NewReader("MZ")},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockFileRepository) {},
			wantFields: []string{"type"},
		},
		{
			name:       "oversized and wrong type reports both fields",
			upload:     Upload{Filename: "movie.mp4", Size: 3 * mib, Body: strings.NewReader("x")},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockFileRepository) {},
			wantFields: []string{"size", "type"},
		},
		{
			name:       "name without extension rejected",
			upload:     Upload{Filename: "README", Size: 10, Body: strings.NewReader("x")},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockFileRepository) {},
			wantFields: []string{"type"},
		},
		{
			name:       "nil body",
			upload:     Upload{Filename: "a.pdf", Size: 10},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockFileRepository) {},
			wantFields: []string{"file"},
		},
		{
			name:   "storage error",
			upload: Upload{Filename: "a.pdf", Size: 5, Body: strings.NewReader("hello")},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:   "short id collision retries with salt",
			upload: Upload{Filename: "a.pdf", Size: 5, Body: strings.NewReader("hello")},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storedAs(""), nil)
				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(f *model.File) bool {
					return f.FileID == ShortID("a.pdf", "")
				})).Return(nil, repository.ErrDuplicate).Once()
				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(f *model.File) bool {
					return f.FileID != ShortID("a.pdf", "")
				})).Return(echoFile, nil).Once()
			},
			check: func(t *testing.T, f *model.File) {
				assert.NotEqual(t, ShortID("a.pdf", ""), f.FileID)
				assert.Regexp(t, "^[0-9a-f]{10}$", f.FileID)
			},
		},
		{
			name:   "short ids exhausted rolls back blob",
			upload: Upload{Filename: "a.pdf", Size: 5, Body: strings.NewReader("hello")},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storedAs(""), nil)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicate).Times(maxShortIDAttempts)
				mStore.On("Delete", mock.Anything, mock.Anything).Return(nil)
			},
			wantErrMsg: ErrShortIDExhausted.Error(),
		},
		{
			name:   "repository error with successful rollback",
			upload: Upload{Filename: "a.pdf", Size: 5, Body: strings.NewReader("hello")},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storedAs("uploads/k.pdf"), nil)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "uploads/u-alice/")
				})).Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:   "repository error with failed rollback",
			upload: Upload{Filename: "a.pdf", Size: 5, Body: strings.NewReader("hello")},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockFileRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storedAs(""), nil)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", mock.Anything, mock.Anything).Return(errors.New("delete fail"))
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockFileRepository)
			svc := NewFileService(mStore, mRepo, testFileOptions, nil)

			tt.setupMocks(mStore, mRepo)

			f, err := svc.Create(ctx, alice, tt.upload)

			switch {
			case len(tt.wantFields) > 0:
				require.Error(t, err)
				assert.Equal(t, KindValidation, KindOf(err))
				e, _ := AsError(err)
				for _, field := range tt.wantFields {
					assert.Contains(t, e.Fields, field)
				}
				mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Equal(t, KindInternal, KindOf(err))
			default:
				require.NoError(t, err)
				require.NotNil(t, f)
				tt.check(t, f)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFileService_Create_Unauthenticated(t *testing.T) {
	svc := NewFileService(new(storeMocks.MockStorage), new(repoMocks.MockFileRepository), testFileOptions, nil)
	_, err := svc.Create(context.Background(), nil, Upload{Filename: "a.pdf", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFileService_Upload_Batch(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockFileRepository)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	svc := NewFileService(mStore, mRepo, testFileOptions, m)

	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storedAs(""), nil)
	mRepo.On("Create", mock.Anything, mock.Anything).Return(echoFile, nil)

	results, err := svc.Upload(ctx, alice, []Upload{
		{Filename: "ok.pdf", Size: 10, Body: strings.NewReader("x")},
		{Filename: "bad.exe", Size: 10, Body: strings.NewReader("x")},
		{Filename: "ok.png", Size: 10, Body: strings.NewReader("x")},
	})

	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	e, _ := AsError(err)
	assert.Contains(t, e.Fields, "bad.exe")
	assert.NotContains(t, e.Fields, "ok.pdf")

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.NotNil(t, results[0].File)
	assert.False(t, results[1].Success)
	assert.Equal(t, "bad.exe", results[1].Name)
	assert.Contains(t, results[1].Fields, "type")
	assert.True(t, results[2].Success)

	// successful items are not rolled back
	mRepo.AssertNumberOfCalls(t, "Create", 2)
	mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	expected := `
# HELP fileshare_uploads_total Uploaded files by outcome.
# TYPE fileshare_uploads_total counter
fileshare_uploads_total{result="rejected"} 1
fileshare_uploads_total{result="stored"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fileshare_uploads_total"))
}

func TestFileService_Upload_AllSucceed(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockFileRepository)
	svc := NewFileService(mStore, mRepo, testFileOptions, nil)

	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storedAs(""), nil)
	mRepo.On("Create", mock.Anything, mock.Anything).Return(echoFile, nil)

	results, err := svc.Upload(context.Background(), alice, []Upload{
		{Filename: "one.doc", Size: 1, Body: strings.NewReader("x")},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Success", results[0].Message)
}

func TestFileService_Upload_InternalErrorMessage(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockFileRepository)
	svc := NewFileService(mStore, mRepo, testFileOptions, nil)

	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("minio down"))

	results, err := svc.Upload(context.Background(), alice, []Upload{
		{Filename: "one.doc", Size: 1, Body: strings.NewReader("x")},
	})
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "File could not be stored", results[0].Message)
	assert.NotContains(t, err.Error(), "minio down")
}

func TestFileService_Upload_Empty(t *testing.T) {
	svc := NewFileService(new(storeMocks.MockStorage), new(repoMocks.MockFileRepository), testFileOptions, nil)

	_, err := svc.Upload(context.Background(), alice, nil)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Upload(context.Background(), nil, []Upload{{Filename: "a.pdf"}})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func aliceFile() *model.File {
	return &model.File{ID: "f-1", FileID: "abcdef0123", OwnerID: alice.ID, Name: "report.pdf", BlobKey: "uploads/u-alice/x.pdf"}
}

func TestFileService_Rename(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		actor      *model.User
		newName    string
		setupMocks func(mRepo *repoMocks.MockFileRepository)
		wantErr    error
		wantName   string
	}{
		{
			name:    "owner renames",
			actor:   alice,
			newName: "  final.pdf ",
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
				renamed := aliceFile()
				renamed.Name = "final.pdf"
				mRepo.On("UpdateName", mock.Anything, "f-1", "final.pdf").Return(renamed, nil)
			},
			wantName: "final.pdf",
		},
		{
			name:    "empty name leaves stored name unchanged",
			actor:   alice,
			newName: "   ",
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
			},
			wantErr: ErrEmptyName,
		},
		{
			name:    "non owner forbidden",
			actor:   bob,
			newName: "mine.pdf",
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
			},
			wantErr: ErrNotOwner,
		},
		{
			name:    "missing file",
			actor:   alice,
			newName: "x.pdf",
			setupMocks: func(mRepo *repoMocks.MockFileRepository) {
				mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrFileNotFound,
		},
		{
			name:       "unauthenticated",
			newName:    "x.pdf",
			setupMocks: func(*repoMocks.MockFileRepository) {},
			wantErr:    ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockFileRepository)
			svc := NewFileService(new(storeMocks.MockStorage), mRepo, testFileOptions, nil)
			tt.setupMocks(mRepo)

			f, err := svc.Rename(ctx, "abcdef0123", tt.actor, tt.newName)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mRepo.AssertNotCalled(t, "UpdateName", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, f.Name)
				assert.Equal(t, alice.ID, f.OwnerID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner delete purges grants and record under the file lock then removes blob", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		var order []string
		hook := func(_ context.Context, f *model.File) error {
			assert.Equal(t, "f-1", f.ID)
			order = append(order, "hook")
			return nil
		}
		svc := NewFileService(mStore, mRepo, testFileOptions, nil, hook)

		mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
		mRepo.On("WithFileLock", mock.Anything, "f-1").Run(func(mock.Arguments) {
			order = append(order, "lock")
		}).Return(nil)
		mRepo.On("Delete", mock.Anything, "f-1").Run(func(mock.Arguments) {
			order = append(order, "record")
		}).Return(nil)
		mStore.On("Delete", mock.Anything, "uploads/u-alice/x.pdf").Run(func(mock.Arguments) {
			order = append(order, "blob")
		}).Return(nil)

		require.NoError(t, svc.Delete(ctx, "abcdef0123", alice))
		assert.Equal(t, []string{"lock", "hook", "record", "blob"}, order)
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("hook failure aborts before record and blob", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testFileOptions, nil, func(context.Context, *model.File) error {
			return errors.New("purge failed")
		})
		mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
		mRepo.On("WithFileLock", mock.Anything, "f-1").Return(nil)

		err := svc.Delete(ctx, "abcdef0123", alice)
		assert.ErrorContains(t, err, "purge failed")
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		mRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("non owner forbidden", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		hookCalled := false
		svc := NewFileService(new(storeMocks.MockStorage), mRepo, testFileOptions, nil, func(context.Context, *model.File) error {
			hookCalled = true
			return nil
		})
		mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)

		assert.ErrorIs(t, svc.Delete(ctx, "abcdef0123", bob), ErrNotOwner)
		assert.False(t, hookCalled)
		mRepo.AssertNotCalled(t, "WithFileLock", mock.Anything, mock.Anything)
	})

	t.Run("missing file", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(new(storeMocks.MockStorage), mRepo, testFileOptions, nil)
		mRepo.On("FindByFileID", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, "nope", alice), ErrFileNotFound)
	})

	t.Run("file removed concurrently before the lock", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testFileOptions, nil)
		mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
		mRepo.On("WithFileLock", mock.Anything, "f-1").Return(repository.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, "abcdef0123", alice), ErrFileNotFound)
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("storage failure after the record is gone", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testFileOptions, nil)
		mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
		mRepo.On("WithFileLock", mock.Anything, "f-1").Return(nil)
		mRepo.On("Delete", mock.Anything, "f-1").Return(nil)
		mStore.On("Delete", mock.Anything, mock.Anything).Return(errors.New("s3 down"))

		assert.ErrorContains(t, svc.Delete(ctx, "abcdef0123", alice), "delete storage: s3 down")
		mRepo.AssertCalled(t, "Delete", mock.Anything, "f-1")
	})

	t.Run("blob already missing is fine", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testFileOptions, nil)
		mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
		mRepo.On("WithFileLock", mock.Anything, "f-1").Return(nil)
		mRepo.On("Delete", mock.Anything, "f-1").Return(nil)
		mStore.On("Delete", mock.Anything, mock.Anything).Return(storage.ErrObjectNotFound)

		assert.NoError(t, svc.Delete(ctx, "abcdef0123", alice))
	})
}

func TestFileService_Get(t *testing.T) {
	mRepo := new(repoMocks.MockFileRepository)
	svc := NewFileService(new(storeMocks.MockStorage), mRepo, testFileOptions, nil)

	mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
	mRepo.On("FindByFileID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
	mRepo.On("FindByFileID", mock.Anything, "broken").Return(nil, errors.New("conn reset"))

	f, err := svc.Get(context.Background(), "abcdef0123")
	require.NoError(t, err)
	assert.Equal(t, "f-1", f.ID)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = svc.Get(context.Background(), "broken")
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestFileService_Listings(t *testing.T) {
	mRepo := new(repoMocks.MockFileRepository)
	svc := NewFileService(new(storeMocks.MockStorage), mRepo, testFileOptions, nil)

	own := []model.File{*aliceFile()}
	others := []model.File{{ID: "f-2", FileID: "bbbbbbbbbb", OwnerID: bob.ID, Name: "b.pdf"}}
	mRepo.On("ListByOwner", mock.Anything, alice.ID).Return(own, nil)
	mRepo.On("ListNotOwnedBy", mock.Anything, alice.ID).Return(others, nil)

	got, err := svc.ListOwnedBy(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, own, got)

	visible, err := svc.ListVisibleTo(context.Background(), alice)
	require.NoError(t, err)
	for _, f := range visible {
		assert.NotEqual(t, alice.ID, f.OwnerID)
	}

	_, err = svc.ListVisibleTo(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.ListOwnedBy(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestFileService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("owner streams blob", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testFileOptions, nil)
		mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
		mStore.On("Get", mock.Anything, "uploads/u-alice/x.pdf").
			Return(io.NopCloser(strings.NewReader("content")), storage.ObjectInfo{Size: 7}, nil)

		f, rc, err := svc.Download(ctx, "abcdef0123", alice)
		require.NoError(t, err)
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		assert.Equal(t, "content", string(b))
		assert.Equal(t, "report.pdf", f.Name)
	})

	t.Run("grantee is still forbidden", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testFileOptions, nil)
		mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)

		_, _, err := svc.Download(ctx, "abcdef0123", bob)
		assert.ErrorIs(t, err, ErrNotOwner)
		mStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("missing blob is not found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testFileOptions, nil)
		mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
		mStore.On("Get", mock.Anything, mock.Anything).Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)

		_, _, err := svc.Download(ctx, "abcdef0123", alice)
		assert.ErrorIs(t, err, ErrFileNotFound)
	})
}

func TestFileService_Link(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockFileRepository)
	svc := NewFileService(mStore, mRepo, testFileOptions, nil)
	mRepo.On("FindByFileID", mock.Anything, "abcdef0123").Return(aliceFile(), nil)
	mStore.On("PresignGet", mock.Anything, "uploads/u-alice/x.pdf", 5*time.Minute, "report.pdf").
		Return("http://minio/presigned", nil)

	u, err := svc.Link(context.Background(), "abcdef0123", alice, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://minio/presigned", u)

	_, err = svc.Link(context.Background(), "abcdef0123", bob, 5*time.Minute)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "2MB", humanSize(2*mib))
	assert.Equal(t, "1500 bytes", humanSize(1500))
}

func newStorageAndRepo() (*storeMocks.MockStorage, *repoMocks.MockFileRepository) {
	return new(storeMocks.MockStorage), new(repoMocks.MockFileRepository)
}

var _ repository.FileRepository = (*uniqueFileRepo)(nil)

// uniqueFileRepo keeps file records in memory and rejects a taken public id
// the way the files_file_id_key constraint does.
type uniqueFileRepo struct {
	mu    sync.Mutex
	byPub map[string]*model.File
}

func newUniqueFileRepo() *uniqueFileRepo {
	return &uniqueFileRepo{byPub: map[string]*model.File{}}
}

func (r *uniqueFileRepo) Create(_ context.Context, f *model.File) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byPub[f.FileID]; taken {
		return nil, repository.ErrDuplicate
	}
	cp := *f
	r.byPub[f.FileID] = &cp
	return &cp, nil
}

func (r *uniqueFileRepo) FindByFileID(_ context.Context, fileID string) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.byPub[fileID]; ok {
		return f, nil
	}
	return nil, repository.ErrNotFound
}

func (r *uniqueFileRepo) UpdateName(context.Context, string, string) (*model.File, error) {
	return nil, repository.ErrNotFound
}

func (r *uniqueFileRepo) Delete(context.Context, string) error { return repository.ErrNotFound }

func (r *uniqueFileRepo) WithFileLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

func (r *uniqueFileRepo) ListByOwner(context.Context, string) ([]model.File, error) { return nil, nil }

func (r *uniqueFileRepo) ListNotOwnedBy(context.Context, string) ([]model.File, error) {
	return nil, nil
}

func TestFileService_Create_RepeatedFilenameKeepsUploading(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storedAs(""), nil)
	repo := newUniqueFileRepo()
	svc := NewFileService(mStore, repo, testFileOptions, nil)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		owner := alice
		if i%2 == 1 {
			owner = bob
		}
		f, err := svc.Create(context.Background(), owner, Upload{Filename: "scan.pdf", Size: 3, Body: strings.NewReader("pdf")})
		require.NoError(t, err, "upload %d", i+1)
		assert.Regexp(t, "^[0-9a-f]{10}$", f.FileID)
		assert.False(t, seen[f.FileID], "public id reused")
		seen[f.FileID] = true
		if i == 0 {
			assert.Equal(t, ShortID("scan.pdf", ""), f.FileID)
		}
	}
	assert.Len(t, repo.byPub, 20)
	mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestFileService_Upload_RepeatedFailedNamesKeptApart(t *testing.T) {
	svc := NewFileService(new(storeMocks.MockStorage), new(repoMocks.MockFileRepository), testFileOptions, nil)

	results, err := svc.Upload(context.Background(), alice, []Upload{
		{Filename: "setup.exe", Size: 10, Body: strings.NewReader("MZ")},
		{Filename: "setup.exe", Size: 3 * mib, Body: strings.NewReader("MZ")},
	})
	require.Error(t, err)
	require.Len(t, results, 2)

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Len(t, e.Fields, 2)
	assert.Contains(t, e.Fields, "setup.exe")
	assert.Contains(t, e.Fields, "setup.exe#1")
}
