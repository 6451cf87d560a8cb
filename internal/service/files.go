package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"fileshare/internal/metrics"
	"fileshare/internal/model"
	"fileshare/internal/policy"
	"fileshare/internal/repository"
	"fileshare/internal/storage"
)

// uploadConcurrency bounds how many files of one batch are stored at once.
const uploadConcurrency = 4

// ErrShortIDExhausted is returned when every short id candidate is taken.
var ErrShortIDExhausted = errors.New("could not allocate a unique file id")

// Upload is one file of a multipart batch.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult reports the outcome of one Upload.
type UploadResult struct {
	Success bool
	Message string
	Name    string
	Fields  map[string][]string
	File    *model.File
}

// DeleteHook runs under the file row lock, in the same transaction that
// removes the file record. Returning an error aborts the delete.
type DeleteHook func(ctx context.Context, f *model.File) error

// FileOptions configures upload validation.
type FileOptions struct {
	MaxBytes     int64
	AllowedTypes []string
}

// FileService is the file registry: it owns file records and their blobs.
type FileService interface {
	// Create validates and stores a single upload owned by owner.
	Create(ctx context.Context, owner *model.User, up Upload) (*model.File, error)

	// Upload stores every file of a batch independently. When any item fails the
	// returned error is a validation error and successful items stay stored.
	Upload(ctx context.Context, owner *model.User, uploads []Upload) ([]UploadResult, error)

	// Rename changes the display name. Only the owner may rename.
	Rename(ctx context.Context, fileID string, actor *model.User, newName string) (*model.File, error)

	// Delete removes the file record and its grants (via hooks) atomically, then its blob.
	// Only the owner may delete.
	Delete(ctx context.Context, fileID string, actor *model.User) error

	// Get returns a file by public id.
	Get(ctx context.Context, fileID string) (*model.File, error)

	// ListOwnedBy returns the files uploaded by user.
	ListOwnedBy(ctx context.Context, user *model.User) ([]model.File, error)

	// ListVisibleTo returns every file not owned by user. Grants are not consulted.
	ListVisibleTo(ctx context.Context, user *model.User) ([]model.File, error)

	// Download opens the blob of a file for its owner.
	Download(ctx context.Context, fileID string, actor *model.User) (*model.File, io.ReadCloser, error)

	// Link returns a presigned download URL for the owner.
	Link(ctx context.Context, fileID string, actor *model.User, expiry time.Duration) (string, error)
}

type fileService struct {
	store   storage.Storage
	repo    repository.FileRepository
	opts    FileOptions
	allowed map[string]struct{}
	hooks   []DeleteHook
	metrics *metrics.Metrics
}

// NewFileService constructs a new FileService. hooks run in order on every delete.
func NewFileService(store storage.Storage, repo repository.FileRepository, opts FileOptions, m *metrics.Metrics, hooks ...DeleteHook) FileService {
	allowed := make(map[string]struct{}, len(opts.AllowedTypes))
	for _, t := range opts.AllowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	return &fileService{
		store:   store,
		repo:    repo,
		opts:    opts,
		allowed: allowed,
		hooks:   hooks,
		metrics: m,
	}
}

// validate collects every violated field of an upload.
func (s *fileService) validate(up Upload) map[string][]string {
	fields := map[string][]string{}
	if strings.TrimSpace(up.Filename) == "" {
		fields["name"] = append(fields["name"], "File name can not be blank")
	}
	if up.Size > s.opts.MaxBytes {
		fields["size"] = append(fields["size"], fmt.Sprintf("File size exceeds the limit of %s", humanSize(s.opts.MaxBytes)))
	}
	if _, ok := s.allowed[extension(up.Filename)]; !ok {
		fields["type"] = append(fields["type"], "File type not allowed")
	}
	if up.Body == nil {
		fields["file"] = append(fields["file"], "File content is missing")
	}
	return fields
}

func (s *fileService) Create(ctx context.Context, owner *model.User, up Upload) (f *model.File, err error) {
	ctx, span := startSpan(ctx, "FileService.Create", attribute.Int64("file.size", up.Size))
	defer func() { endSpan(span, err) }()

	if owner == nil {
		return nil, ErrUnauthenticated
	}
	if fields := s.validate(up); len(fields) > 0 {
		return nil, ValidationError("Invalid file", fields)
	}

	ext := extension(up.Filename)
	contentType := up.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension("." + ext); byExt != "" {
			contentType = byExt
		} else if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	key := path.Join("uploads", owner.ID, uuid.NewString()+"."+ext)
	objInfo, err := s.store.Put(ctx, key, up.Body, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": up.Filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	rec := &model.File{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Name:        filepath.Base(up.Filename),
		BlobKey:     objInfo.Key,
		Size:        up.Size,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	// The first candidate is the plain filename hash; after a collision
	// each retry salts it with a fresh random value.
	salt := ""
	for attempt := 0; attempt < maxShortIDAttempts; attempt++ {
		rec.FileID = ShortID(up.Filename, salt)
		salt = uuid.NewString()
		stored, err := s.repo.Create(ctx, rec)
		if err == nil {
			return stored, nil
		}
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		return nil, s.rollbackBlob(ctx, key, fmt.Errorf("db save failed: %w", err))
	}
	return nil, s.rollbackBlob(ctx, key, ErrShortIDExhausted)
}

// rollbackBlob deletes an orphaned blob after its metadata could not be stored.
func (s *fileService) rollbackBlob(ctx context.Context, key string, cause error) error {
	if delErr := s.store.Delete(ctx, key); delErr != nil {
		return fmt.Errorf("%w; rollback delete failed: %v", cause, delErr)
	}
	return cause
}

func (s *fileService) Upload(ctx context.Context, owner *model.User, uploads []Upload) ([]UploadResult, error) {
	if owner == nil {
		return nil, ErrUnauthenticated
	}
	if len(uploads) == 0 {
		return nil, ValidationError("No files were uploaded", map[string][]string{"files": {"At least one file is required"}})
	}

	results := make([]UploadResult, len(uploads))
	var g errgroup.Group
	g.SetLimit(uploadConcurrency)
	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			results[i] = s.uploadOne(ctx, owner, up)
			return nil
		})
	}
	_ = g.Wait()

	// keyed by filename; repeated names get their batch position appended
	failed := map[string][]string{}
	for i, res := range results {
		s.metrics.Upload(res.Success)
		if res.Success {
			continue
		}
		key := res.Name
		if _, taken := failed[key]; taken {
			key = fmt.Sprintf("%s#%d", res.Name, i)
		}
		failed[key] = []string{res.Message}
	}
	if len(failed) > 0 {
		return results, ValidationError("One or more files were not uploaded", failed)
	}
	return results, nil
}

// uploadOne never fails the batch; errors become a failed result.
func (s *fileService) uploadOne(ctx context.Context, owner *model.User, up Upload) UploadResult {
	f, err := s.Create(ctx, owner, up)
	if err == nil {
		return UploadResult{Success: true, Message: "Success", Name: up.Filename, File: f}
	}
	res := UploadResult{Success: false, Name: up.Filename}
	if e, ok := AsError(err); ok {
		res.Message = e.Message
		res.Fields = e.Fields
	} else {
		res.Message = "File could not be stored"
	}
	return res
}

// ownedFile loads a file and checks the actor may perform action on it.
func (s *fileService) ownedFile(ctx context.Context, fileID string, actor *model.User, action policy.Action) (*model.File, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	f, err := s.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccess(actor, f, action) {
		return nil, ErrNotOwner
	}
	return f, nil
}

func (s *fileService) Rename(ctx context.Context, fileID string, actor *model.User, newName string) (f *model.File, err error) {
	ctx, span := startSpan(ctx, "FileService.Rename", attribute.String("file.id", fileID))
	defer func() { endSpan(span, err) }()

	file, err := s.ownedFile(ctx, fileID, actor, policy.Write)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		return nil, ErrEmptyName
	}
	updated, err := s.repo.UpdateName(ctx, file.ID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("rename file: %w", err)
	}
	return updated, nil
}

func (s *fileService) Delete(ctx context.Context, fileID string, actor *model.User) (err error) {
	ctx, span := startSpan(ctx, "FileService.Delete", attribute.String("file.id", fileID))
	defer func() { endSpan(span, err) }()

	file, err := s.ownedFile(ctx, fileID, actor, policy.Write)
	if err != nil {
		return err
	}
	err = s.repo.WithFileLock(ctx, file.ID, func(ctx context.Context) error {
		for _, hook := range s.hooks {
			if err := hook(ctx, file); err != nil {
				return fmt.Errorf("on delete hook: %w", err)
			}
		}
		return s.repo.Delete(ctx, file.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFileNotFound
		}
		return err
	}
	// The record is gone at this point; a failure here leaves an orphaned blob.
	if err := s.store.Delete(ctx, file.BlobKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("delete storage: %w", err)
	}
	return nil
}

func (s *fileService) Get(ctx context.Context, fileID string) (*model.File, error) {
	if fileID == "" {
		return nil, ErrFileNotFound
	}
	f, err := s.repo.FindByFileID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *fileService) ListOwnedBy(ctx context.Context, user *model.User) ([]model.File, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListByOwner(ctx, user.ID)
}

func (s *fileService) ListVisibleTo(ctx context.Context, user *model.User) ([]model.File, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListNotOwnedBy(ctx, user.ID)
}

func (s *fileService) Download(ctx context.Context, fileID string, actor *model.User) (*model.File, io.ReadCloser, error) {
	file, err := s.ownedFile(ctx, fileID, actor, policy.Read)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, file.BlobKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return file, rc, nil
}

func (s *fileService) Link(ctx context.Context, fileID string, actor *model.User, expiry time.Duration) (string, error) {
	file, err := s.ownedFile(ctx, fileID, actor, policy.Read)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, file.BlobKey, expiry, file.Name)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return u, nil
}

// extension returns the lower-cased extension without the dot. Names without a dot have none.
func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func humanSize(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
