package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/records-api/internal/model"
	"github.com/clinicore/records-api/internal/repository"
	"github.com/clinicore/records-api/internal/service/audit"
	apperrors "github.com/clinicore/records-api/pkg/errors"
	"github.com/clinicore/records-api/pkg/upload"
)

const defaultListLimit = 20

type Service interface {
	Upload(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, header *multipart.FileHeader) (*model.MediaFile, error)
	Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.MediaFile, string, error)
	List(ctx context.Context, actor *model.Actor, filter *model.MediaFilter) ([]*model.MediaFile, int64, error)
	Archive(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.MediaFile, error)
}

type service struct {
	repo      repository.MediaRepository
	validator *upload.Validator
	dir       string
	auditor   *audit.Service
}

func NewService(repo repository.MediaRepository, validator *upload.Validator, dir string, auditor *audit.Service) Service {
	return &service{repo: repo, validator: validator, dir: dir, auditor: auditor}
}

// Upload validates, stores the bytes on disk under a generated name, and
// records the metadata row. The original filename is kept for display only.
func (s *service) Upload(ctx context.Context, actor *model.Actor, patientID *uuid.UUID, header *multipart.FileHeader) (*model.MediaFile, error) {
	if err := s.validator.Validate(header); err != nil {
		return nil, err
	}

	storedName := upload.StoredName(header.Filename)
	if err := s.store(header, storedName); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	now := time.Now()
	file := &model.MediaFile{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UploadedBy: actor.ID,
		PatientID:  patientID,
		FileName:   header.Filename,
		StoredName: storedName,
		MimeType:   header.Header.Get("Content-Type"),
		SizeBytes:  header.Size,
	}

	if err := s.repo.Create(ctx, file); err != nil {
		// Best effort: remove the orphaned file before reporting.
		_ = os.Remove(filepath.Join(s.dir, storedName))
		s.auditor.Log(ctx, actor, model.AuditActionUpload, "media", file.ID, false, err.Error())
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionUpload, "media", file.ID, true, header.Filename)
	return file, nil
}

func (s *service) store(header *multipart.FileHeader, storedName string) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return err
	}

	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, storedName))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func (s *service) Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.MediaFile, string, error) {
	file, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperrors.NotFound("file")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file: %w", err)
	}

	// Archived files stay retrievable by direct id, but only for the
	// uploader or an admin; everyone else sees not-found.
	if file.IsArchived && file.UploadedBy != actor.ID && !actor.Role.AdminEquivalent() {
		return nil, "", apperrors.NotFound("file")
	}

	path := filepath.Join(s.dir, file.StoredName)
	if _, err := os.Stat(path); err != nil {
		return nil, "", apperrors.NotFound("file")
	}

	s.auditor.Log(ctx, actor, model.AuditActionRead, "media", id, true, "")
	return file, path, nil
}

func (s *service) List(ctx context.Context, actor *model.Actor, filter *model.MediaFilter) ([]*model.MediaFile, int64, error) {
	filter.Normalize(defaultListLimit)
	filter.IncludeArchived = false

	files, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}
	return files, total, nil
}

// Archive hides the metadata row; the bytes stay on disk for retention.
func (s *service) Archive(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.MediaFile, error) {
	file, err := s.repo.Archive(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to archive file: %w", err)
	}

	s.auditor.Log(ctx, actor, model.AuditActionArchive, "media", id, true, "")
	return file, nil
}
