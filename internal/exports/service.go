package exports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/blob"
	"github.com/fdg312/meal-planner/internal/shopping"
	"github.com/fdg312/meal-planner/internal/storage"
)

var (
	ErrInvalidFormat  = errors.New("format must be 'pdf' or 'csv'")
	ErrExportNotFound = errors.New("export not found")
)

// Options tune where files go and how they are linked.
type Options struct {
	MaxItems        int
	DefaultFormat   string
	PresignTTL      time.Duration
	PublicBaseURL   string
	PreferPublicURL bool
}

// Service renders shopping lists and stores them either in the database
// (local mode) or in object storage.
type Service struct {
	storage   storage.ExportsStorage
	blobStore blob.Store
	renderer  *Renderer
	opts      Options
	localMode bool
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(exportsStorage storage.ExportsStorage, blobStore blob.Store, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultFormat != FormatCSV {
		opts.DefaultFormat = FormatPDF
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 15 * time.Minute
	}

	return &Service{
		storage:   exportsStorage,
		blobStore: blobStore,
		renderer:  NewRenderer(),
		opts:      opts,
		localMode: blobStore == nil,
		logger:    logger.Named("exports"),
		now:       time.Now,
	}
}

// Create renders the finalized items, stores the file and returns a
// download link built on baseURL.
func (s *Service) Create(ctx context.Context, req shopping.ExportRequest) (*shopping.ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = s.opts.DefaultFormat
	}
	if format != FormatPDF && format != FormatCSV {
		return nil, ErrInvalidFormat
	}
	if len(req.Items) == 0 {
		return nil, shopping.ErrNothingToExport
	}
	if s.opts.MaxItems > 0 && len(req.Items) > s.opts.MaxItems {
		return nil, fmt.Errorf("%w: %d > %d", shopping.ErrTooManyItems, len(req.Items), s.opts.MaxItems)
	}

	data, err := s.renderer.Render(Document{From: req.From, To: req.To, Items: req.Items}, format)
	if err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	meta := &storage.ExportMeta{
		ID:          uuid.New(),
		OwnerUserID: req.OwnerUserID,
		Format:      format,
		FromDate:    req.From,
		ToDate:      req.To,
		ItemCount:   len(req.Items),
		SizeBytes:   int64(len(data)),
		Status:      StatusReady,
	}

	if s.localMode {
		meta.Data = data
	} else {
		objectKey := fmt.Sprintf("exports/%s/%s_%s_%s.%s",
			safeSegment(req.OwnerUserID),
			req.From,
			req.To,
			meta.ID.String(),
			format,
		)
		_, err := s.blobStore.Put(ctx, blob.Object{
			Key:         objectKey,
			ContentType: contentType(format),
			Filename:    downloadFilename(req.From, req.To, format),
			Data:        data,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload export: %w", err)
		}
		meta.ObjectKey = &objectKey
	}

	if err := s.storage.CreateExport(ctx, meta); err != nil {
		return nil, fmt.Errorf("failed to save export metadata: %w", err)
	}

	exp := toExport(meta)
	url, err := s.DownloadURL(ctx, exp, req.BaseURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("shopping list exported",
		zap.String("owner", req.OwnerUserID),
		zap.String("export_id", exp.ID.String()),
		zap.String("format", format),
		zap.Int("items", exp.ItemCount),
		zap.Int64("size_bytes", exp.SizeBytes),
	)

	return &shopping.ExportResult{
		ID:          exp.ID.String(),
		Format:      exp.Format,
		ItemCount:   exp.ItemCount,
		SizeBytes:   exp.SizeBytes,
		DownloadURL: url,
		CreatedAt:   exp.CreatedAt,
	}, nil
}

// Get returns an export owned by ownerUserID.
func (s *Service) Get(ctx context.Context, ownerUserID string, id uuid.UUID) (*Export, error) {
	meta, err := s.storage.GetExport(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	if meta.OwnerUserID != ownerUserID {
		return nil, ErrExportNotFound
	}
	return toExport(meta), nil
}

// List returns the owner's exports, newest first.
func (s *Service) List(ctx context.Context, ownerUserID string, limit, offset int) ([]Export, error) {
	metaList, err := s.storage.ListExports(ctx, ownerUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	out := make([]Export, len(metaList))
	for i := range metaList {
		out[i] = *toExport(&metaList[i])
	}
	return out, nil
}

// Delete removes the export and its object.
func (s *Service) Delete(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	exp, err := s.Get(ctx, ownerUserID, id)
	if err != nil {
		return err
	}

	if !s.localMode && exp.ObjectKey != nil {
		if err := s.blobStore.Delete(ctx, *exp.ObjectKey); err != nil {
			// метаданные важнее, объект почистится вручную
			s.logger.Warn("failed to delete export object", zap.String("key", *exp.ObjectKey), zap.Error(err))
		}
	}

	if err := s.storage.DeleteExport(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrExportNotFound
		}
		return fmt.Errorf("failed to delete export metadata: %w", err)
	}
	return nil
}

// DownloadURL is the local download endpoint in local mode, the public
// object URL when preferred, and a presigned URL otherwise.
func (s *Service) DownloadURL(ctx context.Context, exp *Export, baseURL string) (string, error) {
	if s.localMode {
		return fmt.Sprintf("%s/v1/shopping/exports/%s/download", strings.TrimSuffix(baseURL, "/"), exp.ID.String()), nil
	}

	if exp.ObjectKey == nil {
		return "", fmt.Errorf("object key is missing")
	}

	if s.opts.PreferPublicURL && s.opts.PublicBaseURL != "" {
		return strings.TrimSuffix(s.opts.PublicBaseURL, "/") + "/" + *exp.ObjectKey, nil
	}

	presigned, err := s.blobStore.PresignDownload(ctx, *exp.ObjectKey, exp.Filename(), s.opts.PresignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presigned, nil
}

// LocalMode reports whether file bytes live in the database.
func (s *Service) LocalMode() bool {
	return s.localMode
}

func toExport(meta *storage.ExportMeta) *Export {
	return &Export{
		ID:          meta.ID,
		OwnerUserID: meta.OwnerUserID,
		Format:      meta.Format,
		FromDate:    meta.FromDate,
		ToDate:      meta.ToDate,
		ItemCount:   meta.ItemCount,
		ObjectKey:   meta.ObjectKey,
		SizeBytes:   meta.SizeBytes,
		Status:      meta.Status,
		CreatedAt:   meta.CreatedAt,
		Data:        meta.Data,
	}
}

func safeSegment(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "default"
	}
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(owner)
}
