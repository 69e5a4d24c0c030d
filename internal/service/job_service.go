package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"adpnorm/internal/adp"
	"adpnorm/internal/config"
	"adpnorm/internal/domain"
	"adpnorm/internal/export"
	"adpnorm/internal/fields"
	"adpnorm/internal/kvp"
	"adpnorm/internal/port"
	"adpnorm/internal/storage"
)

const layoutContentType = "application/xml; charset=utf-16"

// SubmitInput is the DTO for a new normalization job. Nil overrides take the
// configured defaults.
type SubmitInput struct {
	ClientID      uuid.UUID
	File          io.Reader
	FileSize      int64
	ContentType   string
	PageIDs       []string
	SelectionMode string
	RetentionMode string
	FieldSuffix   *string
	UseAllPages   *bool
	Consolidate   *bool
	QualityAdjust *bool
}

// JobDetail is a job with its pages.
type JobDetail struct {
	Job   *domain.Job      `json:"job"`
	Pages []domain.JobPage `json:"pages"`
}

// ExportOutput is a rendered field export.
type ExportOutput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// JobService defines the normalization job contract.
type JobService interface {
	Submit(ctx context.Context, input *SubmitInput) (*domain.Job, error)
	Get(ctx context.Context, clientID, jobID uuid.UUID) (*JobDetail, error)
	List(ctx context.Context, clientID uuid.UUID, offset, limit int) ([]domain.Job, int, error)
	Fields(ctx context.Context, clientID, jobID uuid.UUID) ([]domain.Field, error)
	LayoutURL(ctx context.Context, clientID, jobID uuid.UUID, pageID string) (string, error)
	Export(ctx context.Context, clientID, jobID uuid.UUID, format domain.ExportFormat) (*ExportOutput, error)
	// ProcessJob runs a job already claimed by the caller and records the
	// outcome. Retryable failures under maxAttempts requeue the job.
	ProcessJob(ctx context.Context, job *domain.Job, maxAttempts int)
	// Process claims the job itself, runs it and returns the failure, if any,
	// so the caller's queue can decide on a retry.
	Process(ctx context.Context, jobID uuid.UUID, maxAttempts int) error
}

type jobService struct {
	jobRepo    port.JobRepository
	pageRepo   port.PageRepository
	fieldRepo  port.FieldRepository
	storage    port.ObjectStorage
	enqueuer   port.JobEnqueuer
	notifier   port.Notifier
	normalizer *Normalizer
	s3Cfg      config.S3Config
	defaults   config.NormalizerConfig
}

// NewJobService creates a new JobService implementation.
func NewJobService(
	jobRepo port.JobRepository,
	pageRepo port.PageRepository,
	fieldRepo port.FieldRepository,
	storage port.ObjectStorage,
	enqueuer port.JobEnqueuer,
	notifier port.Notifier,
	s3Cfg config.S3Config,
	defaults config.NormalizerConfig,
) JobService {
	return &jobService{
		jobRepo:    jobRepo,
		pageRepo:   pageRepo,
		fieldRepo:  fieldRepo,
		storage:    storage,
		enqueuer:   enqueuer,
		notifier:   notifier,
		normalizer: NewNormalizer(),
		s3Cfg:      s3Cfg,
		defaults:   defaults,
	}
}

func (s *jobService) Submit(ctx context.Context, input *SubmitInput) (*domain.Job, error) {
	contentType := strings.TrimSpace(strings.Split(input.ContentType, ";")[0])
	if contentType != "" && !domain.AllowedSourceContentTypes[contentType] {
		return nil, domain.ErrUnsupportedFileType
	}
	maxBytes := s.s3Cfg.MaxFileSizeMB * 1024 * 1024
	if maxBytes > 0 && input.FileSize > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	raw, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("jobService.Submit: reading upload: %w", err)
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	doc, err := adp.Parse(raw)
	if err != nil {
		return nil, err
	}
	compact, err := adp.Compact(raw)
	if err != nil {
		return nil, err
	}

	pageIDs, err := resolvePageIDs(input.PageIDs, doc.PageCount())
	if err != nil {
		return nil, err
	}

	job := &domain.Job{
		ID:            uuid.New(),
		ClientID:      input.ClientID,
		Status:        domain.JobStatusQueued,
		SelectionMode: string(kvp.ParseSelectionMode(firstNonEmpty(input.SelectionMode, s.defaults.SelectionMode))),
		RetentionMode: string(fields.ParseRetentionMode(firstNonEmpty(input.RetentionMode, s.defaults.RetentionMode))),
		FieldSuffix:   valueOr(input.FieldSuffix, s.defaults.FieldSuffix),
		UseAllPages:   valueOr(input.UseAllPages, s.defaults.UseAllPages),
		Consolidate:   valueOr(input.Consolidate, s.defaults.Consolidate),
		QualityAdjust: valueOr(input.QualityAdjust, s.defaults.QualityAdjust),
		PageCount:     len(pageIDs),
	}
	job.SourceKey = storage.SourceKey(job.ID)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         job.SourceKey,
		Body:        bytes.NewReader(compact),
		ContentType: "application/json",
		Size:        int64(len(compact)),
		Metadata: map[string]string{
			port.MetaJobID:    job.ID.String(),
			port.MetaClientID: job.ClientID.String(),
		},
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		s.cleanupObject(job.SourceKey)
		return nil, fmt.Errorf("jobService.Submit: %w", err)
	}

	pages := make([]domain.JobPage, len(pageIDs))
	for i, a := range Assignments(pageIDs, job.UseAllPages) {
		pages[i] = domain.JobPage{
			ID:        uuid.New(),
			JobID:     job.ID,
			PageIndex: i,
			PageID:    a.PageID,
			JSONPage:  a.JSONPage,
			Status:    domain.PageStatusPending,
		}
	}
	if err := s.pageRepo.CreateBatch(ctx, pages); err != nil {
		if delErr := s.jobRepo.Delete(context.Background(), job.ID); delErr != nil {
			log.Printf("jobService.Submit: failed to remove job %s after page insert failure: %v", job.ID, delErr)
		}
		s.cleanupObject(job.SourceKey)
		return nil, fmt.Errorf("jobService.Submit: %w", err)
	}

	if err := s.enqueuer.EnqueueJob(ctx, job.ID); err != nil {
		log.Printf("jobService.Submit: enqueue of job %s failed, it stays queued: %v", job.ID, err)
	}

	log.Printf("jobService.Submit: job %s queued with %d page(s), selection=%s retention=%s",
		job.ID, job.PageCount, job.SelectionMode, job.RetentionMode)
	return job, nil
}

// resolvePageIDs validates the requested page ids, or names one page per
// analysis page when none are given.
func resolvePageIDs(requested []string, analysisPages int) ([]string, error) {
	var ids []string
	for _, id := range requested {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(requested) > 0 && len(ids) != len(requested) {
		return nil, domain.ErrInvalidPageIDs
	}
	if len(ids) == 0 {
		n := max(analysisPages, 1)
		for i := range n {
			ids = append(ids, fmt.Sprintf("page_%d", i+1))
		}
		return ids, nil
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, domain.ErrInvalidPageIDs
		}
		seen[id] = true
	}
	return ids, nil
}

func (s *jobService) cleanupObject(key string) {
	if err := s.storage.Delete(context.Background(), s.s3Cfg.Bucket, key); err != nil {
		log.Printf("jobService: failed to clean up %s: %v", key, err)
	}
}

func (s *jobService) getOwned(ctx context.Context, clientID, jobID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID != clientID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

func (s *jobService) Get(ctx context.Context, clientID, jobID uuid.UUID) (*JobDetail, error) {
	job, err := s.getOwned(ctx, clientID, jobID)
	if err != nil {
		return nil, err
	}
	pages, err := s.pageRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("jobService.Get: %w", err)
	}
	return &JobDetail{Job: job, Pages: pages}, nil
}

func (s *jobService) List(ctx context.Context, clientID uuid.UUID, offset, limit int) ([]domain.Job, int, error) {
	return s.jobRepo.ListByClient(ctx, clientID, offset, limit)
}

func (s *jobService) Fields(ctx context.Context, clientID, jobID uuid.UUID) ([]domain.Field, error) {
	job, err := s.getOwned(ctx, clientID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusCompleted {
		return nil, domain.ErrJobNotFinished
	}
	return s.fieldRepo.ListByJob(ctx, jobID)
}

func (s *jobService) LayoutURL(ctx context.Context, clientID, jobID uuid.UUID, pageID string) (string, error) {
	if _, err := s.getOwned(ctx, clientID, jobID); err != nil {
		return "", err
	}
	page, err := s.pageRepo.GetByPageID(ctx, jobID, pageID)
	if err != nil {
		return "", err
	}
	if page.LayoutKey == "" {
		return "", domain.ErrLayoutNotAvailable
	}
	return s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, page.LayoutKey, s.s3Cfg.PresignExpiry)
}

func (s *jobService) Export(ctx context.Context, clientID, jobID uuid.UUID, format domain.ExportFormat) (*ExportOutput, error) {
	if _, ok := domain.ExportContentTypes[format]; !ok {
		return nil, domain.ErrUnsupportedExport
	}
	fieldRows, err := s.Fields(ctx, clientID, jobID)
	if err != nil {
		return nil, err
	}
	pages, err := s.pageRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("jobService.Export: %w", err)
	}
	names := make(export.Pages, len(pages))
	for _, p := range pages {
		names[p.ID] = p.PageID
	}

	data, err := export.Fields(format, fieldRows, names)
	if err != nil {
		return nil, err
	}
	return &ExportOutput{
		Filename:    export.BuildFilename("job_"+jobID.String(), format, timeNow()),
		ContentType: domain.ExportContentTypes[format],
		Data:        data,
	}, nil
}

func (s *jobService) Process(ctx context.Context, jobID uuid.UUID, maxAttempts int) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.JobError{Code: domain.JobErrorPersistence, Err: err}
		}
		return &domain.JobError{Code: domain.JobErrorPersistence, Retryable: true, Err: err}
	}
	if job.Status == domain.JobStatusCompleted || job.Status == domain.JobStatusFailed {
		log.Printf("jobService.Process: job %s is already %s", job.ID, job.Status)
		return nil
	}

	job.Status = domain.JobStatusProcessing
	job.Attempts++
	if err := s.jobRepo.UpdateStatus(ctx, job); err != nil {
		return &domain.JobError{Code: domain.JobErrorPersistence, Retryable: true, Err: err}
	}

	runErr := s.run(ctx, job)
	s.finish(ctx, job, runErr, maxAttempts)
	return runErr
}

func (s *jobService) ProcessJob(ctx context.Context, job *domain.Job, maxAttempts int) {
	s.finish(ctx, job, s.run(ctx, job), maxAttempts)
}

// finish records the job's outcome and notifies on final states.
func (s *jobService) finish(ctx context.Context, job *domain.Job, runErr error, maxAttempts int) {
	switch {
	case runErr == nil:
		job.Status = domain.JobStatusCompleted
		job.ErrorMessage = ""
	case domain.IsRetryable(runErr) && job.Attempts < maxAttempts:
		job.Status = domain.JobStatusQueued
		job.ErrorMessage = fmt.Sprintf("attempt %d failed, queued for retry: %v", job.Attempts, runErr)
		log.Printf("jobService.finish: job %s: %s", job.ID, job.ErrorMessage)
	default:
		job.Status = domain.JobStatusFailed
		job.ErrorMessage = runErr.Error()
		log.Printf("jobService.finish: job %s failed: %v", job.ID, runErr)
	}

	if err := s.jobRepo.UpdateStatus(ctx, job); err != nil {
		log.Printf("jobService.finish: failed to update job %s: %v", job.ID, err)
		return
	}
	if job.Status == domain.JobStatusQueued {
		return
	}
	if err := s.notifier.JobFinished(ctx, job); err != nil {
		log.Printf("jobService.finish: notification for job %s failed: %v", job.ID, err)
	}
}

// run normalizes every page of the job, then stores layouts and fields.
func (s *jobService) run(ctx context.Context, job *domain.Job) error {
	raw, err := s.storage.Download(ctx, s.s3Cfg.Bucket, job.SourceKey)
	if err != nil {
		return &domain.JobError{Code: domain.JobErrorSourceUnavailable, Retryable: !errors.Is(err, domain.ErrNotFound), Err: err}
	}
	doc, err := adp.Parse(raw)
	if err != nil {
		return &domain.JobError{Code: domain.JobErrorMalformedSource, Err: err}
	}

	pages, err := s.pageRepo.ListByJob(ctx, job.ID)
	if err != nil {
		return &domain.JobError{Code: domain.JobErrorPersistence, Retryable: true, Err: err}
	}
	if len(pages) == 0 {
		return &domain.JobError{Code: domain.JobErrorMalformedSource, Err: domain.ErrNoPages}
	}

	assignments := make([]PageAssignment, len(pages))
	for i, p := range pages {
		assignments[i] = PageAssignment{PageID: p.PageID, JSONPage: p.JSONPage}
	}
	outcomes, err := s.normalizer.NormalizeDocument(ctx, doc, assignments, DocumentOptions{
		NormalizeOptions: NormalizeOptions{
			Selection:     kvp.ParseSelectionMode(job.SelectionMode),
			Suffix:        job.FieldSuffix,
			DocClassVar:   s.defaults.DocClassVar,
			QualityAdjust: job.QualityAdjust,
		},
		Retention:   fields.ParseRetentionMode(job.RetentionMode),
		Consolidate: job.Consolidate,
	})
	if err != nil {
		return &domain.JobError{Code: domain.JobErrorPersistence, Retryable: true, Err: err}
	}

	normalized := 0
	for i, outcome := range outcomes {
		page := &pages[i]
		page.ErrorMessage = ""
		page.FieldCount = 0

		switch {
		case outcome.Err != nil:
			page.Status = domain.PageStatusFailed
			page.ErrorMessage = outcome.Err.Error()
			log.Printf("jobService.run: job %s page %s: %v", job.ID, page.PageID, outcome.Err)
			continue
		case outcome.Result == nil:
			page.Status = domain.PageStatusCompleted
			continue
		}

		if err := s.storePage(ctx, job, page, outcome.Result); err != nil {
			return err
		}
		page.Status = domain.PageStatusCompleted
		if outcome.Merged {
			page.Status = domain.PageStatusMerged
		}
		normalized++
	}

	for i := range pages {
		if err := s.pageRepo.Update(ctx, &pages[i]); err != nil {
			return &domain.JobError{Code: domain.JobErrorPersistence, Retryable: true, Err: err}
		}
	}

	log.Printf("jobService.run: job %s normalized %d of %d page(s)", job.ID, normalized, len(pages))
	return nil
}

// storePage uploads the page's layout document and replaces its fields.
func (s *jobService) storePage(ctx context.Context, job *domain.Job, page *domain.JobPage, result *PageResult) error {
	key := storage.LayoutKey(job.ID, result.LayoutFile)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(result.Layout),
		ContentType: layoutContentType,
		Size:        int64(len(result.Layout)),
		Metadata: map[string]string{
			port.MetaJobID:  job.ID.String(),
			port.MetaPageID: page.PageID,
		},
	}); err != nil {
		return &domain.JobError{Code: domain.JobErrorStorage, Retryable: true, Err: err}
	}
	page.LayoutKey = key

	rows, err := fields.Flatten(result.Fields, job.ID, page.ID)
	if err != nil {
		return &domain.JobError{Code: domain.JobErrorPersistence, Err: err}
	}
	if err := s.fieldRepo.ReplaceForPage(ctx, page.ID, rows); err != nil {
		return &domain.JobError{Code: domain.JobErrorPersistence, Retryable: true, Err: err}
	}
	vars, err := fields.PageVariables(result.Fields)
	if err != nil {
		return &domain.JobError{Code: domain.JobErrorPersistence, Err: err}
	}
	page.Variables = vars
	page.FieldCount = len(rows)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
