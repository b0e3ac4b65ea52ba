package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	sc "github.com/dmitrijs2005/tasksync/internal/server/config"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// exportDocument is the archive written to object storage.
type exportDocument struct {
	Owner      string           `json:"owner"`
	ExportedAt time.Time        `json:"exportedAt"`
	Tasks      []syncapi.Task   `json:"tasks"`
	Domains    []syncapi.Domain `json:"domains"`
}

// ExportService snapshots an owner's live tasks and domains as JSON into
// the export bucket and hands back a presigned download link.
type ExportService struct {
	sync        *SyncService
	quotas      *QuotaService
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
	now         func() time.Time
}

func NewExportService(m repomanager.RepositoryManager, sync *SyncService, quotas *QuotaService,
	config *sc.Config, logger logging.Logger) *ExportService {
	return &ExportService{
		sync:        sync,
		quotas:      quotas,
		repomanager: m,
		config:      config,
		logger:      logger.With("module", "export"),
		now:         time.Now,
	}
}

func exportStorageKey(owner, id string, d time.Time) string {
	return fmt.Sprintf("exports/%s/%d/%d/%d/%s.json", owner, d.Year(), d.Month(), d.Day(), id)
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Export uploads the snapshot and records it. A use of the export quota is
// recorded only once the upload succeeded.
func (s *ExportService) Export(ctx context.Context, acct *models.Account) (*syncapi.ExportResponse, error) {
	adm, err := s.quotas.Check(ctx, acct, quota.ActionExport)
	if err != nil {
		return nil, err
	}
	if !adm.Allowed {
		return nil, &common.EntitlementError{Message: adm.Message}
	}

	snapshot, err := s.sync.Pull(ctx, acct.ID, nil)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := exportDocument{Owner: acct.ID, ExportedAt: now, Tasks: []syncapi.Task{}, Domains: []syncapi.Domain{}}
	for _, t := range snapshot.Tasks {
		if t.DeletedAt == nil {
			doc.Tasks = append(doc.Tasks, t)
		}
	}
	for _, d := range snapshot.Domains {
		if d.DeletedAt == nil {
			doc.Domains = append(doc.Domains, d)
		}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	id := uuid.NewString()
	key := exportStorageKey(acct.ID, id, now)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("export upload: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.config.ExportLinkValidity))
	if err != nil {
		return nil, fmt.Errorf("export presign: %w", err)
	}

	rec := &models.Export{
		ID:         id,
		UserID:     acct.ID,
		StorageKey: key,
		Tasks:      len(doc.Tasks),
		Domains:    len(doc.Domains),
		CreatedAt:  now,
	}
	if err := s.repomanager.Exports(s.repomanager.DB()).Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("export: %w", storageError(err))
	}

	if _, err := s.quotas.Consume(ctx, acct, quota.ActionExport); err != nil {
		s.logger.Warn(ctx, "export quota not recorded", "owner", acct.ID, "error", err)
	}

	s.logger.Info(ctx, "export created", "owner", acct.ID, "id", id, "tasks", rec.Tasks, "domains", rec.Domains)

	return &syncapi.ExportResponse{
		ID:        id,
		URL:       req.URL,
		ExpiresAt: now.Add(s.config.ExportLinkValidity),
		Tasks:     rec.Tasks,
		Domains:   rec.Domains,
	}, nil
}
