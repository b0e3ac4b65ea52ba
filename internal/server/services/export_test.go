package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/dmitrijs2005/tasksync/internal/quota"
	sc "github.com/dmitrijs2005/tasksync/internal/server/config"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/syncapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	putErr  error
	expires time.Duration
}

// withFakeS3 swaps the object storage seams for the duration of the test.
func withFakeS3(t *testing.T, b *fakeBucket) {
	t.Helper()

	oldLoad, oldNew, oldPut, oldPresign, oldGet := loadDefaultAWSConfig, newS3ClientFromConfig, putObject, newS3PresignClient, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, putObject, newS3PresignClient, presignGetObject = oldLoad, oldNew, oldPut, oldPresign, oldGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		if b.putErr != nil {
			return nil, b.putErr
		}
		body, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, err
		}
		b.puts = append(b.puts, in)
		b.bodies = append(b.bodies, body)
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		opts := s3.PresignOptions{}
		for _, fn := range optFns {
			fn(&opts)
		}
		b.expires = opts.Expires
		return &v4.PresignedHTTPRequest{URL: "https://exports.example/" + aws.ToString(in.Key)}, nil
	}
}

func newExport(t *testing.T) (*ExportService, *SyncService) {
	t.Helper()

	m := newManager()
	cfg := &sc.Config{}
	cfg.LoadDefaults()

	syncer := NewSyncService(m, logging.NopLogger{})
	quotas := NewQuotaService(m, nil, logging.NopLogger{})
	s := NewExportService(m, syncer, quotas, cfg, logging.NopLogger{})
	s.now = func() time.Time { return t0 }
	quotas.Gate().WithClock(func() time.Time { return t0 })
	return s, syncer
}

func TestExport_UploadsLiveRecords(t *testing.T) {
	b := &fakeBucket{}
	withFakeS3(t, b)
	s, syncer := newExport(t)
	ctx := context.Background()

	gone := clientTask("gone", t0)
	gone.DeletedAt = ptr(t0)
	_, err := syncer.Push(ctx, "u1", &syncapi.PushRequest{
		Tasks:   []syncapi.Task{clientTask("keep", t0), gone},
		Domains: []syncapi.Domain{clientDomain("d1", t0)},
	})
	require.NoError(t, err)

	acct := &models.Account{ID: "u1", Plan: string(quota.PlanFree), TimeZone: "UTC"}
	resp, err := s.Export(ctx, acct)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Tasks)
	assert.Equal(t, 1, resp.Domains)
	assert.Equal(t, t0.Add(15*time.Minute), resp.ExpiresAt)
	assert.Equal(t, 15*time.Minute, b.expires)

	require.Len(t, b.puts, 1)
	key := aws.ToString(b.puts[0].Key)
	assert.Equal(t, "exports/u1/2026/3/10/"+resp.ID+".json", key)
	assert.Equal(t, "exports", aws.ToString(b.puts[0].Bucket))
	assert.Equal(t, "https://exports.example/"+key, resp.URL)

	var doc exportDocument
	require.NoError(t, json.Unmarshal(b.bodies[0], &doc))
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, recordID("keep"), doc.Tasks[0].ID)
}

func TestExport_QuotaExhausted(t *testing.T) {
	withFakeS3(t, &fakeBucket{})
	s, _ := newExport(t)
	ctx := context.Background()
	acct := &models.Account{ID: "u1", Plan: string(quota.PlanFree), TimeZone: "UTC"}

	for i := 0; i < 2; i++ {
		_, err := s.Export(ctx, acct)
		require.NoError(t, err)
	}

	_, err := s.Export(ctx, acct)
	var ent *common.EntitlementError
	require.ErrorAs(t, err, &ent)
	assert.True(t, errors.Is(err, common.ErrForbidden))
	assert.Contains(t, ent.Message, "Upgrade")
}

func TestExport_UploadFailureDoesNotConsume(t *testing.T) {
	b := &fakeBucket{putErr: errors.New("bucket offline")}
	withFakeS3(t, b)
	s, _ := newExport(t)
	ctx := context.Background()
	acct := &models.Account{ID: "u1", Plan: string(quota.PlanFree), TimeZone: "UTC"}

	_, err := s.Export(ctx, acct)
	require.Error(t, err)

	usage, err := s.quotas.Usage(ctx, acct, quota.ActionExport)
	require.NoError(t, err)
	assert.Equal(t, int64(0), usage.Used)
}

func TestExport_ConfigLoadError(t *testing.T) {
	withFakeS3(t, &fakeBucket{})
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	s, _ := newExport(t)

	_, err := s.Export(context.Background(), &models.Account{ID: "u1", Plan: "free", TimeZone: "UTC"})
	require.ErrorContains(t, err, "no config")
}
