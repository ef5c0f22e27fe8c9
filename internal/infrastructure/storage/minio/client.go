package minio

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

// ObjectAPI is the slice of the MinIO client the archive uses. GetObject
// returns an io.ReadCloser so tests can serve bodies without a server.
type ObjectAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// sdkAdapter narrows *minio.Client to ObjectAPI.
type sdkAdapter struct {
	*minio.Client
}

func (a sdkAdapter) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return a.Client.GetObject(ctx, bucketName, objectName, opts)
}

// Config holds connection and bucket settings.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	Bucket          string
	RetentionDays   int
	PresignExpiry   time.Duration
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "cforge-reports"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
}

var ErrClientClosed = errors.New(errors.ErrCodeInternal, "minio client is closed")

// Client owns the connection and the report bucket.
type Client struct {
	api    ObjectAPI
	config Config
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient connects, verifies reachability and makes sure the bucket exists.
func NewClient(ctx context.Context, cfg Config, log logging.Logger) (*Client, error) {
	applyDefaults(&cfg)
	sdk, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}
	c := NewClientWithAPI(sdkAdapter{sdk}, cfg, log)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := c.api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	c.logger.Info("MinIO client connected", logging.String("endpoint", cfg.Endpoint), logging.String("bucket", cfg.Bucket))
	return c, nil
}

// NewClientWithAPI wraps an existing ObjectAPI without any network calls.
func NewClientWithAPI(api ObjectAPI, cfg Config, log logging.Logger) *Client {
	applyDefaults(&cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{api: api, config: cfg, logger: log}
}

// Bucket returns the report bucket name.
func (c *Client) Bucket() string { return c.config.Bucket }

// EnsureBucket creates the bucket when missing and installs the retention
// rule. A lifecycle failure is logged only.
func (c *Client) EnsureBucket(ctx context.Context) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	exists, err := c.api.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to check bucket existence").WithDetail(c.config.Bucket)
	}
	if !exists {
		if err := c.api.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return errors.Wrap(err, errors.CodeStorageError, "failed to create bucket").WithDetail(c.config.Bucket)
		}
		c.logger.Info("Created bucket", logging.String("bucket", c.config.Bucket))
	}

	if c.config.RetentionDays > 0 {
		lc := lifecycle.NewConfiguration()
		lc.Rules = []lifecycle.Rule{{
			ID:         "report-retention",
			Status:     "Enabled",
			RuleFilter: lifecycle.Filter{Prefix: reportPrefix},
			Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(c.config.RetentionDays)},
		}}
		if err := c.api.SetBucketLifecycle(ctx, c.config.Bucket, lc); err != nil {
			c.logger.Warn("Failed to set report retention", logging.Err(err))
		}
	}
	return nil
}

// HealthStatus is the result of HealthCheck.
type HealthStatus struct {
	Healthy      bool
	Latency      time.Duration
	BucketExists bool
	Error        string
}

func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	if err := c.checkClosed(); err != nil {
		return &HealthStatus{Error: err.Error()}, err
	}
	start := time.Now()
	exists, err := c.api.BucketExists(ctx, c.config.Bucket)
	status := &HealthStatus{Latency: time.Since(start), BucketExists: exists}
	if err != nil {
		status.Error = err.Error()
		return status, errors.Wrap(err, errors.CodeStorageError, "minio health check failed")
	}
	status.Healthy = exists
	if !exists {
		status.Error = "bucket " + c.config.Bucket + " missing"
	}
	return status, nil
}

// PresignedURL returns a time-limited download link. expiry 0 uses the
// configured default.
func (c *Client) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if err := c.checkClosed(); err != nil {
		return "", err
	}
	if expiry == 0 {
		expiry = c.config.PresignExpiry
	}
	u, err := c.api.PresignedGetObject(ctx, c.config.Bucket, objectKey, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeStorageError, "failed to presign report url")
	}
	return u.String(), nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}
