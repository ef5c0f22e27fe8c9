package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

const (
	reportPrefix      = "reports/"
	reportContentType = "application/json"
)

var (
	ErrReportNotFound = errors.New(errors.ErrCodeNotFound, "report not found")
	ErrInvalidKey     = errors.New(errors.ErrCodeValidation, "invalid report key")
)

// ReportInfo describes one archived report.
type ReportInfo struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag,omitempty"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ReportArchive stores analysis reports as JSON objects under reports/.
type ReportArchive interface {
	PutReport(ctx context.Context, id string, report interface{}, metadata map[string]string) (*ReportInfo, error)
	GetReport(ctx context.Context, key string, target interface{}) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string, limit int) ([]ReportInfo, error)
	Delete(ctx context.Context, key string) error
}

type reportArchive struct {
	client *Client
	logger logging.Logger
	now    func() time.Time
}

func NewReportArchive(client *Client, log logging.Logger) ReportArchive {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &reportArchive{client: client, logger: log, now: time.Now}
}

// ReportKey partitions reports by UTC day: reports/2006/01/02/<id>.json.
func ReportKey(at time.Time, id string) string {
	return reportPrefix + at.UTC().Format("2006/01/02") + "/" + id + ".json"
}

func validKey(key string) bool {
	if !strings.HasPrefix(key, reportPrefix) || strings.Contains(key, "..") {
		return false
	}
	return path.Ext(key) == ".json"
}

func (r *reportArchive) PutReport(ctx context.Context, id string, report interface{}, metadata map[string]string) (*ReportInfo, error) {
	if err := r.client.checkClosed(); err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, "/\\") {
		return nil, ErrInvalidKey.WithDetail(id)
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode report")
	}

	key := ReportKey(r.now(), id)
	info, err := r.client.api.PutObject(ctx, r.client.Bucket(), key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  reportContentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCompoundArchiveFailed, "failed to archive report").WithDetail(key)
	}
	r.logger.Debug("report archived", logging.String("key", key), logging.Int64("size", info.Size))
	return &ReportInfo{
		Key:          key,
		Size:         int64(len(data)),
		ETag:         info.ETag,
		LastModified: r.now().UTC(),
		Metadata:     metadata,
	}, nil
}

func (r *reportArchive) GetReport(ctx context.Context, key string, target interface{}) error {
	if err := r.client.checkClosed(); err != nil {
		return err
	}
	if !validKey(key) {
		return ErrInvalidKey.WithDetail(key)
	}
	obj, err := r.client.api.GetObject(ctx, r.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return mapObjectError(err, key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// The SDK defers NoSuchKey until the first read.
		return mapObjectError(err, key)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode report").WithDetail(key)
	}
	return nil
}

func (r *reportArchive) Exists(ctx context.Context, key string) (bool, error) {
	if err := r.client.checkClosed(); err != nil {
		return false, err
	}
	_, err := r.client.api.StatObject(ctx, r.client.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CodeStorageError, "failed to stat report")
	}
	return true, nil
}

// List returns up to limit reports under reports/<prefix>, newest first.
func (r *reportArchive) List(ctx context.Context, prefix string, limit int) ([]ReportInfo, error) {
	if err := r.client.checkClosed(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := r.client.api.ListObjects(ctx, r.client.Bucket(), minio.ListObjectsOptions{
		Prefix:    reportPrefix + strings.TrimPrefix(prefix, reportPrefix),
		Recursive: true,
	})
	var out []ReportInfo
	for obj := range ch {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.CodeStorageError, "failed to list reports")
		}
		out = append(out, ReportInfo{Key: obj.Key, Size: obj.Size, ETag: obj.ETag, LastModified: obj.LastModified})
	}
	// Day-partitioned keys sort chronologically.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *reportArchive) Delete(ctx context.Context, key string) error {
	if err := r.client.checkClosed(); err != nil {
		return err
	}
	if !validKey(key) {
		return ErrInvalidKey.WithDetail(key)
	}
	if err := r.client.api.RemoveObject(ctx, r.client.Bucket(), key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to delete report").WithDetail(key)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func mapObjectError(err error, key string) error {
	if isNoSuchKey(err) {
		return ErrReportNotFound.WithDetail(key)
	}
	return errors.Wrap(err, errors.CodeStorageError, "failed to read report").WithDetail(key)
}
