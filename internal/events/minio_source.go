package events

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

const objectCreatedEvent = "s3:ObjectCreated:*"

// RecordEvent announces an exception-record document dropped into the bucket.
type RecordEvent struct {
	ObjectKey string
	Name      string
	EventName string
}

type RecordEventSource interface {
	Run(ctx context.Context, handler func(context.Context, RecordEvent) error) error
}

type MinioRecordEventSource struct {
	client *minio.Client
	bucket string
	prefix string
	suffix string
}

func NewMinioRecordEventSource(client *minio.Client, bucket string, prefix string, suffix string) *MinioRecordEventSource {
	return &MinioRecordEventSource{
		client: client,
		bucket: bucket,
		prefix: prefix,
		suffix: suffix,
	}
}

// Run blocks until ctx is cancelled or the notification stream fails. Keys
// that do not sit under the prefix with the suffix are skipped.
func (s *MinioRecordEventSource) Run(ctx context.Context, handler func(context.Context, RecordEvent) error) error {
	notificationCh := s.client.ListenBucketNotification(ctx, s.bucket, s.prefix, s.suffix, []string{objectCreatedEvent})
	for {
		select {
		case <-ctx.Done():
			return nil
		case info, ok := <-notificationCh:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("minio notification stream closed")
			}
			if info.Err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("minio notification stream error: %w", info.Err)
			}
			for _, record := range info.Records {
				objectKey, err := decodeObjectKey(record.S3.Object.Key)
				if err != nil {
					continue
				}
				name, err := parseObjectKey(objectKey, s.prefix, s.suffix)
				if err != nil {
					continue
				}
				event := RecordEvent{
					ObjectKey: objectKey,
					Name:      name,
					EventName: record.EventName,
				}
				if err := handler(ctx, event); err != nil {
					return err
				}
			}
		}
	}
}

func decodeObjectKey(encoded string) (string, error) {
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return "", err
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", fmt.Errorf("object key is empty")
	}
	return decoded, nil
}

// parseObjectKey returns the object name without prefix or suffix. Only
// objects directly under the prefix qualify.
func parseObjectKey(objectKey, prefix, suffix string) (string, error) {
	cleaned := strings.TrimLeft(strings.ReplaceAll(objectKey, "\\", "/"), "/")
	if !strings.HasPrefix(cleaned, prefix) {
		return "", fmt.Errorf("object key %q is outside prefix %q", objectKey, prefix)
	}
	if !strings.HasSuffix(cleaned, suffix) {
		return "", fmt.Errorf("object key %q does not end with %q", objectKey, suffix)
	}
	rest := strings.TrimPrefix(cleaned, prefix)
	if strings.Contains(rest, "/") {
		return "", fmt.Errorf("object key %q is nested below the prefix", objectKey)
	}
	name := strings.TrimSpace(strings.TrimSuffix(path.Base(rest), suffix))
	if name == "" || rest == "" {
		return "", fmt.Errorf("object key %q has no name", objectKey)
	}
	return name, nil
}
