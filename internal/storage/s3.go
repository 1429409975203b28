package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lacajita/backend/internal/config"
)

// S3ImageStore keeps images in an S3-compatible bucket.
type S3ImageStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
	maxBytes int64
}

// NewS3ImageStore configures a client and uploader targeting the object store.
func NewS3ImageStore(ctx context.Context, cfg config.ObjectStoreConfig, maxBytes int64) (*S3ImageStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3ImageStore{
		client:   client,
		uploader: uploader,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Save uploads the image and returns its public location, or the key when no
// public base URL is configured.
func (s *S3ImageStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := validateImageName(name); err != nil {
		return "", err
	}

	data, err := readLimited(r, s.maxBytes)
	if err != nil {
		return "", err
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(name)),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 storage upload %s: %w", name, err)
	}

	if s.baseURL == "" {
		return name, nil
	}
	return fmt.Sprintf("%s/%s", s.baseURL, name), nil
}

// Open streams the named object.
func (s *S3ImageStore) Open(ctx context.Context, name string) (*Image, error) {
	if err := validateImageName(name); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 storage get %s: %w", name, err)
	}

	img := &Image{
		ReadCloser:  out.Body,
		Info:        ImageInfo{Filename: name, SizeBytes: aws.ToInt64(out.ContentLength)},
		ContentType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		img.Info.Modified = *out.LastModified
	}
	if img.ContentType == "" {
		img.ContentType = contentType(name)
	}
	return img, nil
}

// List returns the bucket's images sorted by name.
func (s *S3ImageStore) List(ctx context.Context) ([]ImageInfo, error) {
	items := []ImageInfo{}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 storage list: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.Contains(key, "/") || !AllowedExtension(key) {
				continue
			}
			info := ImageInfo{Filename: key, SizeBytes: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				info.Modified = *obj.LastModified
			}
			items = append(items, info)
		}
	}
	sortByName(items)
	return items, nil
}

func isNotFound(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
