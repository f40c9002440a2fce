package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the subset of the S3 client used here.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// presigner issues time-limited GET links.
type presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Options configures an S3Store.
type S3Options struct {
	Bucket     string
	Prefix     string
	Region     string
	Profile    string
	PresignTTL time.Duration
}

// S3Store uploads exports to a bucket and returns presigned download links.
type S3Store struct {
	client  s3API
	presign presigner
	bucket  string
	prefix  string
	ttl     time.Duration
	now     func() time.Time
}

// NewS3Store loads the default AWS credential chain, honoring an optional
// shared-config profile.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	var cfg aws.Config
	var err error

	if opts.Profile != "" {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(opts.Region),
			config.WithSharedConfigProfile(opts.Profile),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(opts.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return newS3Store(client, s3.NewPresignClient(client), opts), nil
}

func newS3Store(client s3API, p presigner, opts S3Options) *S3Store {
	ttl := opts.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	prefix := strings.Trim(opts.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Store{
		client:  client,
		presign: p,
		bucket:  opts.Bucket,
		prefix:  prefix,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Backend implements ExportStore.
func (s *S3Store) Backend() string { return "s3" }

// Save uploads data and presigns a GET link valid for the configured TTL.
func (s *S3Store) Save(ctx context.Context, key string, data []byte, contentType string) (*Object, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	objectKey := s.prefix + k

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading to S3: %w", err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presigning S3 object: %w", err)
	}

	expires := s.now().Add(s.ttl)
	return &Object{
		Key:       objectKey,
		Backend:   s.Backend(),
		URL:       req.URL,
		Size:      int64(len(data)),
		ExpiresAt: &expires,
	}, nil
}

// Open streams an object back from the bucket.
func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + k),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading from S3: %w", err)
	}
	return out.Body, nil
}
