package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of *s3.Client used by S3Host.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Option configures S3Host.
type S3Option func(*s3Options)

type s3Options struct {
	client          S3Client
	httpClient      *http.Client
	clientOptions   []func(*s3.Options)
	allowedTypes    []string
	configLoadFuncs []func(*config.LoadOptions) error
}

// WithS3Client uses a pre-configured client instead of loading the AWS configuration.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) {
		o.client = client
	}
}

// WithHTTPClient sets the HTTP client of the AWS SDK.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds an AWS config load option.
func WithS3ConfigOption(opt func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) {
		o.configLoadFuncs = append(o.configLoadFuncs, opt)
	}
}

// WithS3ClientOption adds an *s3.Options mutator.
func WithS3ClientOption(opt func(*s3.Options)) S3Option {
	return func(o *s3Options) {
		o.clientOptions = append(o.clientOptions, opt)
	}
}

// WithAllowedTypes replaces DefaultAllowedTypes.
func WithAllowedTypes(types ...string) S3Option {
	return func(o *s3Options) {
		o.allowedTypes = types
	}
}

// S3Host is safe for concurrent use.
type S3Host struct {
	client        S3Client
	bucket        string
	baseURL       string
	maxSize       int64
	uploadTimeout time.Duration
	allowedTypes  []string
}

// NewS3Host creates an S3Host.
func NewS3Host(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Host, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{allowedTypes: DefaultAllowedTypes}
	for _, opt := range opts {
		opt(options)
	}

	client := options.client
	if client == nil {
		loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		if options.httpClient != nil {
			loadOpts = append(loadOpts, config.WithHTTPClient(options.httpClient))
		}
		loadOpts = append(loadOpts, options.configLoadFuncs...)

		awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.Join(ErrFailedToLoadConfig, err)
		}
		client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
			for _, opt := range options.clientOptions {
				opt(o)
			}
		})
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = fmt.Sprintf("%s/%s", strings.TrimSuffix(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &S3Host{
		client:        client,
		bucket:        cfg.Bucket,
		baseURL:       baseURL,
		maxSize:       maxSize,
		uploadTimeout: cfg.UploadTimeout,
		allowedTypes:  options.allowedTypes,
	}, nil
}

// Upload stores body under key and returns key as the reference.
// The content type is detected from the data; the declared one is only a fallback for
// formats the detector does not know.
func (h *S3Host) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if size <= 0 {
		return "", ErrEmptyFile
	}
	if size > h.maxSize {
		return "", fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, h.maxSize)
	}

	head := make([]byte, min(size, 512))
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", errors.Join(ErrFailedToReadFile, err)
	}
	head = head[:n]

	detected := detectContentType(head, contentType)
	if !slices.Contains(h.allowedTypes, detected) {
		return "", fmt.Errorf("%w: %s", ErrContentTypeDenied, detected)
	}

	if h.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.uploadTimeout)
		defer cancel()
	}

	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          io.MultiReader(bytes.NewReader(head), io.LimitReader(body, size-int64(n))),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(detected),
	})
	if err != nil {
		return "", classifyS3Error(err, "upload")
	}
	return key, nil
}

// Delete removes the object behind ref.
func (h *S3Host) Delete(ctx context.Context, ref string) error {
	key, err := cleanKey(ref)
	if err != nil {
		return err
	}
	_, err = h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	return classifyS3Error(err, "delete")
}

// Exists reports whether ref points at a stored object.
func (h *S3Host) Exists(ctx context.Context, ref string) (bool, error) {
	key, err := cleanKey(ref)
	if err != nil {
		return false, err
	}
	_, err = h.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if err = classifyS3Error(err, "head"); errors.Is(err, ErrObjectNotFound) {
		return false, nil
	}
	return false, err
}

// URL returns the public link of ref.
func (h *S3Host) URL(ref string) string {
	return h.baseURL + strings.TrimPrefix(ref, "/")
}

func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, "\\\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

func detectContentType(head []byte, declared string) string {
	detected := http.DetectContentType(head)
	if detected == "application/octet-stream" && declared != "" {
		// heic and similar formats are unknown to the sniffer
		return strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	}
	return detected
}

func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s", ErrOperationCanceled, operation)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, operation)
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, operation)
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "AccessDenied":
			return fmt.Errorf("%w: %s", ErrAccessDenied, operation)
		case "SlowDown", "ServiceUnavailable", "RequestTimeout":
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, operation)
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %s", ErrObjectNotFound, operation)
		case "NoSuchBucket":
			return ErrBucketNotFound
		default:
			return fmt.Errorf("media: %s failed (code: %s): %w", operation, code, err)
		}
	}
	return fmt.Errorf("media: %s failed: %w", operation, err)
}
