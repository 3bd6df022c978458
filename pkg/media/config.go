package media

import "time"

// DefaultMaxSize is the largest accepted screenshot.
const DefaultMaxSize int64 = 5 << 20

// DefaultAllowedTypes are the image types accepted as receipts.
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// S3Config configures S3Host. An empty Bucket disables screenshot uploads in bizdesk.
type S3Config struct {
	Bucket         string        `env:"MEDIA_S3_BUCKET"`
	Region         string        `env:"MEDIA_S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string        `env:"MEDIA_S3_ACCESS_KEY_ID"`
	SecretKey      string        `env:"MEDIA_S3_SECRET_KEY"`
	Endpoint       string        `env:"MEDIA_S3_ENDPOINT"` // S3-compatible services
	BaseURL        string        `env:"MEDIA_S3_BASE_URL"` // public URL prefix of the bucket
	ForcePathStyle bool          `env:"MEDIA_S3_FORCE_PATH_STYLE" envDefault:"false"`
	MaxSize        int64         `env:"MEDIA_MAX_SIZE" envDefault:"5242880"`
	UploadTimeout  time.Duration `env:"MEDIA_UPLOAD_TIMEOUT" envDefault:"30s"`
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }
