package media

import "errors"

var (
	ErrInvalidConfig      = errors.New("media: invalid configuration")
	ErrFailedToLoadConfig = errors.New("media: failed to load AWS config")

	ErrInvalidKey         = errors.New("media: invalid object key")
	ErrEmptyFile          = errors.New("media: file is empty")
	ErrFileTooLarge       = errors.New("media: file size exceeds maximum allowed size")
	ErrContentTypeDenied  = errors.New("media: content type is not allowed")
	ErrFailedToReadFile   = errors.New("media: failed to read file")
	ErrObjectNotFound     = errors.New("media: object not found")
	ErrBucketNotFound     = errors.New("media: bucket not found")
	ErrAccessDenied       = errors.New("media: access denied")
	ErrServiceUnavailable = errors.New("media: service temporarily unavailable")
	ErrOperationTimeout   = errors.New("media: operation timed out")
	ErrOperationCanceled  = errors.New("media: operation canceled")
)
