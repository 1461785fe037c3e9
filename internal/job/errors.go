package job

import "github.com/pkg/errors"

var (
	ErrInvalidStatus = errors.New("status must be one of applied, ignored or null")
	ErrInvalidSort   = errors.New("unknown sort key")
)

var ErrJobNotFound = errors.New("job not found")
