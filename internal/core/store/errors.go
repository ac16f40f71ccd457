package store

import "errors"

// Store-specific errors
var (
	ErrInvalidConfig    = errors.New("invalid store configuration")
	ErrOutOfRange       = errors.New("id out of configured bounds")
	ErrCapacityExceeded = errors.New("store capacity exceeded")
	ErrBufferMismatch   = errors.New("component and value buffers differ in length")
	ErrPermissionDenied = errors.New("component write not permitted at this level")
)
