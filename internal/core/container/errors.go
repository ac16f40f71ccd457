package container

import "errors"

var (
	// ErrInvalidState is returned for illegal status transitions, such as
	// starting a stopped container.
	ErrInvalidState = errors.New("container: invalid state transition")
	// ErrCommandNotFound is returned when enqueueing a command no loaded
	// module declares.
	ErrCommandNotFound = errors.New("container: command not found")
	// ErrContainerNotFound is returned by host lookups for unknown ids.
	ErrContainerNotFound = errors.New("container: container not found")
)
