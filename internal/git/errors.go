package git

import "errors"

var (
	// ErrRepoNotFound means no repository exists at the path.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrInvalidRepo means the path holds something that cannot be used as
	// a working tree, e.g. a bare or corrupt repository.
	ErrInvalidRepo = errors.New("invalid repository")

	ErrOperationFailed = errors.New("operation failed")

	// ErrNoHead means the repository has no commits yet.
	ErrNoHead = errors.New("no HEAD commit")

	ErrDetachedHead = errors.New("HEAD is detached")

	// ErrNoRemote means the origin remote or an upstream is missing.
	ErrNoRemote = errors.New("no remote configured")

	ErrBranchNotFound = errors.New("branch not found")
)
