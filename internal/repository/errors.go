package repository

import "fmt"

// RepositoryError is a failure on the authoritative local path, the
// only class of error callers of the repository ever see.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository: %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }
