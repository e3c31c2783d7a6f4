package domain

import "errors"

var (
	ErrModNotFound  = errors.New("mod not found")
	ErrNotInstalled = errors.New("mod not found in installed list")
	ErrRepoNotFound = errors.New("repository not found")
	ErrInvalidURL   = errors.New("invalid repository URL")
	ErrInvalidRepo  = errors.New("invalid repository data")
	ErrFetchFailed  = errors.New("repository fetch failed")
)
