package blobstore

import "errors"

var (
	ErrBlobNotFound   = errors.New("blob not found")
	ErrRunConflict    = errors.New("another writer committed a run with the same sequence number")
	ErrRunBlobName    = errors.New("the blob name is not a run blob name")
	ErrRunRecord      = errors.New("the run blob content is invalid")
	ErrRunCacheConfig = errors.New("the run cache size must be positive")
)
