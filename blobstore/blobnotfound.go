package blobstore

import (
	"errors"
	"fmt"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

const (
	azblobBlobNotFound    = "BlobNotFound"
	azblobConditionNotMet = "ConditionNotMet"
)

// wrapBlobNotFound translates the azure sdk blob not found error for
// blobPath to ErrBlobNotFound. Any other err, including nil, is returned as
// is.
func wrapBlobNotFound(blobPath string, err error) error {
	if err == nil || azureStorageErrorCode(err) != azblobBlobNotFound {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrBlobNotFound, blobPath, err)
}

// wrapRunConflict translates the failed create-only condition on a run put
// to ErrRunConflict.
func wrapRunConflict(blobPath string, err error) error {
	if err == nil || azureStorageErrorCode(err) != azblobConditionNotMet {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrRunConflict, blobPath, err)
}

func IsBlobNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrBlobNotFound) || azureStorageErrorCode(err) == azblobBlobNotFound
}

func azureStorageErrorCode(err error) string {
	var ierr *azStorageBlob.InternalError
	if !errors.As(err, &ierr) || ierr == nil {
		return ""
	}
	serr := &azStorageBlob.StorageError{}
	if !ierr.As(&serr) {
		return ""
	}
	return string(serr.ErrorCode)
}
