package leveldbstore

import "errors"

var (
	ErrStoreClosed = errors.New("the leveldb store is closed")
	ErrSizeCorrupt = errors.New("the stored mmr size record is not 8 bytes")
)
