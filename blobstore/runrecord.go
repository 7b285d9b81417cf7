package blobstore

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// runRecord is the content of a run blob. Elems holds the elements already
// encoded by the store's element codec.
type runRecord struct {
	Start uint64   `cbor:"1,keyasint"`
	Fork  []byte   `cbor:"2,keyasint"`
	Elems [][]byte `cbor:"3,keyasint"`
}

type runCodec struct {
	em cbor.EncMode
	dm cbor.DecMode
}

func newRunCodec() (runCodec, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return runCodec{}, err
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return runCodec{}, err
	}
	return runCodec{em: em, dm: dm}, nil
}

func (c runCodec) marshal(r runRecord) ([]byte, error) {
	return c.em.Marshal(r)
}

// unmarshal decodes the run blob at blobPath and checks it holds the run its
// name describes.
func (c runCodec) unmarshal(blobPath string, data []byte) (runRecord, error) {
	var r runRecord
	if err := c.dm.Unmarshal(data, &r); err != nil {
		return runRecord{}, fmt.Errorf("%w: %s: %v", ErrRunRecord, blobPath, err)
	}
	name, err := ParseRunBlobPath(blobPath)
	if err != nil {
		return runRecord{}, err
	}
	if name.Start != r.Start || name.Count != uint64(len(r.Elems)) {
		return runRecord{}, fmt.Errorf(
			"%w: %s: run [%d, +%d) does not match the blob name",
			ErrRunRecord, blobPath, r.Start, len(r.Elems))
	}
	return r, nil
}
