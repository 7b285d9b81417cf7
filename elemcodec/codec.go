// Package elemcodec converts mmr elements to and from the bytes the durable
// stores persist.
package elemcodec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var ErrCodec = errors.New("element codec failure")

type Codec[E any] interface {
	Encode(elem E) ([]byte, error)
	Decode(data []byte) (E, error)
}

// Bytes stores byte slice elements as is. Decode copies, so callers may
// retain the result after the store reuses its buffer.
type Bytes struct{}

func (Bytes) Encode(elem []byte) ([]byte, error) { return elem, nil }
func (Bytes) Decode(data []byte) ([]byte, error) { return bytes.Clone(data), nil }

// CBOR encodes elements with core deterministic CBOR, so equal elements
// always produce identical bytes.
type CBOR[E any] struct {
	em cbor.EncMode
	dm cbor.DecMode
}

func NewCBOR[E any]() (CBOR[E], error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return CBOR[E]{}, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	dm, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return CBOR[E]{}, fmt.Errorf("%w: %v", ErrCodec, err)
	}
	return CBOR[E]{em: em, dm: dm}, nil
}

func (c CBOR[E]) Encode(elem E) ([]byte, error) {
	data, err := c.em.Marshal(elem)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrCodec, err)
	}
	return data, nil
}

func (c CBOR[E]) Decode(data []byte) (E, error) {
	var elem E
	if err := c.dm.Unmarshal(data, &elem); err != nil {
		return elem, fmt.Errorf("%w: decode: %v", ErrCodec, err)
	}
	return elem, nil
}

// EncodeAll encodes elems in order
func EncodeAll[E any](codec Codec[E], elems []E) ([][]byte, error) {
	out := make([][]byte, len(elems))
	for i, elem := range elems {
		data, err := codec.Encode(elem)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}
