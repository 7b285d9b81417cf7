package mmrtesting

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/forestrie/go-merklelog/mmrbatch"
	"github.com/stretchr/testify/require"
)

// HashNum returns the sha256 of num encoded as 8 big endian bytes. Tests use
// it as the value of the node at position num.
func HashNum(num uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, num)
	h := sha256.New()
	h.Write(b)
	return h.Sum(nil)
}

// NumberedElems returns count elements, the i'th being HashNum(start+i), so
// every element is identified by the position it is staged at.
func NumberedElems(start uint64, count int) [][]byte {
	elems := make([][]byte, count)
	for i := range elems {
		elems[i] = HashNum(start + uint64(i))
	}
	return elems
}

func (c *TestContext) NewForkID() mmrbatch.ForkID {
	id, err := mmrbatch.NewForkID()
	require.NoError(c.T, err)
	return id
}
