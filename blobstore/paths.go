package blobstore

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/forestrie/go-merklelog/mmrbatch"
)

const (
	V1MMRBatchPrefix = "v1/mmrbatch"
	// V1RunBlobNameFmt formats the sequence number, start position and
	// element count of a run
	V1RunBlobNameFmt = "%020d-%020d-%020d.run"
	V1RunBlobExt     = ".run"

	TagKeyFork  = "fork"
	TagKeyCount = "count"

	runBlobFieldWidth = 20
)

// RunName is what a run blob's name records about the run. Seq numbers the
// runs committed to a fork from zero, a run shadows every run with a lower
// Seq for the positions it covers.
type RunName struct {
	Seq   uint64
	Start uint64
	Count uint64
}

// Covers reports whether the run holds an element for pos
func (n RunName) Covers(pos uint64) bool {
	return pos >= n.Start && pos-n.Start < n.Count
}

// ForkRunsPrefix returns the blob path prefix under which every run for
// fork is stored:
//
//	{prefix}/{fork uuid}/runs/
func ForkRunsPrefix(prefix string, fork mmrbatch.ForkID) string {
	return fmt.Sprintf("%s/%s/runs/", strings.TrimSuffix(prefix, "/"), fork)
}

// RunBlobPath returns the path of the blob holding the named run. The fixed
// width fields make the listing order the commit order.
func RunBlobPath(prefix string, fork mmrbatch.ForkID, name RunName) string {
	return ForkRunsPrefix(prefix, fork) + fmt.Sprintf(V1RunBlobNameFmt, name.Seq, name.Start, name.Count)
}

// ParseRunBlobPath recovers the run name from a run blob path
func ParseRunBlobPath(blobPath string) (RunName, error) {
	base := path.Base(blobPath)
	if !strings.HasSuffix(base, V1RunBlobExt) {
		return RunName{}, fmt.Errorf("%w: %s", ErrRunBlobName, blobPath)
	}
	fields := strings.Split(strings.TrimSuffix(base, V1RunBlobExt), "-")
	if len(fields) != 3 {
		return RunName{}, fmt.Errorf("%w: %s", ErrRunBlobName, blobPath)
	}

	var values [3]uint64
	for i, field := range fields {
		if len(field) != runBlobFieldWidth {
			return RunName{}, fmt.Errorf("%w: %s", ErrRunBlobName, blobPath)
		}
		v, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return RunName{}, fmt.Errorf("%w: %s: %v", ErrRunBlobName, blobPath, err)
		}
		values[i] = v
	}
	return RunName{Seq: values[0], Start: values[1], Count: values[2]}, nil
}
