// Package mmrbatch stages mmr node writes in memory and merges them with a
// durable backing store on read.
//
// The mmr algorithm appends nodes strictly in position order. During a single
// construction or verification pass those appends are held as runs of
// contiguous positions in a [Batch]. Reads consult the pending runs, newest
// first, before falling through to the store. [Batch.Commit] hands each run
// to the store, in the order it was appended, tagged with a fork identifier
// so that the store can keep speculative branches apart.
//
// The store is reached only through two narrow capabilities, [ReadOps] and
// [WriteOps]. A store may provide either or both.
//
// The read merge assumes runs are appended in non decreasing position order
// and do not overlap. Re-staging the same range with new values is tolerated,
// the newest run shadows the older one, but runs that start below an earlier
// run can hide pending data from reads. [Batch.Ordered] reports whether that
// contract has held for the current pending runs.
package mmrbatch
