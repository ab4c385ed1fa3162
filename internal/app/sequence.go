package app

import "context"

// SequenceAllocator mints unique, strictly increasing integers per named sequence.
//
// Next must be a single atomic read-modify-write against the backing store: concurrent
// callers asking for the same name always observe pairwise distinct values. A sequence
// that does not exist yet starts at 0, so its first Next returns 1.
//
// Reset sets the counter so that the following Next returns value+1. It is an
// administrative operation and is not safe to run concurrently with Next on the same name.
type SequenceAllocator interface {
	Next(ctx context.Context, name string) (int64, error)
	Reset(ctx context.Context, name string, value int64) error
}
