// Package rle implements the byte-oriented run-length codec used for a single
// chunk.
//
// An encoded chunk is a flat sequence of (value, count) pairs, two bytes each,
// with count in 1..255. Longer runs are split into several pairs.
//
// Chunks are encoded independently: a run is never carried across the end of
// the range being encoded, even when the bytes on either side are identical.
// Encoding "AAAAAAAA" as one chunk gives (0x41, 8), while splitting it into
// two chunks of four gives (0x41, 4), (0x41, 4). Merging runs across chunks
// would make every chunk depend on its neighbour and is deliberately not done.
package rle
