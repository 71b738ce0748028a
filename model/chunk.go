package model

import "fmt"

// Range is a half-open [Start, End) window into a buffer.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) Empty() bool {
	return r.Start == r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// ChunkEvent describes one finished chunk of a parallel encode or decode.
type ChunkEvent struct {
	Index  int
	Op     Op
	Range  Range
	OutLen int
	Err    error
}

type Op uint8

const (
	OpEncode Op = iota
	OpDecode
)

func (o Op) String() string {
	if o == OpDecode {
		return "decode"
	}
	return "encode"
}
