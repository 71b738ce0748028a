package model

import (
	"fmt"
	"time"
)

// Mode is the one byte header at the front of every container.
type Mode byte

const (
	ModeCompressed   Mode = 'C'
	ModeUncompressed Mode = 'U'
)

func (m Mode) Valid() bool {
	return m == ModeCompressed || m == ModeUncompressed
}

func (m Mode) String() string {
	switch m {
	case ModeCompressed:
		return "compressed"
	case ModeUncompressed:
		return "uncompressed"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(m))
	}
}

// Stats summarizes a single compress or decompress call.
type Stats struct {
	Mode          Mode
	RawSize       int
	EncodedSize   int // length of the RLE payload, even when Mode is 'U'
	ContainerSize int
	Workers       int
}

// Ratio is ContainerSize / RawSize. An empty input reports 0.
func (s Stats) Ratio() float64 {
	if s.RawSize == 0 {
		return 0
	}
	return float64(s.ContainerSize) / float64(s.RawSize)
}

// Header is what can be learned about a container without expanding it.
type Header struct {
	Mode        Mode
	PayloadSize int
	Pairs       int
	DecodedSize int
}

// Manifest is the record kept for a compressed file.
type Manifest struct {
	Name          string
	Mode          Mode
	RawSize       int64
	ContainerSize int64
	Digest        string
	Workers       int
	CreatedAt     time.Time
}
