package constants

import "os"

func GetOutDir() string {
	path := os.Getenv("PARLE_OUT_DIR")
	if path != "" {
		return path
	}
	return "."
}

// MaxRunLength is the largest count a single (value, count) pair can hold.
const MaxRunLength = 255

// PairSize is the width of one encoded run: value byte + count byte.
const PairSize = 2

// HeaderSize is the width of the container mode byte.
const HeaderSize = 1

// MinDefaultWorkers is the floor applied to runtime.NumCPU for the default
// worker count.
const MinDefaultWorkers = 2

const Extension = ".rle"

const DefaultAddr = ":8080"

// MaxRequestBytes bounds HTTP request bodies; the whole input is held in memory.
const MaxRequestBytes = 256 * 1024 * 1024
