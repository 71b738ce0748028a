// Package container wraps the parallel codec in the on-disk envelope: a single
// mode byte followed by the payload.
//
//	'C' payload is the RLE pairs of every chunk, in chunk order
//	'U' payload is the original bytes, stored when RLE would not shrink them
//
// There is no length prefix, checksum or version field.
package container

import (
	"github.com/jsphweid/parle/constants"
	"github.com/jsphweid/parle/dispatch"
	"github.com/jsphweid/parle/model"
	"github.com/jsphweid/parle/rle"
)

type Option = dispatch.Option

var (
	WithWorkers  = dispatch.WithWorkers
	WithReporter = dispatch.WithReporter
)

// Compress encodes data and picks the smaller representation. Ties, including
// empty input, are stored uncompressed.
func Compress(data []byte, opts ...Option) ([]byte, model.Stats, error) {
	d := dispatch.New(opts...)
	stats := model.Stats{RawSize: len(data), Workers: d.Workers()}

	encoded, err := d.Encode(data)
	if err != nil {
		return nil, stats, err
	}
	stats.EncodedSize = len(encoded)

	var out []byte
	if len(encoded) < len(data) {
		stats.Mode = model.ModeCompressed
		out = make([]byte, 0, constants.HeaderSize+len(encoded))
		out = append(out, byte(model.ModeCompressed))
		out = append(out, encoded...)
	} else {
		stats.Mode = model.ModeUncompressed
		out = make([]byte, 0, constants.HeaderSize+len(data))
		out = append(out, byte(model.ModeUncompressed))
		out = append(out, data...)
	}
	stats.ContainerSize = len(out)
	return out, stats, nil
}

// Decompress reverses Compress. The worker count used here has no effect on
// the output.
func Decompress(data []byte, opts ...Option) ([]byte, model.Stats, error) {
	d := dispatch.New(opts...)
	stats := model.Stats{ContainerSize: len(data), Workers: d.Workers()}

	mode, payload, err := split(data)
	if err != nil {
		return nil, stats, err
	}
	stats.Mode = mode

	var out []byte
	switch mode {
	case model.ModeCompressed:
		stats.EncodedSize = len(payload)
		out, err = d.Decode(payload)
		if err != nil {
			return nil, stats, err
		}
	case model.ModeUncompressed:
		out = make([]byte, len(payload))
		copy(out, payload)
	}
	stats.RawSize = len(out)
	return out, stats, nil
}

// Inspect reads the header and validates the payload without expanding it.
func Inspect(data []byte) (model.Header, error) {
	mode, payload, err := split(data)
	if err != nil {
		return model.Header{}, err
	}

	h := model.Header{Mode: mode, PayloadSize: len(payload)}
	if mode == model.ModeUncompressed {
		h.DecodedSize = len(payload)
		return h, nil
	}

	size, err := rle.DecodedSize(payload, model.Range{Start: 0, End: len(payload)})
	if err != nil {
		return h, err
	}
	h.Pairs = len(payload) / constants.PairSize
	h.DecodedSize = size
	return h, nil
}

func split(data []byte) (model.Mode, []byte, error) {
	if len(data) < constants.HeaderSize {
		return 0, nil, model.NewFormatError(-1, "missing header")
	}
	mode := model.Mode(data[0])
	if !mode.Valid() {
		return mode, nil, model.NewFormatError(0, "unknown header byte 0x%02x", data[0])
	}
	return mode, data[constants.HeaderSize:], nil
}
