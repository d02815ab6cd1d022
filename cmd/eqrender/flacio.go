package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tphakala/flac"

	"github.com/cwbudde/algo-eq/dsp/buffer"
)

// flacReader streams integer PCM frames from a FLAC file. Decoded FLAC
// frames rarely match the block size, so leftovers wait in pending.
type flacReader struct {
	file    *os.File
	dec     *flac.Decoder
	pending []int
	eof     bool
	pcmFormat
}

func openFLAC(path string) (*flacReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := flac.NewDecoder(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch dec.BitsPerSample {
	case 16, 24, 32:
	default:
		_ = f.Close()
		return nil, fmt.Errorf("%s: unsupported bit depth %d", path, dec.BitsPerSample)
	}

	return &flacReader{
		file: f,
		dec:  dec,
		pcmFormat: pcmFormat{
			rate:     dec.SampleRate,
			channels: dec.NChannels,
			bitDepth: dec.BitsPerSample,
		},
	}, nil
}

func (r *flacReader) format() pcmFormat {
	return r.pcmFormat
}

func (r *flacReader) read(p *buffer.Planar) (int, error) {
	want := p.Frames() * r.channels
	for !r.eof && len(r.pending) < want {
		frame, err := r.dec.Next()
		if errors.Is(err, io.EOF) {
			r.eof = true
			break
		}
		if err != nil {
			return 0, err
		}
		r.pending = appendPCM(r.pending, frame, r.bitDepth)
	}

	n := min(len(r.pending), want)
	n -= n % r.channels
	if n == 0 {
		return 0, nil
	}

	frames := p.DeinterleaveInt(r.pending[:n], r.bitDepth)
	r.pending = r.pending[:copy(r.pending, r.pending[n:])]
	return frames, nil
}

func (r *flacReader) Close() error {
	return r.file.Close()
}

// appendPCM decodes little-endian interleaved PCM bytes onto dst.
func appendPCM(dst []int, data []byte, bitDepth int) []int {
	width := bitDepth / 8
	for i := 0; i+width <= len(data); i += width {
		var v int
		switch bitDepth {
		case 16:
			v = int(int16(binary.LittleEndian.Uint16(data[i:])))
		case 24:
			u := int32(data[i]) | int32(data[i+1])<<8 | int32(data[i+2])<<16
			v = int(u<<8) >> 8
		case 32:
			v = int(int32(binary.LittleEndian.Uint32(data[i:])))
		}
		dst = append(dst, v)
	}
	return dst
}
