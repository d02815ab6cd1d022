package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/dsp/dither"
)

const wavFormatPCM = 1

var errInvalidWAV = errors.New("input is not a valid PCM WAV file")

// pcmSource streams integer PCM frames from a decoded file.
type pcmSource interface {
	// read decodes the next block into p and returns the frame count, 0
	// at the end of the data.
	read(p *buffer.Planar) (int, error)
	format() pcmFormat
	Close() error
}

type pcmFormat struct {
	rate     int
	channels int
	bitDepth int
}

// openSource picks a decoder from the file extension.
func openSource(path string, blockFrames int) (pcmSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".flac") {
		return openFLAC(path)
	}
	return openWAV(path, blockFrames)
}

// wavReader streams integer PCM frames from a WAV file.
type wavReader struct {
	file     *os.File
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	channels int
	bitDepth int
	rate     int
}

func openWAV(path string, blockFrames int) (*wavReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() || dec.WavAudioFormat != wavFormatPCM {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, errInvalidWAV)
	}
	if dec.BitDepth != 16 && dec.BitDepth != 24 && dec.BitDepth != 32 {
		_ = f.Close()
		return nil, fmt.Errorf("%s: unsupported bit depth %d", path, dec.BitDepth)
	}

	channels := int(dec.NumChans)
	return &wavReader{
		file: f,
		dec:  dec,
		buf: &audio.IntBuffer{
			Data:           make([]int, blockFrames*channels),
			Format:         dec.Format(),
			SourceBitDepth: int(dec.BitDepth),
		},
		channels: channels,
		bitDepth: int(dec.BitDepth),
		rate:     int(dec.SampleRate),
	}, nil
}

func (r *wavReader) format() pcmFormat {
	return pcmFormat{rate: r.rate, channels: r.channels, bitDepth: r.bitDepth}
}

func (r *wavReader) read(p *buffer.Planar) (int, error) {
	n, err := r.dec.PCMBuffer(r.buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	return p.DeinterleaveInt(r.buf.Data[:n-n%r.channels], r.bitDepth), nil
}

func (r *wavReader) Close() error {
	return r.file.Close()
}

// wavWriter encodes integer PCM frames into a WAV file. With a quantizer
// set, samples are dithered instead of rounded.
type wavWriter struct {
	file     *os.File
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	quant    *dither.Planar
	channels int
	bitDepth int
}

func createWAV(path string, rate, bitDepth, channels, blockFrames int, quant *dither.Planar) (*wavWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &wavWriter{
		file: f,
		enc:  wav.NewEncoder(f, rate, bitDepth, channels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Data:           make([]int, blockFrames*channels),
			Format:         &audio.Format{SampleRate: rate, NumChannels: channels},
			SourceBitDepth: bitDepth,
		},
		quant:    quant,
		channels: channels,
		bitDepth: bitDepth,
	}, nil
}

// write encodes the first frames of p.
func (w *wavWriter) write(p *buffer.Planar, frames int) error {
	data := w.buf.Data[:frames*w.channels]
	if w.quant != nil {
		w.quant.InterleaveInt(data, p.Channels(frames))
	} else {
		p.InterleaveInt(data, w.bitDepth)
	}

	out := *w.buf
	out.Data = data
	return w.enc.Write(&out)
}

// Close finalizes the WAV header and closes the file.
func (w *wavWriter) Close() error {
	return errors.Join(w.enc.Close(), w.file.Close())
}
