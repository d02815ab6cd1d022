package buffer

import "math"

// Planar holds one float32 slice per channel, all sharing a single backing
// array. Frames is the capacity of each channel.
type Planar struct {
	data  []float32
	chans [][]float32
	views [][]float32
}

// NewPlanar returns a zero-filled buffer of channels x frames samples.
// Negative sizes are treated as zero.
func NewPlanar(channels, frames int) *Planar {
	channels = max(channels, 0)
	frames = max(frames, 0)

	p := &Planar{
		data:  make([]float32, channels*frames),
		chans: make([][]float32, channels),
		views: make([][]float32, channels),
	}
	for ch := range p.chans {
		p.chans[ch] = p.data[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}
	return p
}

// NumChannels returns the channel count.
func (p *Planar) NumChannels() int {
	return len(p.chans)
}

// Frames returns the per-channel capacity.
func (p *Planar) Frames() int {
	if len(p.chans) == 0 {
		return 0
	}
	return len(p.chans[0])
}

// Channel returns the full slice of channel ch.
func (p *Planar) Channel(ch int) []float32 {
	return p.chans[ch]
}

// Channels returns every channel truncated to n frames. The returned outer
// slice is reused by the next call.
func (p *Planar) Channels(n int) [][]float32 {
	n = min(max(n, 0), p.Frames())
	for ch := range p.chans {
		p.views[ch] = p.chans[ch][:n]
	}
	return p.views
}

// Zero clears every sample.
func (p *Planar) Zero() {
	clear(p.data)
}

// Deinterleave copies interleaved frames from src into the leading frames
// of each channel and returns the frame count. Frames beyond the capacity
// and trailing partial frames are ignored.
func (p *Planar) Deinterleave(src []float32) int {
	nch := len(p.chans)
	if nch == 0 {
		return 0
	}
	n := min(len(src)/nch, p.Frames())
	for ch, dst := range p.chans {
		for i := 0; i < n; i++ {
			dst[i] = src[i*nch+ch]
		}
	}
	return n
}

// Interleave writes the leading frames of each channel into dst and
// returns the frame count.
func (p *Planar) Interleave(dst []float32) int {
	nch := len(p.chans)
	if nch == 0 {
		return 0
	}
	n := min(len(dst)/nch, p.Frames())
	for ch, src := range p.chans {
		for i := 0; i < n; i++ {
			dst[i*nch+ch] = src[i]
		}
	}
	return n
}

// DeinterleaveInt converts interleaved integer PCM of the given bit depth
// to float32 in [-1, 1) and returns the frame count.
func (p *Planar) DeinterleaveInt(src []int, bitDepth int) int {
	nch := len(p.chans)
	if nch == 0 {
		return 0
	}
	scale := 1 / fullScale(bitDepth)
	n := min(len(src)/nch, p.Frames())
	for ch, dst := range p.chans {
		for i := 0; i < n; i++ {
			dst[i] = float32(float64(src[i*nch+ch]) * scale)
		}
	}
	return n
}

// InterleaveInt converts the leading frames back to integer PCM of the
// given bit depth, rounding to the nearest step and clipping to the
// representable range.
func (p *Planar) InterleaveInt(dst []int, bitDepth int) int {
	nch := len(p.chans)
	if nch == 0 {
		return 0
	}
	fs := fullScale(bitDepth)
	lo, hi := -fs, fs-1
	n := min(len(dst)/nch, p.Frames())
	for ch, src := range p.chans {
		for i := 0; i < n; i++ {
			v := math.Round(float64(src[i]) * fs)
			switch {
			case v > hi:
				v = hi
			case v < lo:
				v = lo
			}
			dst[i*nch+ch] = int(v)
		}
	}
	return n
}

func fullScale(bitDepth int) float64 {
	if bitDepth <= 1 || bitDepth > 32 {
		bitDepth = 16
	}
	return float64(int64(1) << (bitDepth - 1))
}
