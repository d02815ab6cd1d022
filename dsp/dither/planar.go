package dither

// Planar quantizes multichannel blocks with one Quantizer per channel.
type Planar struct {
	qs []*Quantizer
}

// NewPlanar returns quantizers for channels channels sharing opts. With
// WithSeed each channel draws from its own stream of that seed.
func NewPlanar(channels int, opts ...Option) (*Planar, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	p := &Planar{qs: make([]*Quantizer, max(channels, 0))}
	for ch := range p.qs {
		p.qs[ch] = newQuantizer(cfg, uint64(ch))
	}
	return p, nil
}

// Channels returns the channel count.
func (p *Planar) Channels() int {
	return len(p.qs)
}

// Channel returns the quantizer of channel ch.
func (p *Planar) Channel(ch int) *Quantizer {
	return p.qs[ch]
}

// InterleaveInt quantizes the leading frames of block into interleaved
// integer PCM and returns the frame count. It needs one slice per channel.
func (p *Planar) InterleaveInt(dst []int, block [][]float32) int {
	nch := len(p.qs)
	if nch == 0 || len(block) < nch {
		return 0
	}

	n := len(dst) / nch
	for _, ch := range block[:nch] {
		n = min(n, len(ch))
	}

	for ch, q := range p.qs {
		src := block[ch]
		for i := 0; i < n; i++ {
			dst[i*nch+ch] = q.ProcessInteger(float64(src[i]))
		}
	}
	return n
}

// Reset clears every channel's noise shaping history.
func (p *Planar) Reset() {
	for _, q := range p.qs {
		q.Reset()
	}
}
