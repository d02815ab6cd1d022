package eq

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/dsp/core"
)

// ErrUnsupportedLayout is returned for channel layouts other than mono and
// stereo.
var ErrUnsupportedLayout = errors.New("eq: only mono and stereo layouts are supported")

// ErrNilStore is returned when a Processor is built without a ParameterStore.
var ErrNilStore = errors.New("eq: parameter store is nil")

// BlockObserver receives every processed block on the audio goroutine.
// Implementations must not allocate, lock or block.
type BlockObserver interface {
	ObserveBlock(channels [][]float32)
}

// Option configures Processor behavior beyond the core config.
type Option func(*processorOptions)

type processorOptions struct {
	changeGuard bool
	observer    BlockObserver
}

// WithChangeGuard skips coefficient recomputation for blocks whose settings
// snapshot equals the previous one. Output is identical either way.
func WithChangeGuard() Option {
	return func(o *processorOptions) {
		o.changeGuard = true
	}
}

// WithObserver hands every processed block to obs.
func WithObserver(obs BlockObserver) Option {
	return func(o *processorOptions) {
		o.observer = obs
	}
}

// Processor runs one ChannelChain per channel and keeps the chains in sync
// with a ParameterStore.
//
// Prepare, ProcessBlock and ProcessInterleaved belong to one audio
// goroutine. The store may be written concurrently from anywhere.
type Processor struct {
	store  *ParameterStore
	cfg    core.ProcessorConfig
	opts   processorOptions
	chains []*ChannelChain

	prepared bool
	coeffs   ChainCoefficients
	last     Settings
	haveLast bool

	planar *buffer.Planar
}

// NewProcessor creates a Processor reading parameters from store.
func NewProcessor(store *ParameterStore, opts ...core.ProcessorOption) (*Processor, error) {
	return NewProcessorWithOptions(store, opts)
}

// NewProcessorWithOptions creates a Processor with core and processor
// options.
func NewProcessorWithOptions(store *ParameterStore, coreOpts []core.ProcessorOption, opts ...Option) (*Processor, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	cfg := core.ApplyProcessorOptions(coreOpts...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("eq: %w", err)
	}
	if cfg.Channels < 1 || cfg.Channels > 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, cfg.Channels)
	}

	p := &Processor{
		store:  store,
		cfg:    cfg,
		chains: make([]*ChannelChain, cfg.Channels),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&p.opts)
		}
	}
	for i := range p.chains {
		p.chains[i] = NewChannelChain()
	}
	return p, nil
}

// Prepare readies every chain for a stream at sampleRate with blocks of at
// most maxBlockSize frames. It clears all filter state and installs the
// current parameters. Prepare may allocate; call it outside the audio
// callback.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize int) error {
	cfg := p.cfg
	cfg.SampleRate = sampleRate
	cfg.BlockSize = maxBlockSize
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("eq: prepare: %w", err)
	}
	p.cfg = cfg

	s := p.store.Snapshot()
	p.coeffs.Compute(s, sampleRate)
	for _, c := range p.chains {
		c.Prepare(sampleRate, maxBlockSize)
		c.Install(&p.coeffs)
	}

	if p.planar == nil || p.planar.Frames() < maxBlockSize {
		p.planar = buffer.NewPlanar(len(p.chains), maxBlockSize)
	}

	p.last = s
	p.haveLast = true
	p.prepared = true
	return nil
}

// ProcessBlock filters planar channel buffers in-place. channels beyond the
// configured count are left untouched. It panics if Prepare has not been
// called.
func (p *Processor) ProcessBlock(channels [][]float32) {
	if !p.prepared {
		panic("eq: ProcessBlock called before Prepare")
	}

	p.refresh()

	n := min(len(channels), len(p.chains))
	for ch := 0; ch < n; ch++ {
		p.chains[ch].ProcessBlock(channels[ch])
	}

	if p.opts.observer != nil {
		p.opts.observer.ObserveBlock(channels[:n])
	}
}

// ProcessInterleaved filters an interleaved buffer in-place. Its length
// must be a multiple of the channel count; trailing partial frames are left
// untouched. Blocks longer than the prepared size are split.
func (p *Processor) ProcessInterleaved(buf []float32) {
	if !p.prepared {
		panic("eq: ProcessInterleaved called before Prepare")
	}

	channels := len(p.chains)
	maxFrames := p.planar.Frames()
	frames := len(buf) / channels

	for start := 0; start < frames; start += maxFrames {
		end := min(start+maxFrames, frames)
		chunk := buf[start*channels : end*channels]

		p.planar.Deinterleave(chunk)
		p.ProcessBlock(p.planar.Channels(end - start))
		p.planar.Interleave(chunk)
	}
}

// refresh snapshots the store and installs fresh coefficients.
func (p *Processor) refresh() {
	s := p.store.Snapshot()
	if p.opts.changeGuard && p.haveLast && s == p.last {
		return
	}

	p.coeffs.Compute(s, p.cfg.SampleRate)
	for _, c := range p.chains {
		c.Install(&p.coeffs)
	}
	p.last = s
	p.haveLast = true
}

// Chain returns the filter chain of channel ch.
func (p *Processor) Chain(ch int) *ChannelChain {
	return p.chains[ch]
}

// Channels returns the configured channel count.
func (p *Processor) Channels() int {
	return len(p.chains)
}

// SampleRate returns the rate of the last Prepare, or the configured
// default before that.
func (p *Processor) SampleRate() float64 {
	return p.cfg.SampleRate
}

// MaxBlockSize returns the block size of the last Prepare.
func (p *Processor) MaxBlockSize() int {
	return p.cfg.BlockSize
}

// Prepared reports whether Prepare has succeeded.
func (p *Processor) Prepared() bool {
	return p.prepared
}

// Store returns the parameter store the processor reads.
func (p *Processor) Store() *ParameterStore {
	return p.store
}
