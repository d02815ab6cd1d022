package biquad

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-eq/dsp/core"
	archregistry "github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

var (
	processBlockImpl     archregistry.ProcessBlockFn
	processBlockName     string
	processBlockInitOnce sync.Once
)

// coefficientCell publishes a Coefficients value to other goroutines without
// locks. seq is odd while a writer is storing taps; a reader that observes
// the same even seq before and after loading the taps holds a consistent set.
type coefficientCell struct {
	seq  atomic.Uint64
	taps [5]atomic.Uint64
}

func (c *coefficientCell) store(v Coefficients) {
	for {
		s := c.seq.Load()
		if s&1 == 0 && c.seq.CompareAndSwap(s, s+1) {
			break
		}
		runtime.Gosched()
	}

	c.taps[0].Store(math.Float64bits(v.B0))
	c.taps[1].Store(math.Float64bits(v.B1))
	c.taps[2].Store(math.Float64bits(v.B2))
	c.taps[3].Store(math.Float64bits(v.A1))
	c.taps[4].Store(math.Float64bits(v.A2))

	c.seq.Add(1)
}

// tryLoad makes one attempt at reading a consistent value.
func (c *coefficientCell) tryLoad() (Coefficients, uint64, bool) {
	s := c.seq.Load()
	if s&1 != 0 {
		return Coefficients{}, s, false
	}

	v := Coefficients{
		B0: math.Float64frombits(c.taps[0].Load()),
		B1: math.Float64frombits(c.taps[1].Load()),
		B2: math.Float64frombits(c.taps[2].Load()),
		A1: math.Float64frombits(c.taps[3].Load()),
		A2: math.Float64frombits(c.taps[4].Load()),
	}

	if c.seq.Load() != s {
		return Coefficients{}, s, false
	}

	return v, s, true
}

func (c *coefficientCell) load() Coefficients {
	for {
		if v, _, ok := c.tryLoad(); ok {
			return v
		}
		runtime.Gosched()
	}
}

// Stage is a single biquad filter with replaceable coefficients, a bypass
// flag and its own delay line.
//
// ProcessSample, ProcessBlock and Reset belong to the audio goroutine.
// ReplaceCoefficients, Coefficients, SetBypassed and Bypassed may be called
// from any goroutine.
type Stage struct {
	cell     coefficientCell
	bypassed atomic.Bool

	// Owned by the audio goroutine.
	active    Coefficients
	activeSeq uint64
	d0, d1    float64
}

// NewStage returns a Stage initialized with the given coefficients and zero
// state.
func NewStage(c Coefficients) *Stage {
	s := &Stage{}
	s.Init(c)
	return s
}

// Init installs c and clears the delay line. It must not race with
// processing; use it when building a chain, ReplaceCoefficients afterwards.
func (s *Stage) Init(c Coefficients) {
	s.cell.store(c)
	s.active = c
	s.activeSeq = s.cell.seq.Load()
	s.d0, s.d1 = 0, 0
}

// ReplaceCoefficients publishes c as the stage's coefficient set. The audio
// side switches to it before its next sample or block; the delay line is
// kept so the response changes without restarting the filter.
func (s *Stage) ReplaceCoefficients(c Coefficients) {
	s.cell.store(c)
}

// Coefficients returns the most recently published coefficient set.
func (s *Stage) Coefficients() Coefficients {
	return s.cell.load()
}

// SetBypassed toggles passthrough. A bypassed stage leaves samples untouched
// and freezes its delay line.
func (s *Stage) SetBypassed(bypassed bool) {
	s.bypassed.Store(bypassed)
}

// Bypassed reports whether the stage is in passthrough.
func (s *Stage) Bypassed() bool {
	return s.bypassed.Load()
}

// sync adopts a pending coefficient set. If a writer is mid-update the
// previous set stays active and the next call tries again.
func (s *Stage) sync() {
	if s.cell.seq.Load() == s.activeSeq {
		return
	}
	if v, seq, ok := s.cell.tryLoad(); ok {
		s.active = v
		s.activeSeq = seq
	}
}

// ProcessSample filters one input sample and returns the output.
func (s *Stage) ProcessSample(x float64) float64 {
	if s.bypassed.Load() {
		return x
	}
	s.sync()

	c := &s.active
	y := c.B0*x + s.d0
	s.d0 = core.FlushDenormals(c.B1*x - c.A1*y + s.d1)
	s.d1 = core.FlushDenormals(c.B2*x - c.A2*y)

	return y
}

// ProcessBlock filters buf in-place. One coefficient set is used for the
// whole block. Zero-alloc.
func (s *Stage) ProcessBlock(buf []float32) {
	if len(buf) == 0 || s.bypassed.Load() {
		return
	}
	processBlockInitOnce.Do(initProcessBlockKernel)
	s.sync()

	c := archregistry.Coefficients{
		B0: s.active.B0,
		B1: s.active.B1,
		B2: s.active.B2,
		A1: s.active.A1,
		A2: s.active.A2,
	}

	d0, d1 := processBlockImpl(c, s.d0, s.d1, buf)
	s.d0 = core.FlushDenormals(d0)
	s.d1 = core.FlushDenormals(d1)
}

// Reset clears the delay line to zero.
func (s *Stage) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// State returns the current delay-line state [d0, d1].
func (s *Stage) State() [2]float64 {
	return [2]float64{s.d0, s.d1}
}

// SetState restores a previously saved delay-line state.
func (s *Stage) SetState(state [2]float64) {
	s.d0 = state[0]
	s.d1 = state[1]
}

// KernelName reports which block kernel ProcessBlock dispatches to.
func KernelName() string {
	processBlockInitOnce.Do(initProcessBlockKernel)
	return processBlockName
}

func initProcessBlockKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil {
		panic("biquad: no ProcessBlock kernel registered (missing generic fallback?)")
	}

	if entry.ProcessBlock == nil {
		panic("biquad: selected kernel missing ProcessBlock")
	}

	processBlockImpl = entry.ProcessBlock
	processBlockName = entry.Name
}
