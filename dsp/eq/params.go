package eq

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-eq/dsp/core"
)

// ErrUnknownParameter is returned for a parameter id the store does not hold.
var ErrUnknownParameter = errors.New("eq: unknown parameter")

// ParameterID names a parameter in the store.
type ParameterID string

const (
	ParamLowCutFreq      ParameterID = "LowCut freq"
	ParamHighCutFreq     ParameterID = "HighCut freq"
	ParamPeakFreq        ParameterID = "Peak freq"
	ParamPeakGain        ParameterID = "Peak gain"
	ParamPeakQuality     ParameterID = "Peak quality"
	ParamLowCutSlope     ParameterID = "LowCut slope"
	ParamHighCutSlope    ParameterID = "HighCut slope"
	ParamLowCutBypassed  ParameterID = "LowCut bypassed"
	ParamPeakBypassed    ParameterID = "Peak bypassed"
	ParamHighCutBypassed ParameterID = "HighCut bypassed"
)

// ParameterKind describes how a parameter value is interpreted.
type ParameterKind int

const (
	KindFloat ParameterKind = iota
	KindChoice
	KindBool
)

// Parameter describes one entry of the layout. Values are snapped to Step
// counted from Min. Skew shapes the normalized mapping: below 1 it devotes
// more of the 0..1 range to the low end.
type Parameter struct {
	ID      ParameterID
	Kind    ParameterKind
	Min     float64
	Max     float64
	Step    float64
	Skew    float64
	Default float64
	Choices []string
}

var slopeChoices = []string{"12 dB/Oct", "24 dB/Oct", "36 dB/Oct", "48 dB/Oct"}

// layout order is the store's slot order.
var layout = [...]Parameter{
	{ID: ParamLowCutFreq, Kind: KindFloat, Min: 20, Max: 20000, Step: 1, Skew: 0.25, Default: 20},
	{ID: ParamHighCutFreq, Kind: KindFloat, Min: 20, Max: 20000, Step: 1, Skew: 0.25, Default: 20000},
	{ID: ParamPeakFreq, Kind: KindFloat, Min: 20, Max: 20000, Step: 1, Skew: 0.25, Default: 750},
	{ID: ParamPeakGain, Kind: KindFloat, Min: -24, Max: 24, Step: 0.5, Skew: 1, Default: 0},
	{ID: ParamPeakQuality, Kind: KindFloat, Min: 0.1, Max: 10, Step: 0.05, Skew: 1, Default: 1},
	{ID: ParamLowCutSlope, Kind: KindChoice, Min: 0, Max: 3, Step: 1, Skew: 1, Default: 0, Choices: slopeChoices},
	{ID: ParamHighCutSlope, Kind: KindChoice, Min: 0, Max: 3, Step: 1, Skew: 1, Default: 0, Choices: slopeChoices},
	{ID: ParamLowCutBypassed, Kind: KindBool, Min: 0, Max: 1, Step: 1, Skew: 1, Default: 0},
	{ID: ParamPeakBypassed, Kind: KindBool, Min: 0, Max: 1, Step: 1, Skew: 1, Default: 0},
	{ID: ParamHighCutBypassed, Kind: KindBool, Min: 0, Max: 1, Step: 1, Skew: 1, Default: 0},
}

const (
	slotLowCutFreq = iota
	slotHighCutFreq
	slotPeakFreq
	slotPeakGain
	slotPeakQuality
	slotLowCutSlope
	slotHighCutSlope
	slotLowCutBypassed
	slotPeakBypassed
	slotHighCutBypassed
	numSlots
)

var slotByID = func() map[ParameterID]int {
	m := make(map[ParameterID]int, len(layout))
	for i, p := range layout {
		m[p.ID] = i
	}
	return m
}()

// Parameters returns a copy of the parameter layout in store order.
func Parameters() []Parameter {
	out := make([]Parameter, len(layout))
	copy(out, layout[:])
	for i := range out {
		out[i].Choices = append([]string(nil), out[i].Choices...)
	}
	return out
}

// LookupParameter returns the layout entry for id.
func LookupParameter(id ParameterID) (Parameter, error) {
	i, ok := slotByID[id]
	if !ok {
		return Parameter{}, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return layout[i], nil
}

// Legal clamps v to the range and snaps it to the step grid.
func (p Parameter) Legal(v float64) float64 {
	if math.IsNaN(v) {
		return p.Default
	}
	v = core.Clamp(v, p.Min, p.Max)
	v = core.SnapToStep(v, p.Min, p.Step)
	return core.Clamp(v, p.Min, p.Max)
}

// Normalize maps a plain value onto 0..1 through the skewed range.
func (p Parameter) Normalize(v float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	proportion := core.Clamp((v-p.Min)/(p.Max-p.Min), 0, 1)
	if p.Skew != 1 && p.Skew > 0 {
		proportion = math.Pow(proportion, p.Skew)
	}
	return proportion
}

// Denormalize maps 0..1 back onto the plain range. The result is not
// snapped; pass it through Legal for that.
func (p Parameter) Denormalize(n float64) float64 {
	n = core.Clamp(n, 0, 1)
	if p.Skew != 1 && p.Skew > 0 && n > 0 {
		n = math.Exp(math.Log(n) / p.Skew)
	}
	return p.Min + (p.Max-p.Min)*n
}

// ParameterStore holds the current value of every parameter. Values are
// float64 bit patterns in atomics so the audio goroutine can snapshot them
// without locks while control goroutines write.
type ParameterStore struct {
	values [numSlots]atomic.Uint64
	dirty  atomic.Bool
}

// NewParameterStore returns a store holding the layout defaults. The store
// starts dirty so the first poll picks up the initial state.
func NewParameterStore() *ParameterStore {
	s := &ParameterStore{}
	for i, p := range layout {
		s.values[i].Store(math.Float64bits(p.Default))
	}
	s.dirty.Store(true)
	return s
}

// Set stores v for id after clamping and snapping it to the parameter range.
func (s *ParameterStore) Set(id ParameterID, v float64) error {
	i, ok := slotByID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	s.store(i, layout[i].Legal(v))
	return nil
}

// SetNormalized stores the value at position n (0..1) of the skewed range.
func (s *ParameterStore) SetNormalized(id ParameterID, n float64) error {
	i, ok := slotByID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	p := layout[i]
	s.store(i, p.Legal(p.Denormalize(n)))
	return nil
}

// Get returns the current plain value of id.
func (s *ParameterStore) Get(id ParameterID) (float64, error) {
	i, ok := slotByID[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return s.load(i), nil
}

// Normalized returns the current value of id mapped onto 0..1.
func (s *ParameterStore) Normalized(id ParameterID) (float64, error) {
	i, ok := slotByID[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return layout[i].Normalize(s.load(i)), nil
}

// Apply writes every field of st into the store.
func (s *ParameterStore) Apply(st Settings) {
	s.store(slotLowCutFreq, layout[slotLowCutFreq].Legal(st.LowCutFreq))
	s.store(slotHighCutFreq, layout[slotHighCutFreq].Legal(st.HighCutFreq))
	s.store(slotPeakFreq, layout[slotPeakFreq].Legal(st.PeakFreq))
	s.store(slotPeakGain, layout[slotPeakGain].Legal(st.PeakGainDB))
	s.store(slotPeakQuality, layout[slotPeakQuality].Legal(st.PeakQuality))
	s.store(slotLowCutSlope, layout[slotLowCutSlope].Legal(float64(st.LowCutSlope)))
	s.store(slotHighCutSlope, layout[slotHighCutSlope].Legal(float64(st.HighCutSlope)))
	s.store(slotLowCutBypassed, boolValue(st.LowCutBypassed))
	s.store(slotPeakBypassed, boolValue(st.PeakBypassed))
	s.store(slotHighCutBypassed, boolValue(st.HighCutBypassed))
}

// Snapshot reads every parameter into a Settings value. It does not
// allocate and may be called from the audio goroutine.
func (s *ParameterStore) Snapshot() Settings {
	return Settings{
		LowCutFreq:      s.load(slotLowCutFreq),
		HighCutFreq:     s.load(slotHighCutFreq),
		PeakFreq:        s.load(slotPeakFreq),
		PeakGainDB:      s.load(slotPeakGain),
		PeakQuality:     s.load(slotPeakQuality),
		LowCutSlope:     Slope(math.Round(s.load(slotLowCutSlope))),
		HighCutSlope:    Slope(math.Round(s.load(slotHighCutSlope))),
		LowCutBypassed:  s.load(slotLowCutBypassed) >= 0.5,
		PeakBypassed:    s.load(slotPeakBypassed) >= 0.5,
		HighCutBypassed: s.load(slotHighCutBypassed) >= 0.5,
	}
}

// Values returns every parameter keyed by id.
func (s *ParameterStore) Values() map[ParameterID]float64 {
	out := make(map[ParameterID]float64, numSlots)
	for i, p := range layout {
		out[p.ID] = s.load(i)
	}
	return out
}

// Dirty reports whether a parameter changed since the last ConsumeChange
// or MarkClean.
func (s *ParameterStore) Dirty() bool {
	return s.dirty.Load()
}

// MarkClean clears the change flag.
func (s *ParameterStore) MarkClean() {
	s.dirty.Store(false)
}

// ConsumeChange clears the change flag and reports whether it was set.
func (s *ParameterStore) ConsumeChange() bool {
	return s.dirty.Swap(false)
}

func (s *ParameterStore) store(slot int, v float64) {
	s.values[slot].Store(math.Float64bits(v))
	s.dirty.Store(true)
}

func (s *ParameterStore) load(slot int) float64 {
	return math.Float64frombits(s.values[slot].Load())
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
