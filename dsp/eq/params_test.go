package eq

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func mustGet(t *testing.T, s *ParameterStore, id ParameterID) float64 {
	t.Helper()
	v, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", id, err)
	}
	return v
}

func TestParameterStoreDefaults(t *testing.T) {
	s := NewParameterStore()
	if got := s.Snapshot(); got != DefaultSettings() {
		t.Fatalf("Snapshot() = %+v, want %+v", got, DefaultSettings())
	}
	if !s.Dirty() {
		t.Fatal("new store should start dirty")
	}
}

func TestParameterStoreSetClampsAndSnaps(t *testing.T) {
	tests := []struct {
		id   ParameterID
		in   float64
		want float64
	}{
		{ParamPeakGain, 30, 24},
		{ParamPeakGain, -30, -24},
		{ParamPeakGain, 3.3, 3.5},
		{ParamLowCutFreq, 10, 20},
		{ParamLowCutFreq, 100.4, 100},
		{ParamHighCutFreq, 25000, 20000},
		{ParamPeakQuality, 0.01, 0.1},
		{ParamPeakQuality, 1.02, 1.0},
		{ParamLowCutSlope, 2.6, 3},
		{ParamHighCutSlope, 7, 3},
		{ParamPeakBypassed, 0.7, 1},
	}

	s := NewParameterStore()
	for _, tt := range tests {
		if err := s.Set(tt.id, tt.in); err != nil {
			t.Fatalf("Set(%q) error = %v", tt.id, err)
		}
		if got := mustGet(t, s, tt.id); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Set(%q, %v) -> %v, want %v", tt.id, tt.in, got, tt.want)
		}
	}
}

func TestParameterStoreUnknownID(t *testing.T) {
	s := NewParameterStore()
	if err := s.Set("Tilt", 1); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("Set error = %v, want ErrUnknownParameter", err)
	}
	if _, err := s.Get("Tilt"); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("Get error = %v, want ErrUnknownParameter", err)
	}
	if err := s.SetNormalized("Tilt", 0.5); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("SetNormalized error = %v, want ErrUnknownParameter", err)
	}
	if _, err := LookupParameter("Tilt"); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("LookupParameter error = %v, want ErrUnknownParameter", err)
	}
}

func TestParameterStoreSkewedNormalization(t *testing.T) {
	s := NewParameterStore()

	if err := s.SetNormalized(ParamPeakFreq, 0.5); err != nil {
		t.Fatal(err)
	}
	// 20 + 19980 * 0.5^4 = 1268.75, snapped to the 1 Hz grid.
	if got := mustGet(t, s, ParamPeakFreq); got != 1269 {
		t.Fatalf("freq at 0.5 = %v, want 1269", got)
	}

	n, err := s.Normalized(ParamPeakFreq)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(n-0.5) > 1e-3 {
		t.Fatalf("Normalized = %v, want ~0.5", n)
	}

	for _, edge := range []float64{0, 1} {
		if err := s.SetNormalized(ParamLowCutFreq, edge); err != nil {
			t.Fatal(err)
		}
		want := 20 + 19980*edge
		if got := mustGet(t, s, ParamLowCutFreq); got != want {
			t.Fatalf("freq at %v = %v, want %v", edge, got, want)
		}
	}
}

func TestParameterLinearNormalization(t *testing.T) {
	p, err := LookupParameter(ParamPeakGain)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Normalize(0); got != 0.5 {
		t.Fatalf("Normalize(0) = %v, want 0.5", got)
	}
	if got := p.Denormalize(0.75); got != 12 {
		t.Fatalf("Denormalize(0.75) = %v, want 12", got)
	}
	if got := p.Legal(math.NaN()); got != p.Default {
		t.Fatalf("Legal(NaN) = %v, want default", got)
	}
}

func TestParametersLayout(t *testing.T) {
	params := Parameters()
	if len(params) != numSlots {
		t.Fatalf("len = %d, want %d", len(params), numSlots)
	}

	seen := map[ParameterID]bool{}
	for _, p := range params {
		if seen[p.ID] {
			t.Fatalf("duplicate id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Default < p.Min || p.Default > p.Max {
			t.Errorf("%q default %v outside [%v, %v]", p.ID, p.Default, p.Min, p.Max)
		}
	}

	slope, _ := LookupParameter(ParamLowCutSlope)
	if len(slope.Choices) != 4 || slope.Choices[3] != "48 dB/Oct" {
		t.Fatalf("slope choices = %v", slope.Choices)
	}

	params[5].Choices[0] = "mutated"
	if again, _ := LookupParameter(ParamLowCutSlope); again.Choices[0] != "12 dB/Oct" {
		t.Fatal("Parameters() exposed the internal layout")
	}
}

func TestParameterStoreDirtyFlag(t *testing.T) {
	s := NewParameterStore()
	if !s.ConsumeChange() {
		t.Fatal("first ConsumeChange should report the initial state")
	}
	if s.ConsumeChange() {
		t.Fatal("second ConsumeChange should be false")
	}

	if err := s.Set(ParamPeakGain, 3); err != nil {
		t.Fatal(err)
	}
	if !s.Dirty() {
		t.Fatal("Set should mark the store dirty")
	}
	s.MarkClean()
	if s.Dirty() {
		t.Fatal("MarkClean did not clear the flag")
	}
}

func TestParameterStoreApplyRoundTrip(t *testing.T) {
	want := Settings{
		LowCutFreq:      120,
		HighCutFreq:     9000,
		PeakFreq:        2500,
		PeakGainDB:      -4.5,
		PeakQuality:     2,
		LowCutSlope:     Slope36,
		HighCutSlope:    Slope24,
		LowCutBypassed:  true,
		HighCutBypassed: true,
	}

	s := NewParameterStore()
	s.Apply(want)
	if got := s.Snapshot(); got != want {
		t.Fatalf("Snapshot() = %+v, want %+v", got, want)
	}

	vals := s.Values()
	if vals[ParamPeakGain] != -4.5 || vals[ParamLowCutBypassed] != 1 {
		t.Fatalf("Values() = %v", vals)
	}
}

func TestParameterStoreConcurrentAccess(t *testing.T) {
	s := NewParameterStore()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := range 5000 {
			_ = s.Set(ParamPeakGain, float64(i%48-24))
			_ = s.SetNormalized(ParamPeakFreq, float64(i%100)/100)
		}
	}()

	go func() {
		defer wg.Done()
		for range 5000 {
			st := s.Snapshot()
			if st.PeakGainDB < -24 || st.PeakGainDB > 24 {
				t.Errorf("gain out of range: %v", st.PeakGainDB)
				return
			}
			if st.PeakFreq < 20 || st.PeakFreq > 20000 {
				t.Errorf("freq out of range: %v", st.PeakFreq)
				return
			}
		}
	}()

	wg.Wait()
}

func TestSnapshotDoesNotAllocate(t *testing.T) {
	s := NewParameterStore()
	allocs := testing.AllocsPerRun(100, func() {
		_ = s.Snapshot()
	})
	if allocs != 0 {
		t.Fatalf("Snapshot allocated %.1f times", allocs)
	}
}
