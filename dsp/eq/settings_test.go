package eq

import "testing"

func TestSlopeGeometry(t *testing.T) {
	tests := []struct {
		slope  Slope
		stages int
		order  int
		dbOct  int
		label  string
	}{
		{Slope12, 1, 2, 12, "12 dB/Oct"},
		{Slope24, 2, 4, 24, "24 dB/Oct"},
		{Slope36, 3, 6, 36, "36 dB/Oct"},
		{Slope48, 4, 8, 48, "48 dB/Oct"},
	}

	for _, tt := range tests {
		if got := tt.slope.Stages(); got != tt.stages {
			t.Errorf("%v.Stages() = %d, want %d", tt.slope, got, tt.stages)
		}
		if got := tt.slope.Order(); got != tt.order {
			t.Errorf("%v.Order() = %d, want %d", tt.slope, got, tt.order)
		}
		if got := tt.slope.DBPerOctave(); got != tt.dbOct {
			t.Errorf("%v.DBPerOctave() = %d, want %d", tt.slope, got, tt.dbOct)
		}
		if got := tt.slope.String(); got != tt.label {
			t.Errorf("String() = %q, want %q", got, tt.label)
		}
	}
}

func TestSlopeOutOfRangeClamps(t *testing.T) {
	if Slope(9).Stages() != MaxCutStages {
		t.Fatalf("Slope(9).Stages() = %d, want %d", Slope(9).Stages(), MaxCutStages)
	}
	if Slope(-1).Stages() != 1 {
		t.Fatalf("Slope(-1).Stages() = %d, want 1", Slope(-1).Stages())
	}
	if Slope(9).Valid() {
		t.Fatal("Slope(9) reported valid")
	}
	if Slope(9).String() != "Slope(9)" {
		t.Fatalf("String() = %q", Slope(9).String())
	}
}

func TestParseSlope(t *testing.T) {
	tests := map[string]Slope{
		"0":         Slope12,
		"3":         Slope48,
		"12":        Slope12,
		"36":        Slope36,
		"48 dB/Oct": Slope48,
		"24dB":      Slope24,
		" 24 db ":   Slope24,
	}
	for in, want := range tests {
		got, err := ParseSlope(in)
		if err != nil {
			t.Errorf("ParseSlope(%q) error = %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseSlope(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "5", "60", "steep", "-1"} {
		if _, err := ParseSlope(in); err == nil {
			t.Errorf("ParseSlope(%q) expected error", in)
		}
	}
}

func TestForSampleRateLimitsFrequencies(t *testing.T) {
	s := DefaultSettings()
	s.LowCutSlope = Slope(7)

	got := s.ForSampleRate(32000)
	if got.HighCutFreq != 32000*maxFreqRatio {
		t.Fatalf("HighCutFreq = %v, want %v", got.HighCutFreq, 32000*maxFreqRatio)
	}
	if got.LowCutFreq != 20 || got.PeakFreq != 750 {
		t.Fatalf("in-range frequencies changed: %+v", got)
	}
	if got.LowCutSlope != Slope48 {
		t.Fatalf("LowCutSlope = %v, want Slope48", got.LowCutSlope)
	}

	if s.ForSampleRate(48000).HighCutFreq != 20000 {
		t.Fatal("20 kHz high cut should survive at 48 kHz")
	}
}

func TestSettingsBypassed(t *testing.T) {
	s := Settings{PeakBypassed: true}
	if s.Bypassed(PositionLowCut) || !s.Bypassed(PositionPeak) || s.Bypassed(PositionHighCut) {
		t.Fatalf("unexpected bypass mapping for %+v", s)
	}
	if PositionHighCut.String() != "HighCut" {
		t.Fatalf("String() = %q", PositionHighCut.String())
	}
}
