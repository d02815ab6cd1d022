package eq

import (
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/internal/testutil"
)

func newPreparedProcessor(t *testing.T, channels int, sr float64, block int, opts ...Option) (*Processor, *ParameterStore) {
	t.Helper()
	store := NewParameterStore()
	p, err := NewProcessorWithOptions(store, []core.ProcessorOption{core.WithChannels(channels)}, opts...)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	if err := p.Prepare(sr, block); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return p, store
}

func TestNewProcessorLayouts(t *testing.T) {
	store := NewParameterStore()
	for _, ch := range []int{1, 2} {
		p, err := NewProcessor(store, core.WithChannels(ch))
		if err != nil {
			t.Fatalf("channels=%d: error = %v", ch, err)
		}
		if p.Channels() != ch {
			t.Fatalf("Channels() = %d, want %d", p.Channels(), ch)
		}
		if p.Prepared() {
			t.Fatal("new processor should not be prepared")
		}
	}

	_, err := NewProcessor(store, core.WithChannels(6))
	if !errors.Is(err, ErrUnsupportedLayout) {
		t.Fatalf("6 channels: error = %v, want ErrUnsupportedLayout", err)
	}

	if _, err := NewProcessor(nil); !errors.Is(err, ErrNilStore) {
		t.Fatalf("nil store: error = %v, want ErrNilStore", err)
	}
}

func TestProcessorPrepareValidates(t *testing.T) {
	p, err := NewProcessor(NewParameterStore())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Prepare(0, 512); !errors.Is(err, core.ErrInvalidSampleRate) {
		t.Fatalf("Prepare(0, 512) error = %v, want ErrInvalidSampleRate", err)
	}
	if err := p.Prepare(48000, 0); !errors.Is(err, core.ErrInvalidBlockSize) {
		t.Fatalf("Prepare(48000, 0) error = %v, want ErrInvalidBlockSize", err)
	}
	if p.Prepared() {
		t.Fatal("failed Prepare left processor prepared")
	}

	if err := p.Prepare(44100, 256); err != nil {
		t.Fatal(err)
	}
	if p.SampleRate() != 44100 || p.MaxBlockSize() != 256 || !p.Prepared() {
		t.Fatalf("unexpected state: sr=%v block=%d prepared=%v", p.SampleRate(), p.MaxBlockSize(), p.Prepared())
	}
	for ch := 0; ch < p.Channels(); ch++ {
		if !p.Chain(ch).Ready() {
			t.Fatalf("chain %d not ready", ch)
		}
	}
}

func TestProcessorPanicsBeforePrepare(t *testing.T) {
	p, err := NewProcessor(NewParameterStore())
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "before Prepare") {
			t.Fatalf("unexpected panic value %v", r)
		}
	}()
	p.ProcessBlock([][]float32{make([]float32, 4), make([]float32, 4)})
}

func TestProcessorAppliesStoreEachBlock(t *testing.T) {
	p, store := newPreparedProcessor(t, 1, 48000, 4800)

	tone := func() float64 {
		buf := testutil.DeterministicSine(1000, 48000, 0.25, 4800)
		p.Chain(0).Reset()
		p.ProcessBlock([][]float32{buf})
		peak := 0.0
		for _, v := range buf[2400:] {
			peak = math.Max(peak, math.Abs(float64(v)))
		}
		return peak
	}

	flat := tone()
	if math.Abs(flat-0.25) > 0.01 {
		t.Fatalf("flat 1 kHz peak = %v, want ~0.25", flat)
	}

	if err := store.Set(ParamPeakFreq, 1000); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ParamPeakGain, 12); err != nil {
		t.Fatal(err)
	}
	boosted := tone()
	if want := 0.25 * math.Pow(10, 12.0/20); math.Abs(boosted-want) > 0.02 {
		t.Fatalf("boosted 1 kHz peak = %v, want ~%v", boosted, want)
	}

	if err := store.Set(ParamPeakBypassed, 1); err != nil {
		t.Fatal(err)
	}
	if got := tone(); math.Abs(got-flat) > 1e-3 {
		t.Fatalf("bypassed peak = %v, want %v", got, flat)
	}
}

func TestProcessorFullBypassIsIdentity(t *testing.T) {
	p, store := newPreparedProcessor(t, 2, 44100, 256)
	store.Apply(Settings{
		LowCutFreq: 500, HighCutFreq: 1000, PeakFreq: 750, PeakGainDB: 24, PeakQuality: 4,
		LowCutSlope: Slope48, HighCutSlope: Slope48,
		LowCutBypassed: true, PeakBypassed: true, HighCutBypassed: true,
	})

	in := testutil.DeterministicNoise(21, 0.9, 256)
	block := testutil.Stereo(in)
	p.ProcessBlock(block)

	for ch := range block {
		for i := range in {
			if block[ch][i] != in[i] {
				t.Fatalf("ch%d sample %d: got %v, want %v", ch, i, block[ch][i], in[i])
			}
		}
	}
}

func TestProcessorChannelsIndependent(t *testing.T) {
	p, store := newPreparedProcessor(t, 2, 48000, 128)
	store.Apply(Settings{
		LowCutFreq: 200, HighCutFreq: 5000, PeakFreq: 1000, PeakGainDB: 6, PeakQuality: 1,
		LowCutSlope: Slope24, HighCutSlope: Slope24,
	})

	left := testutil.DeterministicNoise(1, 0.5, 128)
	right := make([]float32, 128)
	p.ProcessBlock([][]float32{left, right})

	for i, v := range right {
		if v != 0 {
			t.Fatalf("silent channel produced %v at %d", v, i)
		}
	}

	// The same input on a mono processor gives the same left output.
	mono, monoStore := newPreparedProcessor(t, 1, 48000, 128)
	monoStore.Apply(store.Snapshot())
	ref := testutil.DeterministicNoise(1, 0.5, 128)
	mono.ProcessBlock([][]float32{ref})
	testutil.RequireSliceNearlyEqual(t, left, ref, 0)
}

func TestProcessorInterleavedMatchesPlanar(t *testing.T) {
	settings := Settings{
		LowCutFreq: 80, HighCutFreq: 12000, PeakFreq: 3000, PeakGainDB: -9, PeakQuality: 2,
		LowCutSlope: Slope36, HighCutSlope: Slope12,
	}

	planar, ps := newPreparedProcessor(t, 2, 48000, 64)
	ps.Apply(settings)
	inter, is := newPreparedProcessor(t, 2, 48000, 64)
	is.Apply(settings)

	left := testutil.DeterministicNoise(3, 0.5, 200)
	right := testutil.DeterministicSine(440, 48000, 0.5, 200)

	// Interleaved input longer than the prepared block size is split.
	buf := make([]float32, 400)
	for i := range left {
		buf[2*i] = left[i]
		buf[2*i+1] = right[i]
	}
	inter.ProcessInterleaved(buf)

	for start := 0; start < 200; start += 64 {
		end := min(start+64, 200)
		planar.ProcessBlock([][]float32{left[start:end], right[start:end]})
	}

	for i := range left {
		if buf[2*i] != left[i] || buf[2*i+1] != right[i] {
			t.Fatalf("frame %d: interleaved (%v, %v) planar (%v, %v)", i, buf[2*i], buf[2*i+1], left[i], right[i])
		}
	}
}

func TestProcessorChangeGuardIsObservablyIdentical(t *testing.T) {
	plain, ps := newPreparedProcessor(t, 1, 48000, 64)
	guarded, gs := newPreparedProcessor(t, 1, 48000, 64, WithChangeGuard())

	in := testutil.DeterministicNoise(13, 0.7, 64*40)
	a, b := testutil.Clone(in), testutil.Clone(in)

	for blk := 0; blk < 40; blk++ {
		if blk%10 == 0 {
			gain := float64(blk/10*6 - 9)
			_ = ps.Set(ParamPeakGain, gain)
			_ = gs.Set(ParamPeakGain, gain)
			_ = ps.Set(ParamLowCutSlope, float64(blk/10))
			_ = gs.Set(ParamLowCutSlope, float64(blk/10))
		}
		plain.ProcessBlock([][]float32{a[blk*64 : (blk+1)*64]})
		guarded.ProcessBlock([][]float32{b[blk*64 : (blk+1)*64]})
	}

	testutil.RequireSliceNearlyEqual(t, a, b, 0)
}

type countingObserver struct {
	blocks atomic.Int64
	frames atomic.Int64
}

func (o *countingObserver) ObserveBlock(channels [][]float32) {
	o.blocks.Add(1)
	o.frames.Add(int64(len(channels[0])))
}

func TestProcessorObserver(t *testing.T) {
	obs := &countingObserver{}
	p, _ := newPreparedProcessor(t, 2, 48000, 32, WithObserver(obs))

	for range 3 {
		p.ProcessBlock([][]float32{make([]float32, 32), make([]float32, 32)})
	}
	if obs.blocks.Load() != 3 || obs.frames.Load() != 96 {
		t.Fatalf("observer saw %d blocks / %d frames, want 3 / 96", obs.blocks.Load(), obs.frames.Load())
	}
}

func TestProcessorConcurrentParameterWrites(t *testing.T) {
	p, store := newPreparedProcessor(t, 2, 48000, 128)

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			_ = store.SetNormalized(ParamLowCutFreq, float64(i%100)/100)
			_ = store.SetNormalized(ParamHighCutFreq, 1-float64(i%100)/200)
			_ = store.Set(ParamPeakGain, float64(i%49-24))
			_ = store.Set(ParamHighCutSlope, float64(i%4))
		}
	}()

	left := testutil.DeterministicNoise(17, 1, 128*200)
	right := testutil.DeterministicNoise(18, 1, 128*200)
	for blk := 0; blk < 200; blk++ {
		p.ProcessBlock([][]float32{left[blk*128 : (blk+1)*128], right[blk*128 : (blk+1)*128]})
	}
	close(done)
	wg.Wait()

	testutil.RequireBounded(t, left, 1000)
	testutil.RequireBounded(t, right, 1000)
}

func TestProcessorProcessBlockZeroAlloc(t *testing.T) {
	p, store := newPreparedProcessor(t, 2, 48000, 256)
	block := [][]float32{make([]float32, 256), make([]float32, 256)}
	inter := make([]float32, 512)

	allocs := testing.AllocsPerRun(100, func() {
		_ = store.Set(ParamPeakGain, 3)
		p.ProcessBlock(block)
		p.ProcessInterleaved(inter)
	})
	if allocs != 0 {
		t.Fatalf("processing allocated %.1f times per block", allocs)
	}
}

func BenchmarkProcessorStereo512(b *testing.B) {
	store := NewParameterStore()
	store.Apply(Settings{
		LowCutFreq: 80, HighCutFreq: 12000, PeakFreq: 1000, PeakGainDB: 6, PeakQuality: 1,
		LowCutSlope: Slope48, HighCutSlope: Slope48,
	})
	p, err := NewProcessor(store)
	if err != nil {
		b.Fatal(err)
	}
	if err := p.Prepare(48000, 512); err != nil {
		b.Fatal(err)
	}

	block := [][]float32{
		testutil.DeterministicNoise(1, 0.5, 512),
		testutil.DeterministicNoise(2, 0.5, 512),
	}
	b.SetBytes(2 * 512 * 4)
	b.ReportAllocs()

	for b.Loop() {
		p.ProcessBlock(block)
	}
}
