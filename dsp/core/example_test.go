package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-eq/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
		core.WithChannels(1),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d channels=%d\n", cfg.SampleRate, cfg.BlockSize, cfg.Channels)

	// Output:
	// sampleRate=44100 blockSize=256 channels=1
}

func ExampleDBToGain() {
	fmt.Printf("%.4f %.2f\n", core.DBToGain(6), core.GainToDB(0.5))

	// Output:
	// 1.9953 -6.02
}
