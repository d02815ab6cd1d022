package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendPCM(t *testing.T) {
	got := appendPCM(nil, []byte{0xff, 0x7f, 0x00, 0x80}, 16)
	assert.Equal(t, []int{32767, -32768}, got)

	got = appendPCM(nil, []byte{0xff, 0xff, 0xff, 0x01, 0x00, 0x00}, 24)
	assert.Equal(t, []int{-1, 1}, got)

	got = appendPCM(nil, []byte{0x00, 0x00, 0x00, 0x80}, 32)
	assert.Equal(t, []int{-1 << 31}, got)

	// A trailing partial sample is dropped.
	got = appendPCM([]int{7}, []byte{0x01, 0x00, 0x02}, 16)
	assert.Equal(t, []int{7, 1}, got)
}

func TestRenderRejectsInvalidFLAC(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.flac")
	require.NoError(t, os.WriteFile(in, []byte("not a flac stream"), 0o600))

	_, err := run(t, "render", in, filepath.Join(dir, "out.wav"))
	require.Error(t, err)
}
