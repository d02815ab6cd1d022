// Package buffer provides a planar multichannel float32 buffer for block
// processing. It converts to and from interleaved float32 host buffers and
// integer PCM frames without allocating once sized.
package buffer
