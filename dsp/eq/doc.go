// Package eq implements a three-band parametric equalizer: a multi-order
// Butterworth low cut, an RBJ peaking band and a multi-order Butterworth high
// cut, cascaded per channel.
//
// Parameters live in a [ParameterStore] that any goroutine may write. The
// [Processor] snapshots the store at the start of every block, recomputes the
// coefficients and installs them into each [ChannelChain] before filtering.
// Nothing on that path allocates, locks or blocks.
package eq
