// Package response computes the composite magnitude response of an EQ chain
// for display and keeps a published copy of it current.
//
// [Curve] evaluates every active stage of a [eq.ChannelChain] over a
// logarithmic frequency grid and multiplies the per-stage magnitudes. A
// [Monitor] runs on a control goroutine, polls the [eq.ParameterStore] change
// flag, recomputes the curve from a display-only chain and publishes it
// atomically for readers on any goroutine.
package response
