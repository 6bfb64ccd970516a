// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package audio

// noopSink is the stand-in Sink used when no real sound device is
// configured; it exists purely so Output can be exercised without the
// out-of-scope playback back-end (SPEC_FULL.md §1 non-goals).
type noopSink struct{}

func (noopSink) Pause()  {}
func (noopSink) Resume() {}
func (noopSink) Stop()   {}

// NewNoopOpenFunc returns an OpenFunc that never fails and opens a sink
// with no audible effect.
func NewNoopOpenFunc() OpenFunc {
	return func(soundcardID string, channel Channel, filename string) (Sink, error) {
		return noopSink{}, nil
	}
}
