// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

// Package audio implements the audio_output device_type (SPEC_FULL.md
// §4.9), grounded on original_source/src/driver/device/audio_output.rs's
// play/pause/stop/resume-by-filename shape. The actual playback back-end
// is out of scope (SPEC_FULL.md §1's non-goals); Sink is the stand-in
// interface a real rodio/ALSA-backed implementation would satisfy.
package audio

import (
	"sync"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/pkg/models"
)

// Sink is one active playback instance for a single filename. A real
// implementation wraps an OS sound API handle; the sinks opened by
// NewNoopOpenFunc (noop.go) are the stand-in used for local running.
type Sink interface {
	Pause()
	Resume()
	Stop()
}

// OpenFunc opens a new Sink for filename on the given soundcard/channel.
type OpenFunc func(soundcardID string, channel Channel, filename string) (Sink, error)

// Channel selects which stereo channel an Output plays to.
type Channel string

const (
	ChannelLeft  Channel = "left"
	ChannelRight Channel = "right"
)

// ReportFunc is how this package emits a StateReportDto upward.
type ReportFunc func(models.StateReportDto)

// Output implements audio_output: a non-bus-attached leaf mixing multiple
// concurrently-playing files on one soundcard/channel pair.
type Output struct {
	deviceID    string
	soundcardID string
	channel     Channel
	open        OpenFunc
	report      ReportFunc

	mu     sync.Mutex
	sinks  map[string]Sink
	paused map[string]bool
}

// NewOutput builds an Output. open is the playback back-end; pass
// NewNoopOpenFunc() when no real sound device is available.
func NewOutput(deviceID, soundcardID string, channel Channel, open OpenFunc, report ReportFunc) *Output {
	return &Output{
		deviceID:    deviceID,
		soundcardID: soundcardID,
		channel:     channel,
		open:        open,
		report:      report,
		sinks:       make(map[string]Sink),
		paused:      make(map[string]bool),
	}
}

// Command decodes cmd.Params as models.AudioParams and dispatches on
// cmd.Action ("play", "pause", "resume", "stop").
func (o *Output) Command(cmd models.DeviceCommandDto) error {
	p, ok := cmd.Params.(models.AudioParams)
	if !ok {
		return common.NewRoutingError(cmd.DeviceID, "param variant mismatch for audio_output")
	}

	switch cmd.Action {
	case "play":
		return o.Play(p.Filename)
	case "pause":
		return o.Pause(p.Filename)
	case "resume":
		return o.Resume(p.Filename)
	case "stop":
		return o.Stop(p.Filename)
	default:
		return common.NewRoutingError(cmd.DeviceID, "unsupported audio_output action: "+cmd.Action)
	}
}

// Play starts playback of filename, tearing down any prior instance of
// the same filename first (SPEC_FULL.md §4.9, §8 boundary behavior).
func (o *Output) Play(filename string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if prior, ok := o.sinks[filename]; ok {
		prior.Stop()
		delete(o.sinks, filename)
		delete(o.paused, filename)
	}

	sink, err := o.open(o.soundcardID, o.channel, filename)
	if err != nil {
		return common.NewIOError(o.deviceID, err)
	}
	o.sinks[filename] = sink
	o.paused[filename] = false

	o.reportLocked()
	return nil
}

// Pause pauses an active filename in place.
func (o *Output) Pause(filename string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	sink, ok := o.sinks[filename]
	if !ok {
		return common.NewRoutingError(o.deviceID, "not playing: "+filename)
	}
	sink.Pause()
	o.paused[filename] = true

	o.reportLocked()
	return nil
}

// Resume resumes a paused filename.
func (o *Output) Resume(filename string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	sink, ok := o.sinks[filename]
	if !ok {
		return common.NewRoutingError(o.deviceID, "not playing: "+filename)
	}
	sink.Resume()
	o.paused[filename] = false

	o.reportLocked()
	return nil
}

// Stop tears down the sink for filename and removes it from the active
// set entirely.
func (o *Output) Stop(filename string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	sink, ok := o.sinks[filename]
	if !ok {
		return common.NewRoutingError(o.deviceID, "not playing: "+filename)
	}
	sink.Stop()
	delete(o.sinks, filename)
	delete(o.paused, filename)

	o.reportLocked()
	return nil
}

// reportLocked emits an Audio{streams} report of every currently tracked
// filename. Caller must hold o.mu.
func (o *Output) reportLocked() {
	streams := make([]models.AudioStream, 0, len(o.sinks))
	for filename := range o.sinks {
		streams = append(streams, models.AudioStream{
			FileID:  filename,
			Playing: !o.paused[filename],
		})
	}

	o.report(models.StateReportDto{
		DeviceID:    o.deviceID,
		DeviceClass: models.ClassOperable,
		DeviceType:  models.TypeAudioOutput,
		Status: models.DeviceStatusDto{
			Active: true,
			State:  models.AudioState{Streams: streams},
		},
	})
}

// Snapshot reports which filenames are currently tracked and their
// playing bit.
func (o *Output) Snapshot() []models.AudioStream {
	o.mu.Lock()
	defer o.mu.Unlock()

	streams := make([]models.AudioStream, 0, len(o.sinks))
	for filename := range o.sinks {
		streams = append(streams, models.AudioStream{
			FileID:  filename,
			Playing: !o.paused[filename],
		})
	}
	return streams
}
