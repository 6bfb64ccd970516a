// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circutor/device-engine/pkg/models"
)

type fakeSink struct {
	paused, resumed, stopped int
}

func (f *fakeSink) Pause()  { f.paused++ }
func (f *fakeSink) Resume() { f.resumed++ }
func (f *fakeSink) Stop()   { f.stopped++ }

func newTestOutput(t *testing.T) (*Output, *[]models.StateReportDto, map[string]*fakeSink) {
	sinks := map[string]*fakeSink{}
	var reports []models.StateReportDto
	open := func(soundcardID string, channel Channel, filename string) (Sink, error) {
		s := &fakeSink{}
		sinks[filename] = s
		return s, nil
	}
	o := NewOutput("audio_1", "card0", ChannelLeft, open, func(r models.StateReportDto) { reports = append(reports, r) })
	return o, &reports, sinks
}

func TestPlayTracksActiveFilenames(t *testing.T) {
	o, reports, _ := newTestOutput(t)

	require.NoError(t, o.Play("a.wav"))

	state, ok := (*reports)[len(*reports)-1].Status.State.(models.AudioState)
	require.True(t, ok)
	require.Len(t, state.Streams, 1)
	assert.Equal(t, "a.wav", state.Streams[0].FileID)
	assert.True(t, state.Streams[0].Playing)
}

func TestPlaySameFilenameStopsPriorInstance(t *testing.T) {
	o, _, sinks := newTestOutput(t)

	require.NoError(t, o.Play("a.wav"))
	first := sinks["a.wav"]

	require.NoError(t, o.Play("a.wav"))

	assert.Equal(t, 1, first.stopped)
	snap := o.Snapshot()
	require.Len(t, snap, 1)
}

func TestPauseAndResumeToggleFlag(t *testing.T) {
	o, reports, _ := newTestOutput(t)
	require.NoError(t, o.Play("a.wav"))

	require.NoError(t, o.Pause("a.wav"))
	state := (*reports)[len(*reports)-1].Status.State.(models.AudioState)
	assert.False(t, state.Streams[0].Playing)

	require.NoError(t, o.Resume("a.wav"))
	state = (*reports)[len(*reports)-1].Status.State.(models.AudioState)
	assert.True(t, state.Streams[0].Playing)
}

func TestStopRemovesFilenameEntirely(t *testing.T) {
	o, _, _ := newTestOutput(t)
	require.NoError(t, o.Play("a.wav"))
	require.NoError(t, o.Stop("a.wav"))

	assert.Empty(t, o.Snapshot())
}

func TestActionsOnUnknownFilenameAreRoutingErrors(t *testing.T) {
	o, _, _ := newTestOutput(t)

	require.Error(t, o.Pause("missing.wav"))
	require.Error(t, o.Resume("missing.wav"))
	require.Error(t, o.Stop("missing.wav"))
}

func TestCommandDecodesParamsAndAction(t *testing.T) {
	o, _, _ := newTestOutput(t)

	require.NoError(t, o.Command(models.DeviceCommandDto{
		DeviceID: "audio_1",
		Action:   "play",
		Params:   models.AudioParams{Filename: "a.wav"},
	}))

	err := o.Command(models.DeviceCommandDto{DeviceID: "audio_1", Action: "play", Params: models.EmptyParams{}})
	require.Error(t, err)

	err = o.Command(models.DeviceCommandDto{DeviceID: "audio_1", Action: "dance", Params: models.AudioParams{Filename: "a.wav"}})
	require.Error(t, err)
}
