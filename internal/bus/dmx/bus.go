// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

// Package dmx implements the dmx_bus continuous transmitter loop
// (SPEC_FULL.md §4.6) and the dmx_channel leaf (§4.7), grounded on
// original_source/src/driver/dmx/{dmx_bus.rs,dmx_thread.rs} for the
// frame/transmit-loop shape and on the DMX gateway reference file's
// fixed-size [512]byte frame modeling.
package dmx

import (
	"os"
	"sync"
	"time"

	"github.com/goburrow/serial"
	"github.com/pkg/errors"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/logger"
)

const frameSize = 512

type commandKind int

const (
	cmdSetFrame commandKind = iota
	cmdStop
)

type command struct {
	kind  commandKind
	frame [frameSize]byte
}

// Bus owns one DMX serial port and the transmitter loop described in
// SPEC_FULL.md §4.6: write the full frame, sleep one period, drain the
// command channel non-blockingly, repeat. Continuous retransmission is not
// optional (§9): DMX receivers lose sync without it.
//
// Two separate frame copies exist by design, never shared: commanded,
// guarded by mu and mutated only by SetChannel(s) calls from any caller
// goroutine, and the transmitter loop's own working copy, touched only by
// runLoop. A SetChannels call hands the loop a full snapshot of commanded
// over the command channel rather than exposing commanded to it directly —
// this is the "owning worker goroutine plus message passing" strategy
// SPEC_FULL.md §9 prefers over a shared lock on the hot transmit path.
type Bus struct {
	deviceID      string
	serialPort    string
	frameInterval time.Duration
	dummy         bool
	log           logger.Logger

	cmdCh  chan command
	doneCh chan struct{}

	mu        sync.Mutex
	commanded [frameSize]byte

	port serial.Port
}

// Config groups the construction-time parameters for a Bus.
type Config struct {
	DeviceID      string
	SerialPort    string
	FrameInterval time.Duration
	Log           logger.Logger
}

// New builds a Bus with a zeroed frame (SPEC_FULL.md §3: "DMX frame bytes
// default to 0 before the transmitter starts").
func New(cfg Config) *Bus {
	interval := cfg.FrameInterval
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	return &Bus{
		deviceID:      cfg.DeviceID,
		serialPort:    cfg.SerialPort,
		frameInterval: interval,
		dummy:         os.Getenv(common.DummyModeEnvVar) == common.DummyModeValue,
		log:           cfg.Log,
		cmdCh:         make(chan command, 8),
		doneCh:        make(chan struct{}),
	}
}

// Start opens the port (unless in dummy mode) and spawns the transmitter
// loop.
func (b *Bus) Start() error {
	if !b.dummy {
		p, err := serial.Open(&serial.Config{Address: b.serialPort, BaudRate: 250000, DataBits: 8, Parity: "N", StopBits: 2})
		if err != nil {
			return errors.Wrapf(err, "dmx bus %s: could not open %s", b.deviceID, b.serialPort)
		}
		b.port = p
	}

	go b.runLoop()
	return nil
}

// Stop requests the transmitter loop exit and waits for it to do so.
// Idempotent.
func (b *Bus) Stop() {
	select {
	case b.cmdCh <- command{kind: cmdStop}:
	case <-b.doneCh:
	}
	<-b.doneCh
}

// SetChannel sets a single DMX channel, bounds-checked to [0, 512).
func (b *Bus) SetChannel(addr uint16, value byte) error {
	return b.SetChannels(addr, []byte{value})
}

// SetChannels sets a contiguous range of channels starting at baseAddr,
// bounds-checked so baseAddr+len(values) <= 512, and forwards the full
// updated frame to the transmitter loop.
func (b *Bus) SetChannels(baseAddr uint16, values []byte) error {
	if int(baseAddr)+len(values) > frameSize {
		return common.NewRangeError(b.deviceID, "dmx channel range out of bounds")
	}

	b.mu.Lock()
	for i, v := range values {
		b.commanded[int(baseAddr)+i] = v
	}
	snapshot := b.commanded
	b.mu.Unlock()

	select {
	case b.cmdCh <- command{kind: cmdSetFrame, frame: snapshot}:
	case <-b.doneCh:
	}
	return nil
}

// Snapshot returns the currently commanded frame, for state reporting.
func (b *Bus) Snapshot() [frameSize]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commanded
}

func (b *Bus) runLoop() {
	var working [frameSize]byte

	defer close(b.doneCh)
	defer func() {
		if b.port != nil {
			b.port.Close()
		}
	}()

	ticker := time.NewTicker(b.frameInterval)
	defer ticker.Stop()

	for {
		b.transmit(working)

		<-ticker.C

		stop, next := b.drainCommands(working)
		if stop {
			return
		}
		working = next
	}
}

func (b *Bus) transmit(frame [frameSize]byte) {
	if b.dummy || b.port == nil {
		return
	}
	if _, err := b.port.Write(frame[:]); err != nil {
		b.log.Error("dmx frame write failed", "bus", b.deviceID, "err", err)
	}
}

// drainCommands non-blockingly applies every pending SetFrame command,
// keeping only the most recent frame, and reports whether a Stop was seen.
func (b *Bus) drainCommands(working [frameSize]byte) (stop bool, next [frameSize]byte) {
	next = working
	for {
		select {
		case cmd := <-b.cmdCh:
			switch cmd.kind {
			case cmdStop:
				return true, next
			case cmdSetFrame:
				next = cmd.frame
			}
		default:
			return false, next
		}
	}
}
