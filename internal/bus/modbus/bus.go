// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

// Package modbus implements the modbus_bus master loop (SPEC_FULL.md §4.2)
// and its DI/DO controllers and ports (§4.3–§4.5), adapted from the
// RTU-handler setup and goburrow/modbus.Client dispatch in the teacher
// SDK's example/device-modbus/modbus.go.
package modbus

import (
	"os"
	"time"

	gomodbus "github.com/goburrow/modbus"
	"github.com/pkg/errors"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/logger"
)

// Flavor distinguishes Modbus devices that expose outputs/inputs as coils
// (native booleans) from those that expose them as 16-bit holding/input
// registers carrying 0/1 (SPEC_FULL.md §9 "register-vs-coil flavor").
type Flavor int

const (
	FlavorCoil Flavor = iota
	FlavorRegister
)

// PolledDiController is the subset of DiController the bus master loop
// needs during a poll sweep: enough to address the unit, size the read,
// and deliver the result.
type PolledDiController interface {
	Unit() byte
	PortNum() uint16
	Flavor() Flavor
	NotifyFromBus(values []bool)
}

type writeKind int

const (
	writeSingleCoil writeKind = iota
	writeMultipleCoils
	writeSingleRegister
	writeMultipleRegisters
)

type writeCommand struct {
	kind   writeKind
	unit   byte
	addr   uint16
	bit    bool
	bits   []bool
	word   uint16
	words  []uint16
}

// Bus owns exactly one serial port and baud rate and runs the master loop
// described in SPEC_FULL.md §4.2. Writes are enqueued onto writeCh and
// applied by the loop goroutine in FIFO order; DI controllers are polled
// in registration order every PollInterval.
type Bus struct {
	deviceID     string
	serialPort   string
	baudrate     int
	pollInterval time.Duration
	dummy        bool
	log          logger.Logger

	writeCh chan writeCommand
	stopCh  chan struct{}
	doneCh  chan struct{}

	diControllers []PolledDiController

	handler *gomodbus.RTUClientHandler
	client  gomodbus.Client
}

// Config groups the construction-time parameters for a Bus.
type Config struct {
	DeviceID     string
	SerialPort   string
	Baudrate     int
	PollInterval time.Duration
	Log          logger.Logger
}

// New builds a Bus. It does not open the port or start the master loop;
// call Start for that. When the mode=dummy environment flag is set, the
// bus never opens real hardware (SPEC_FULL.md §4.2's dummy mode).
func New(cfg Config) *Bus {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &Bus{
		deviceID:     cfg.DeviceID,
		serialPort:   cfg.SerialPort,
		baudrate:     cfg.Baudrate,
		pollInterval: pollInterval,
		dummy:        os.Getenv(common.DummyModeEnvVar) == common.DummyModeValue,
		log:          cfg.Log,
		writeCh:      make(chan writeCommand, 64),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// RegisterDiController adds a DI controller to the poll set. Must be
// called before Start; the factory does this during its controller pass
// (SPEC_FULL.md §4.1 step 2).
func (b *Bus) RegisterDiController(c PolledDiController) {
	b.diControllers = append(b.diControllers, c)
}

// Start opens the port (unless in dummy mode) and spawns the master loop.
func (b *Bus) Start() error {
	if !b.dummy {
		handler := gomodbus.NewRTUClientHandler(b.serialPort)
		handler.BaudRate = b.baudrate
		handler.DataBits = 8
		handler.Parity = "N"
		handler.StopBits = 1
		handler.Timeout = 1 * time.Second
		if err := handler.Connect(); err != nil {
			return errors.Wrapf(err, "modbus bus %s: could not open %s", b.deviceID, b.serialPort)
		}
		b.handler = handler
		b.client = gomodbus.NewClient(handler)
	}

	go b.runLoop()
	return nil
}

// Stop requests the master loop exit and waits for it to do so. Idempotent.
func (b *Bus) Stop() {
	select {
	case <-b.stopCh:
		// already stopped or stopping
	default:
		close(b.stopCh)
	}
	<-b.doneCh
}

func (b *Bus) runLoop() {
	defer close(b.doneCh)
	defer func() {
		if b.handler != nil {
			b.handler.Close()
		}
	}()

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		if b.drainWrites() {
			return
		}

		b.pollSweep()

		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
		}
	}
}

// drainWrites applies every pending write command in FIFO order without
// blocking, per the "writes are never delayed behind a poll sweep"
// invariant. It returns true if a stop was observed.
func (b *Bus) drainWrites() bool {
	for {
		select {
		case <-b.stopCh:
			return true
		case cmd := <-b.writeCh:
			b.applyWrite(cmd)
		default:
			return false
		}
	}
}

func (b *Bus) applyWrite(cmd writeCommand) {
	if b.dummy {
		return
	}

	b.handler.SlaveId = cmd.unit

	var err error
	switch cmd.kind {
	case writeSingleCoil:
		var v uint16
		if cmd.bit {
			v = 0xFF00
		}
		_, err = b.client.WriteSingleCoil(cmd.addr, v)
	case writeMultipleCoils:
		_, err = b.client.WriteMultipleCoils(cmd.addr, uint16(len(cmd.bits)), packBits(cmd.bits))
	case writeSingleRegister:
		_, err = b.client.WriteSingleRegister(cmd.addr, cmd.word)
	case writeMultipleRegisters:
		_, err = b.client.WriteMultipleRegisters(cmd.addr, uint16(len(cmd.words)), packWords(cmd.words))
	}
	if err != nil {
		b.log.Error("modbus write failed", "bus", b.deviceID, "unit", cmd.unit, "addr", cmd.addr, "err", err)
	}
}

func (b *Bus) pollSweep() {
	for _, c := range b.diControllers {
		values, err := b.readInputs(c)
		if err != nil {
			b.log.Error("modbus poll failed, will retry next sweep", "bus", b.deviceID, "err", err)
			continue
		}
		c.NotifyFromBus(values)
	}
}

func (b *Bus) readInputs(c PolledDiController) ([]bool, error) {
	n := c.PortNum()
	if b.dummy {
		return make([]bool, n), nil
	}

	b.handler.SlaveId = c.Unit()

	var raw []byte
	var err error
	switch c.Flavor() {
	case FlavorCoil:
		raw, err = b.client.ReadCoils(0, n)
		if err != nil {
			return nil, err
		}
		return unpackBits(raw, int(n)), nil
	default:
		raw, err = b.client.ReadInputRegisters(0, n)
		if err != nil {
			return nil, err
		}
		return registersToBools(raw, int(n)), nil
	}
}

// enqueue pushes a write command onto the bus's channel; the call returns
// as soon as the command is queued, never blocking on the actual I/O
// (SPEC_FULL.md §4.2).
func (b *Bus) enqueue(cmd writeCommand) {
	b.writeCh <- cmd
}

func (b *Bus) WriteSingleCoil(unit byte, addr uint16, value bool) {
	b.enqueue(writeCommand{kind: writeSingleCoil, unit: unit, addr: addr, bit: value})
}

func (b *Bus) WriteMultipleCoils(unit byte, addr uint16, values []bool) {
	cp := make([]bool, len(values))
	copy(cp, values)
	b.enqueue(writeCommand{kind: writeMultipleCoils, unit: unit, addr: addr, bits: cp})
}

func (b *Bus) WriteSingleRegister(unit byte, addr uint16, value uint16) {
	b.enqueue(writeCommand{kind: writeSingleRegister, unit: unit, addr: addr, word: value})
}

func (b *Bus) WriteMultipleRegisters(unit byte, addr uint16, values []uint16) {
	cp := make([]uint16, len(values))
	copy(cp, values)
	b.enqueue(writeCommand{kind: writeMultipleRegisters, unit: unit, addr: addr, words: cp})
}

func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func unpackBits(raw []byte, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = raw[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

func packWords(words []uint16) []byte {
	out := make([]byte, len(words)*2)
	for i, w := range words {
		out[i*2] = byte(w >> 8)
		out[i*2+1] = byte(w)
	}
	return out
}

func registersToBools(raw []byte, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		hi, lo := raw[i*2], raw[i*2+1]
		out[i] = hi != 0 || lo != 0
	}
	return out
}
