// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"os"
	"sync"

	serialport "github.com/goburrow/serial"
	"github.com/pkg/errors"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/logger"
)

// Listener receives every decoded frame read from the bus, multicast in
// registration order (SPEC_FULL.md §4.8: "multicasts every packet to all
// registered listeners").
type Listener interface {
	OnFrame(Frame)
}

// Bus owns one generic serial port. Unlike Modbus and DMX, a serial_bus
// has no periodic-transmission requirement, so it uses one reader
// goroutine plus a plain mutex serializing writer calls against the port,
// rather than a dedicated writer goroutine and command channel (see
// SPEC_FULL.md §9). The mutex orders writers among themselves and against
// Stop closing the port; the reader goroutine reads without taking it.
type Bus struct {
	deviceID string
	device   string
	baudrate int
	dummy    bool
	log      logger.Logger

	listeners []Listener

	wmu  sync.Mutex
	port serialport.Port

	stopCh chan struct{}
	doneCh chan struct{}
}

// Config groups the construction-time parameters for a Bus.
type Config struct {
	DeviceID string
	Device   string
	Baudrate int
	Log      logger.Logger
}

// New builds a Bus.
func New(cfg Config) *Bus {
	return &Bus{
		deviceID: cfg.DeviceID,
		device:   cfg.Device,
		baudrate: cfg.Baudrate,
		dummy:    os.Getenv(common.DummyModeEnvVar) == common.DummyModeValue,
		log:      cfg.Log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// RegisterListener adds l to the multicast set. Must be called before
// Start; the factory does this during its leaf pass.
func (b *Bus) RegisterListener(l Listener) {
	b.listeners = append(b.listeners, l)
}

// Start opens the port (unless in dummy mode) and spawns the reader
// goroutine.
func (b *Bus) Start() error {
	if !b.dummy {
		p, err := serialport.Open(&serialport.Config{Address: b.device, BaudRate: b.baudrate, DataBits: 8, Parity: "N", StopBits: 1})
		if err != nil {
			return errors.Wrapf(err, "serial bus %s: could not open %s", b.deviceID, b.device)
		}
		b.port = p
	}

	go b.readLoop()
	return nil
}

// Stop requests the reader goroutine exit and waits for it to do so.
// Idempotent.
func (b *Bus) Stop() {
	select {
	case <-b.stopCh:
	default:
		close(b.stopCh)
		b.wmu.Lock()
		if b.port != nil {
			b.port.Close()
		}
		b.wmu.Unlock()
	}
	<-b.doneCh
}

// Write sends raw bytes on the port, serialized by wmu against other
// Write calls and against Stop closing the port; it is not serialized
// against the reader goroutine's reads. A no-op in dummy mode.
func (b *Bus) Write(data []byte) error {
	if b.dummy {
		return nil
	}
	b.wmu.Lock()
	defer b.wmu.Unlock()
	if b.port == nil {
		return errors.New("serial bus: port not open")
	}
	_, err := b.port.Write(data)
	return err
}

func (b *Bus) readLoop() {
	defer close(b.doneCh)

	if b.dummy || b.port == nil {
		<-b.stopCh
		return
	}

	buf := make([]byte, 0, 256)
	chunk := make([]byte, 64)
	for {
		select {
		case <-b.stopCh:
			return
		default:
		}

		n, err := b.port.Read(chunk)
		if err != nil {
			select {
			case <-b.stopCh:
				return
			default:
			}
			b.log.Error("serial read failed", "bus", b.deviceID, "err", err)
			continue
		}
		if n == 0 {
			continue
		}

		buf = append(buf, chunk[:n]...)
		frames, remainder := Decode(buf)
		buf = append(buf[:0], remainder...)

		for _, f := range frames {
			for _, l := range b.listeners {
				l.OnFrame(f)
			}
		}
	}
}
