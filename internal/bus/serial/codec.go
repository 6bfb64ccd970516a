// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

// Package serial implements the serial_bus reader and the serial_remote
// leaf (SPEC_FULL.md §4.8), grounded on
// original_source/src/driver/serial/{serial_bus.rs,serial_thread.rs}'s
// multicast-to-listeners shape and its LineCodec framing.
package serial

import (
	"bytes"
)

const (
	startByte byte = 0xFA
	endByte   byte = 0xED
)

// Frame is one decoded packet: a command byte and its data payload.
type Frame struct {
	Command byte
	Data    []byte
}

// Encode produces the wire representation of a Frame: start byte, command
// byte, length byte, data, end byte (SPEC_FULL.md §6).
func Encode(f Frame) []byte {
	out := make([]byte, 0, len(f.Data)+4)
	out = append(out, startByte, f.Command, byte(len(f.Data)))
	out = append(out, f.Data...)
	out = append(out, endByte)
	return out
}

// Decode splits buf on the end byte and decodes every complete frame
// found, discarding any bytes preceding the start byte that immediately
// precedes each end byte (SPEC_FULL.md §6). It returns the decoded frames
// and the leftover bytes after the last end byte, to be prefixed onto the
// next read.
func Decode(buf []byte) (frames []Frame, remainder []byte) {
	for {
		end := bytes.IndexByte(buf, endByte)
		if end < 0 {
			remainder = buf
			return
		}

		segment := buf[:end]
		buf = buf[end+1:]

		start := bytes.LastIndexByte(segment, startByte)
		if start < 0 {
			// no start byte before this end byte: discard the segment
			continue
		}
		segment = segment[start:]

		if len(segment) < 3 {
			continue
		}
		command := segment[1]
		length := int(segment[2])
		if len(segment) < 3+length {
			continue
		}
		data := make([]byte, length)
		copy(data, segment[3:3+length])
		frames = append(frames, Frame{Command: command, Data: data})
	}
}
