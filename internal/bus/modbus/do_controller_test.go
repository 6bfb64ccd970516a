// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circutor/device-engine/pkg/models"
)

type writeCall struct {
	kind   string
	unit   byte
	addr   uint16
	bit    bool
	bits   []bool
	word   uint16
	words  []uint16
}

type fakeBus struct {
	calls []writeCall
}

func (f *fakeBus) WriteSingleCoil(unit byte, addr uint16, value bool) {
	f.calls = append(f.calls, writeCall{kind: "single_coil", unit: unit, addr: addr, bit: value})
}
func (f *fakeBus) WriteMultipleCoils(unit byte, addr uint16, values []bool) {
	f.calls = append(f.calls, writeCall{kind: "multi_coil", unit: unit, addr: addr, bits: values})
}
func (f *fakeBus) WriteSingleRegister(unit byte, addr uint16, value uint16) {
	f.calls = append(f.calls, writeCall{kind: "single_register", unit: unit, addr: addr, word: value})
}
func (f *fakeBus) WriteMultipleRegisters(unit byte, addr uint16, values []uint16) {
	f.calls = append(f.calls, writeCall{kind: "multi_register", unit: unit, addr: addr, words: values})
}

func collectReports() (ReportFunc, *[]models.StateReportDto) {
	reports := []models.StateReportDto{}
	return func(r models.StateReportDto) { reports = append(reports, r) }, &reports
}

func TestDoControllerWriteOneIssuesBusCommandOnlyOnChange(t *testing.T) {
	bus := &fakeBus{}
	report, reports := collectReports()
	c := NewDoController("do_controller_1", 2, 4, FlavorCoil, bus, report)

	require.NoError(t, c.WriteOne(0, true))
	assert.Len(t, bus.calls, 1, "first write differs from cache, must issue exactly one bus command")
	assert.Equal(t, writeCall{kind: "single_coil", unit: 2, addr: 0, bit: true}, bus.calls[0])
	assert.Equal(t, []bool{true, false, false, false}, c.Snapshot())

	require.NoError(t, c.WriteOne(0, true))
	assert.Len(t, bus.calls, 1, "repeating the same value must not issue another bus command")
	assert.Len(t, *reports, 2, "a state report is still emitted on every call regardless of diff")
}

func TestDoControllerWriteOneOutOfRange(t *testing.T) {
	bus := &fakeBus{}
	report, _ := collectReports()
	c := NewDoController("do_controller_1", 2, 4, FlavorCoil, bus, report)

	err := c.WriteOne(4, true)
	require.Error(t, err)
	assert.Len(t, bus.calls, 0)
	assert.Equal(t, []bool{false, false, false, false}, c.Snapshot(), "cache unchanged on range error")
}

func TestDoControllerRegisterFlavorWritesWordsNotCoils(t *testing.T) {
	bus := &fakeBus{}
	report, _ := collectReports()
	c := NewDoController("do_controller_2", 3, 2, FlavorRegister, bus, report)

	require.NoError(t, c.WriteOne(1, true))
	require.Len(t, bus.calls, 1)
	assert.Equal(t, "single_register", bus.calls[0].kind)
	assert.Equal(t, uint16(1), bus.calls[0].word)
}

func TestDoControllerWriteMultiRangeAndChangeDetection(t *testing.T) {
	bus := &fakeBus{}
	report, _ := collectReports()
	c := NewDoController("do_controller_1", 2, 4, FlavorCoil, bus, report)

	require.Error(t, c.WriteMulti(2, []bool{true, true, true}))

	require.NoError(t, c.WriteMulti(0, []bool{false, false}))
	assert.Len(t, bus.calls, 0, "writing values identical to the all-false cache issues no command")

	require.NoError(t, c.WriteMulti(0, []bool{true, false}))
	assert.Len(t, bus.calls, 1)
	assert.Equal(t, "multi_coil", bus.calls[0].kind)
}
