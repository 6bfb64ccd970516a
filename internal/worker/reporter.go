// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

package worker

import (
	"time"

	"github.com/circutor/device-engine/internal/cache"
	"github.com/circutor/device-engine/pkg/models"
)

// Reporter consumes StateReportDto messages emitted by any device,
// applies them to the shared meta cache, and republishes them verbatim
// on the outbound channel (SPEC_FULL.md §4.11). It terminates when its
// inbound channel is closed.
type Reporter struct {
	inbound  chan models.StateReportDto
	outbound chan<- models.OutboundMessage
	meta     *cache.MetaCache
}

// NewReporter builds a Reporter.
func NewReporter(inbound chan models.StateReportDto, outbound chan<- models.OutboundMessage, meta *cache.MetaCache) *Reporter {
	return &Reporter{inbound: inbound, outbound: outbound, meta: meta}
}

// Run consumes r.inbound until it is closed.
func (r *Reporter) Run() {
	for report := range r.inbound {
		now := report.Status.LastUpdate
		if now.IsZero() {
			now = stamp()
		}

		r.meta.Apply(report.DeviceID, func(m *models.DeviceMeta) {
			m.State = report.Status.State
			m.Status = models.StatusActive
			m.LastUpdate = now
			if report.Status.ErrorMsg != "" {
				m.Status = models.StatusError
				m.ErrorMsg = report.Status.ErrorMsg
				m.ErrorTimestamp = report.Status.ErrorTimestamp
			}
		})

		r.outbound <- models.OutboundMessage{Kind: models.OutboundDeviceState, DeviceState: report}
	}
}

// stamp is the one place Run reads wall-clock time, kept narrow so tests
// can drive Reporter.Run with reports carrying a pre-set LastUpdate and
// observe it pass through unchanged.
func stamp() time.Time { return time.Now() }
