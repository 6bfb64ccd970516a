// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

// Command device-engine is the process entry point described in
// SPEC_FULL.md §10.7: deliberately minimal, it wires the ambient stack
// around the device control plane core and then blocks until asked to
// shut down.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/circutor/device-engine/internal/catalogue"
	"github.com/circutor/device-engine/internal/clients"
	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/config"
	"github.com/circutor/device-engine/internal/factory"
	"github.com/circutor/device-engine/internal/handler"
	"github.com/circutor/device-engine/internal/logger"
	"github.com/circutor/device-engine/internal/scheduler"
	"github.com/circutor/device-engine/internal/worker"
	"github.com/circutor/device-engine/pkg/models"
)

const serviceVersion = "0.1.0"

func main() {
	profile := flag.String("profile", "", "named configuration profile override, e.g. \"docker\"")
	confDir := flag.String("confdir", "", "directory holding configuration.toml (default ./res)")
	flag.Parse()

	cfg, err := config.LoadConfig(*profile, *confDir)
	if err != nil {
		fmt.Println("fatal: could not load configuration:", err)
		return
	}
	common.CurrentConfig = cfg
	common.ServiceName = "device-engine"
	common.ServiceVersion = serviceVersion

	log := logger.New(cfg.Logging.Level)
	common.LoggingClient = log

	descriptors, err := catalogue.Load(cfg.Device.CatalogueFile)
	if err != nil {
		log.Error("fatal: could not load device catalogue", "err", err)
		return
	}

	if err := clients.CheckCollaborators(cfg, log); err != nil {
		log.Error("fatal: collaborator connectivity check failed", "err", err)
		return
	}

	inboundCommands := make(chan models.DeviceCommandDto, 64)
	inboundReports := make(chan models.StateReportDto, 256)
	outbound := make(chan models.OutboundMessage, 256)

	graph, err := factory.Build(descriptors, factory.Options{
		Log:        log,
		Report:     func(r models.StateReportDto) { inboundReports <- r },
		ModbusPoll: time.Duration(cfg.Modbus.PollIntervalMS) * time.Millisecond,
		DmxFrame:   time.Duration(cfg.Dmx.FrameIntervalMS) * time.Millisecond,
	})
	if err != nil {
		log.Error("fatal: could not assemble device graph", "err", err)
		return
	}

	for _, bus := range graph.Buses {
		if err := bus.Start(); err != nil {
			log.Error("fatal: could not start bus", "err", err)
			return
		}
	}

	go drainOutbound(outbound, log)

	commanders := make(map[string]worker.Commander, len(graph.Leaves))
	for id, leaf := range graph.Leaves {
		commanders[id] = leaf
	}

	var workersReady int32

	dispatcher := worker.NewDispatcher(inboundCommands, commanders, log)
	reporter := worker.NewReporter(inboundReports, outbound, graph.Meta)
	descriptorsByID := make(map[string]models.DeviceDescriptor, len(descriptors))
	for _, d := range descriptors {
		descriptorsByID[d.DeviceID] = d
	}
	heartbeat := worker.NewHeartbeat(time.Duration(cfg.Heartbeat.IntervalMS)*time.Millisecond, graph.Meta, descriptorsByID, outbound)

	go dispatcher.Run()
	go reporter.Run()
	go func() {
		atomic.StoreInt32(&workersReady, 1)
		heartbeat.Run()
	}()

	router := handler.NewRouter(graph.Meta, func() bool { return atomic.LoadInt32(&workersReady) == 1 })
	httpServer := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.Port), Handler: router}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("diagnostic HTTP server failed", "err", err)
		}
	}()

	sched := scheduler.NewManager(log)
	if err := sched.StartScheduler(cfg.Scheduler.DiagnosticSnapshotCron, graph.Meta); err != nil {
		log.Error("could not start diagnostic snapshot scheduler", "err", err)
	}

	log.Info("device-engine started", "devices", len(descriptors), "buses", len(graph.Buses))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("device-engine shutting down")
	shutdown(graph, heartbeat, sched, httpServer, inboundCommands, inboundReports, log)
}

func drainOutbound(outbound <-chan models.OutboundMessage, log logger.Logger) {
	for msg := range outbound {
		switch msg.Kind {
		case models.OutboundDeviceState:
			log.Debug("outbound state report", "device_id", msg.DeviceState.DeviceID)
		case models.OutboundServerState:
			log.Debug("outbound heartbeat", "device_count", len(msg.ServerState.DeviceStatus))
		}
	}
}

func shutdown(
	graph *factory.Graph,
	heartbeat *worker.Heartbeat,
	sched *scheduler.Manager,
	httpServer *http.Server,
	inboundCommands chan models.DeviceCommandDto,
	inboundReports chan models.StateReportDto,
	log logger.Logger,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, bus := range graph.Buses {
		bus.Stop()
	}
	heartbeat.Stop()
	sched.StopScheduler()
	close(inboundCommands)
	close(inboundReports)

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("diagnostic HTTP server shutdown error", "err", err)
	}

	log.Info("device-engine stopped")
}
