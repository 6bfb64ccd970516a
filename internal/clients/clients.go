// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
// Copyright (c) 2019 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package clients provides the pre-flight connectivity check described in
// SPEC_FULL.md §10.3, adapted from the teacher's
// internal/clients/init.go parallel dependency-ping pattern
// (sync.WaitGroup fan-out over configured service URLs). The real broker
// and catalogue collaborators are out of scope (SPEC_FULL.md §1); this
// package only probes the HTTP ping route the EdgeX-style collaborator
// contract names, it never opens a wire connection for real traffic.
package clients

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/circutor/device-engine/internal/common"
	"github.com/circutor/device-engine/internal/logger"
)

// collaborator names one endpoint CheckCollaborators probes.
type collaborator struct {
	name     string
	endpoint string
}

// CheckCollaborators concurrently probes the broker and catalogue
// endpoints named in cfg with a short timeout. In mode=dummy, an
// unreachable collaborator is logged but does not fail startup, mirroring
// the Modbus/DMX dummy-mode posture that the control plane must be
// exercisable without any external collaborator present. Outside dummy
// mode, any unreachable collaborator is a fatal construction error.
func CheckCollaborators(cfg *common.Config, log logger.Logger) error {
	dummy := common.DummyModeEnabled()

	collaborators := []collaborator{
		{name: "broker", endpoint: cfg.Broker.Endpoint},
		{name: "catalogue", endpoint: cfg.Catalogue.Endpoint},
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(collaborators))
	wg.Add(len(collaborators))
	for _, c := range collaborators {
		go func(c collaborator) {
			defer wg.Done()
			if err := ping(c, cfg.Service.ConnectTimeoutMS); err != nil {
				errs <- fmt.Errorf("collaborator %s (%s) unreachable: %w", c.name, c.endpoint, err)
			}
		}(c)
	}
	wg.Wait()
	close(errs)

	var failures []error
	for err := range errs {
		failures = append(failures, err)
	}
	if len(failures) == 0 {
		return nil
	}

	for _, err := range failures {
		if dummy {
			log.Warn("collaborator unreachable, continuing in dummy mode", "err", err)
		} else {
			log.Error("collaborator unreachable", "err", err)
		}
	}
	if dummy {
		return nil
	}
	return common.NewConstructionError("collaborators", "endpoint", failures[0].Error())
}

func ping(c collaborator, timeoutMS int) error {
	if c.endpoint == "" {
		return fmt.Errorf("no endpoint configured")
	}

	timeout := time.Duration(timeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	client := http.Client{Timeout: timeout}
	resp, err := client.Get(c.endpoint + common.APIPingRoute)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("ping returned status %d", resp.StatusCode)
	}
	return nil
}
