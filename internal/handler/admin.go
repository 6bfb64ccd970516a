// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0

// Package handler exposes the read-only diagnostic HTTP API described in
// SPEC_FULL.md §10.5, adapted from the teacher's update.go/control.go
// github.com/gorilla/mux route-wiring shape. Unlike the teacher's
// /callback route, which mutates the device/profile cache at runtime,
// every route here is strictly observational: dynamic reconfiguration
// after startup is an explicit non-goal (SPEC_FULL.md §1).
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/circutor/device-engine/internal/cache"
	"github.com/circutor/device-engine/internal/common"
)

// NewRouter builds the mux.Router serving the diagnostic API against
// meta. ready is polled by the ping route; it should report true once the
// dispatcher, reporter, and heartbeat goroutines are all running.
func NewRouter(meta *cache.MetaCache, ready func() bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc(common.APIPingRoute, pingHandler(ready)).Methods(http.MethodGet)
	r.HandleFunc(common.APIDevicesRoute, devicesHandler(meta)).Methods(http.MethodGet)
	r.HandleFunc(common.APIDevicesRoute+"/{"+common.NameVar+"}", deviceHandler(meta)).Methods(http.MethodGet)

	return r
}

func pingHandler(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func devicesHandler(meta *cache.MetaCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, meta.Snapshot())
	}
}

func deviceHandler(meta *cache.MetaCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)[common.NameVar]
		m, ok := meta.Get(name)
		if !ok {
			http.Error(w, "device not found: "+name, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
