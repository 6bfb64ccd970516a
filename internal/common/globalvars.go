// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

package common

import "github.com/circutor/device-engine/internal/logger"

// Package-level service singletons, in the teacher SDK's idiom: a small set
// of globals set once during startup (cmd/device-engine/main.go) and read
// thereafter by every package that needs the running service's identity or
// its logger, instead of threading them through every constructor call.
var (
	ServiceName    string
	ServiceVersion string

	CurrentConfig *Config
	LoggingClient logger.Logger
)
