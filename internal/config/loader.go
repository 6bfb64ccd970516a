// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
// Copyright (C) 2018 IOTech Ltd
// Copyright (c) 2019 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the service's TOML configuration file into
// common.Config.
package config

import (
	"io/ioutil"
	"path"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/circutor/device-engine/internal/common"
)

// LoadConfig loads the local configuration file based upon the specified
// parameters and returns a pointer to the common.Config struct which holds
// all of the local configuration settings for the service. profile selects
// a named override file when non-empty (e.g. "docker" loads
// configuration-docker.toml); confDir defaults to common.ConfigDirectory.
func LoadConfig(profile string, confDir string) (*common.Config, error) {
	return loadConfigFromFile(profile, confDir)
}

func loadConfigFromFile(profile string, confDir string) (config *common.Config, err error) {
	if len(confDir) == 0 {
		confDir = common.ConfigDirectory
	}

	fileName := common.ConfigFileName
	if profile != "" {
		ext := filepath.Ext(fileName)
		fileName = fileName[:len(fileName)-len(ext)] + "-" + profile + ext
	}

	fullPath := path.Join(confDir, fileName)
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not build absolute path to configuration file %s", fullPath)
	}

	// go-toml's Unmarshal can panic on certain malformed documents rather
	// than returning an error; recover and turn that into a normal error so
	// a bad config file never crashes startup outright.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("could not load configuration file; invalid TOML (%s): %v", absPath, r)
		}
	}()

	config = common.Default()
	contents, err := ioutil.ReadFile(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read configuration file (%s); be sure to change to the program folder or set the working directory", absPath)
	}

	if err = toml.Unmarshal(contents, config); err != nil {
		return nil, errors.Wrapf(err, "unable to parse configuration file (%s)", absPath)
	}

	return config, nil
}
