// -*- mode: Go; indent-tabs-mode: t -*-
//
// SPDX-License-Identifier: Apache-2.0

// Package catalogue loads the flat list of device descriptors the factory
// (internal/factory) builds the control plane from.
//
// The real catalogue source — an HTTP fetch with SQLite fallback — is
// deliberately out of scope (see SPEC_FULL.md §1). This package is the
// concrete stand-in used by cmd/device-engine and by tests: a local YAML
// file, decoded with gopkg.in/yaml.v2 and shape-validated against the
// per-device_type config fields table before being handed to the factory.
package catalogue

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/circutor/device-engine/pkg/models"
)

type catalogueFile struct {
	Devices []models.DeviceDescriptor `yaml:"devices"`
}

// Load reads and validates the device catalogue at path.
func Load(path string) ([]models.DeviceDescriptor, error) {
	contents, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read device catalogue (%s)", path)
	}

	var doc catalogueFile
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return nil, errors.Wrapf(err, "could not parse device catalogue (%s)", path)
	}

	seen := make(map[string]bool, len(doc.Devices))
	for _, d := range doc.Devices {
		if d.DeviceID == "" {
			return nil, errors.Errorf("device catalogue (%s): entry with empty device_id", path)
		}
		if seen[d.DeviceID] {
			return nil, errors.Errorf("device catalogue (%s): duplicate device_id %q", path, d.DeviceID)
		}
		seen[d.DeviceID] = true

		if err := validate(d); err != nil {
			return nil, errors.Wrapf(err, "device catalogue (%s)", path)
		}
	}

	return doc.Devices, nil
}

// validate checks that a descriptor carries the config fields its
// device_type requires, per SPEC_FULL.md §6. It does not check
// cross-device invariants (parent existence, class compatibility) — those
// are the factory's responsibility, since they require the full device set.
func validate(d models.DeviceDescriptor) error {
	requireString := func(key string) error {
		if _, ok := d.ConfigString(key); !ok {
			return errors.Errorf("device %q: missing or non-string config field %q", d.DeviceID, key)
		}
		return nil
	}
	requireInt := func(key string) error {
		if _, ok := d.ConfigInt(key); !ok {
			return errors.Errorf("device %q: missing or non-integer config field %q", d.DeviceID, key)
		}
		return nil
	}

	switch d.DeviceType {
	case models.TypeModbusBus:
		return firstErr(requireString("serial_port"), requireInt("baudrate"))
	case models.TypeDmxBus:
		return requireString("serial_port")
	case models.TypeSerialBus:
		return firstErr(requireString("serial_port"), requireInt("baudrate"))
	case models.TypeModbusDoController:
		return firstErr(requireInt("unit"), requireInt("output_num"))
	case models.TypeModbusDiController:
		return firstErr(requireInt("unit"), requireInt("num"))
	case models.TypeModbusDoPort:
		return requireInt("address")
	case models.TypeModbusDiPort:
		return requireInt("address")
	case models.TypeDmxChannel:
		return firstErr(requireInt("address"), requireInt("channel_num"))
	case models.TypeAudioOutput:
		return firstErr(requireString("soundcard_id"), requireString("channel"))
	case models.TypeSerialRemote:
		return requireInt("num_button")
	default:
		return errors.Errorf("device %q: unknown device_type %q", d.DeviceID, d.DeviceType)
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
