// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/OpenPSG/nev"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the nevdump configuration file
// (~/.config/nevdump/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	ReadWaveforms *bool  `yaml:"read_waveforms"`
	ParseMarkers  *bool  `yaml:"parse_markers"`
	DigitalWidth  *int   `yaml:"digital_width"`
	WaveformUnits string `yaml:"waveform_units"`
	Pretty        *bool  `yaml:"pretty"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "nevdump", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields a zero Config.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("error reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// decodeSettings are the effective settings of a decode command.
type decodeSettings struct {
	waveforms bool
	markers   bool
	digital16 bool
	units     string
	pretty    bool
	logLevel  string
	logFormat string
}

// apply fills settings from cfg where the corresponding flag was not set.
func (s *decodeSettings) apply(c *cli.Command, cfg Config) error {
	if cfg.ReadWaveforms != nil && !c.IsSet("waveforms") {
		s.waveforms = *cfg.ReadWaveforms
	}
	if cfg.ParseMarkers != nil && !c.IsSet("parse-markers") {
		s.markers = *cfg.ParseMarkers
	}
	if cfg.DigitalWidth != nil && !c.IsSet("digital-16bit") {
		switch *cfg.DigitalWidth {
		case 8:
			s.digital16 = false
		case 16:
			s.digital16 = true
		default:
			return fmt.Errorf("digital_width must be 8 or 16, got %d", *cfg.DigitalWidth)
		}
	}
	if cfg.WaveformUnits != "" && !c.IsSet("units") {
		s.units = cfg.WaveformUnits
	}
	if cfg.Pretty != nil && !c.IsSet("pretty") {
		s.pretty = *cfg.Pretty
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		s.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		s.logFormat = cfg.LogFormat
	}
	return nil
}

// options converts the settings into decode options.
func (s *decodeSettings) options() (nev.Options, error) {
	units, err := nev.ParseWaveformUnits(s.units)
	if err != nil {
		return nev.Options{}, err
	}

	opts := nev.Options{
		ReadWaveforms: s.waveforms,
		ParseMarkers:  s.markers,
		WaveformUnits: units,
		DigitalWidth:  nev.DigitalWidth8,
	}
	if s.digital16 {
		opts.DigitalWidth = nev.DigitalWidth16
	}
	return opts, nil
}
