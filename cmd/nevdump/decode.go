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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/OpenPSG/nev"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

func commonFlags(s *decodeSettings, configFile *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to config file (default: user config dir)", Destination: configFile},
		&cli.BoolFlag{Name: "pretty", Usage: "indent JSON output", Destination: &s.pretty},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Value: "warn", Destination: &s.logLevel},
		&cli.StringFlag{Name: "log-format", Usage: "text or json", Value: "text", Destination: &s.logFormat},
	}
}

func decodeFlags(s *decodeSettings) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "waveforms", Aliases: []string{"w"}, Usage: "include spike waveforms", Destination: &s.waveforms},
		&cli.BoolFlag{Name: "parse-markers", Aliases: []string{"p"}, Usage: "parse the digital marker stream", Destination: &s.markers},
		&cli.BoolFlag{Name: "digital-16bit", Usage: "read 16-bit digital values", Destination: &s.digital16},
		&cli.StringFlag{Name: "units", Usage: "waveform units: raw or uV", Value: "raw", Destination: &s.units},
	}
}

func decodeCmd() *cli.Command {
	var (
		s          decodeSettings
		configFile string
	)

	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode headers and every event packet",
		ArgsUsage: "<file.nev>",
		Flags:     append(commonFlags(&s, &configFile), decodeFlags(&s)...),
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(c, &s, configFile, false)
		},
	}
}

func headerCmd() *cli.Command {
	var (
		s          decodeSettings
		configFile string
	)

	return &cli.Command{
		Name:      "header",
		Usage:     "Decode the headers only",
		ArgsUsage: "<file.nev>",
		Flags:     commonFlags(&s, &configFile),
		Action: func(ctx context.Context, c *cli.Command) error {
			return run(c, &s, configFile, true)
		},
	}
}

func run(c *cli.Command, s *decodeSettings, configFile string, headerOnly bool) error {
	if c.NArg() != 1 {
		return cli.Exit(fmt.Sprintf("usage: nevdump %s %s", c.Name, c.ArgsUsage), 2)
	}
	path := c.Args().First()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	if err := s.apply(c, cfg); err != nil {
		return cli.Exit(fmt.Sprintf("error: config: %v", err), 1)
	}

	opts, err := s.options()
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 2)
	}
	opts.HeaderOnly = headerOnly
	opts.Logger = newLogger(os.Stderr, s.logFormat, s.logLevel).With(slog.String("file", path))

	f, err := nev.DecodeFile(path, opts)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: decode %s: %v", path, err), 1)
	}

	return writeJSON(os.Stdout, f, s.pretty)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}
