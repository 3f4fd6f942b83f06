// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package nev

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// DigitalWidth is the width of the inline digital input value.
type DigitalWidth uint8

const (
	// DigitalWidth8 reads one byte of digital input per packet.
	DigitalWidth8 DigitalWidth = iota
	// DigitalWidth16 reads two bytes of digital input per packet.
	DigitalWidth16
)

func (w DigitalWidth) bytes() int {
	if w == DigitalWidth16 {
		return 2
	}
	return 1
}

func (w DigitalWidth) String() string {
	if w == DigitalWidth16 {
		return "16"
	}
	return "8"
}

// WaveformUnits is the unit of spike waveform samples.
type WaveformUnits uint8

const (
	// UnitsRaw leaves samples as stored in the file.
	UnitsRaw WaveformUnits = iota
	// UnitsMicrovolts converts samples using the electrode's digital factor.
	UnitsMicrovolts
)

func (u WaveformUnits) String() string {
	switch u {
	case UnitsRaw:
		return "raw"
	case UnitsMicrovolts:
		return "uV"
	default:
		return fmt.Sprintf("units(%d)", uint8(u))
	}
}

func (u WaveformUnits) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// ParseWaveformUnits parses "raw" or "uV" (case insensitive).
func ParseWaveformUnits(s string) (WaveformUnits, error) {
	switch strings.ToLower(s) {
	case "", "raw":
		return UnitsRaw, nil
	case "uv":
		return UnitsMicrovolts, nil
	default:
		return UnitsRaw, fmt.Errorf("unknown waveform units %q", s)
	}
}

// Options controls what a decode produces. The zero value decodes every
// packet without waveforms or marker parsing, reading 8-bit digital values.
type Options struct {
	HeaderOnly    bool          // Stop after the headers
	ReadWaveforms bool          // Materialise spike waveforms
	ParseMarkers  bool          // Run the marker grammar over digital events
	DigitalWidth  DigitalWidth  // Width of the inline digital value
	WaveformUnits WaveformUnits // Units of materialised waveforms
	Logger        *slog.Logger  // Debug and warning output, discarded if nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
