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
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for an unknown file type tag or an
	// unsupported file spec version.
	ErrUnsupportedFormat = errors.New("nev: unsupported format")
	// ErrCorruptExtendedHeader is returned when the extended header region
	// holds a record that cannot be decoded.
	ErrCorruptExtendedHeader = errors.New("nev: corrupt extended header")
	// ErrCorruptFile is returned when the file geometry is inconsistent.
	ErrCorruptFile = errors.New("nev: corrupt file")
	// ErrUnknownPacketTag is returned when a data packet carries a tag outside
	// every known packet class.
	ErrUnknownPacketTag = errors.New("nev: unknown packet tag")
	// ErrMarkerGrammar is the cause of every MarkerError.
	ErrMarkerGrammar = errors.New("nev: malformed digital marker")
)

// MarkerError describes a digital marker segment that could not be parsed.
// It is never fatal; decoded files collect them in File.Warnings.
type MarkerError struct {
	Segment   int    `json:"segment"`   // Index of the segment in the digital stream
	Timestamp uint32 `json:"timestamp"` // Timestamp of the segment's first event
	Text      string `json:"text"`      // Raw segment text, delimiter excluded
	Reason    string `json:"reason"`
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("%s: segment %d at %d (%q): %s", ErrMarkerGrammar, e.Segment, e.Timestamp, e.Text, e.Reason)
}

func (e *MarkerError) Unwrap() error {
	return ErrMarkerGrammar
}
