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
	"slices"
)

const (
	headerSize         = 336
	extendedHeaderSize = 32
)

// supportedVersions lists the accepted minor revisions per major revision.
var supportedVersions = map[uint8][]uint8{
	2: {1, 2, 3},
	3: {0},
}

// Supported reports whether the decoder understands this file spec revision.
func (v Version) Supported() bool {
	return slices.Contains(supportedVersions[v.Major], v.Minor)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// decodeHeader decodes and validates the fixed header from its raw bytes.
func decodeHeader(b []byte) (Header, error) {
	c := newCursor(b)

	var hdr Header
	hdr.FileType = string(c.take(8))
	hdr.Version.Major = c.u8()
	hdr.Version.Minor = c.u8()
	hdr.Flags = c.u16()
	hdr.HeaderBytes = c.u32()
	hdr.PacketBytes = c.u32()
	hdr.TimeResolution = c.u32()
	hdr.SampleResolution = c.u32()

	hdr.Origin = SystemTime{
		Year:        c.u16(),
		Month:       c.u16(),
		Weekday:     c.u16(),
		Day:         c.u16(),
		Hour:        c.u16(),
		Minute:      c.u16(),
		Second:      c.u16(),
		Millisecond: c.u16(),
	}

	hdr.Application = c.text(32)
	hdr.Comment = c.text(256)
	hdr.ExtendedHeaderCount = c.u32()

	if c.err != nil {
		return Header{}, fmt.Errorf("error reading header: %w: %w", ErrCorruptFile, c.err)
	}

	if hdr.FileType != FileType {
		return Header{}, fmt.Errorf("%w: file type %q", ErrUnsupportedFormat, hdr.FileType)
	}
	if !hdr.Version.Supported() {
		return Header{}, fmt.Errorf("%w: file spec %s", ErrUnsupportedFormat, hdr.Version)
	}

	return hdr, nil
}
