// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package nev_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/OpenPSG/nev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeader(t *testing.T) {
	nb := newBuilder(t, 104)
	nb.comment = "left hemisphere\x00stale bytes"
	nb.flags = 0x01

	f, err := nev.DecodeBytes(nb.bytes(), nev.Options{HeaderOnly: true})
	require.NoError(t, err)

	hdr := f.Header
	assert.Equal(t, nev.FileType, hdr.FileType)
	assert.Equal(t, nev.Version{Major: 2, Minor: 3}, hdr.Version)
	assert.True(t, hdr.WaveformsAre16Bit())
	assert.Equal(t, uint32(336), hdr.HeaderBytes)
	assert.Equal(t, uint32(104), hdr.PacketBytes)
	assert.Equal(t, uint32(30000), hdr.TimeResolution)
	assert.Equal(t, uint32(30000), hdr.SampleResolution)
	assert.Equal(t, "File Dialog v6.03", hdr.Application)
	assert.Equal(t, "left hemisphere", hdr.Comment)
	assert.Equal(t, uint32(0), hdr.ExtendedHeaderCount)

	assert.Equal(t, nev.SystemTime{
		Year: 2024, Month: 3, Weekday: 2, Day: 14,
		Hour: 9, Minute: 30, Second: 15, Millisecond: 250,
	}, hdr.Origin)
	assert.Equal(t, time.Date(2024, time.March, 14, 9, 30, 15, 250*int(time.Millisecond), time.UTC), hdr.StartTime())
}

func TestDecodeSupportedVersions(t *testing.T) {
	for _, v := range []nev.Version{{Major: 2, Minor: 1}, {Major: 2, Minor: 2}, {Major: 2, Minor: 3}, {Major: 3, Minor: 0}} {
		t.Run(v.String(), func(t *testing.T) {
			nb := newBuilder(t, 104)
			nb.major, nb.minor = v.Major, v.Minor

			f, err := nev.DecodeBytes(nb.bytes(), nev.Options{})
			require.NoError(t, err)
			assert.Equal(t, v, f.Header.Version)
		})
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	tests := []struct {
		name     string
		fileType string
		major    uint8
		minor    uint8
	}{
		{"unknown minor", "NEURALEV", 2, 4},
		{"unknown major", "NEURALEV", 4, 0},
		{"wrong file type", "BREVENTS", 2, 3},
		{"empty file type", "", 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb := newBuilder(t, 104)
			nb.fileType, nb.major, nb.minor = tt.fileType, tt.major, tt.minor
			nb.packet(10, 1)

			f, err := nev.DecodeBytes(nb.bytes(), nev.Options{})
			require.ErrorIs(t, err, nev.ErrUnsupportedFormat)
			assert.Nil(t, f)
		})
	}
}

func TestDecodeTruncatedHeader(t *testing.T) {
	b := newBuilder(t, 104).bytes()

	f, err := nev.DecodeBytes(b[:200], nev.Options{})
	require.ErrorIs(t, err, nev.ErrCorruptFile)
	assert.Nil(t, f)
}

// boundedReaderAt fails any read past limit.
type boundedReaderAt struct {
	r     io.ReaderAt
	limit int64
}

func (b *boundedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > b.limit {
		return 0, fmt.Errorf("read of [%d, %d) beyond %d", off, off+int64(len(p)), b.limit)
	}
	return b.r.ReadAt(p, off)
}

func TestHeaderOnlySkipsEventRegion(t *testing.T) {
	nb := newBuilder(t, 104)
	nb.extHeader("NEUEVLBL", uint16(3), fixed("elec3", 16))
	// An unknown tag would abort a full decode.
	nb.packet(10, 30000)
	b := nb.bytes()

	r := &boundedReaderAt{r: bytes.NewReader(b), limit: 336 + 32}

	f, err := nev.Decode(r, int64(len(b)), nev.Options{HeaderOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 0, f.PacketCount)
	assert.Empty(t, f.Spikes)

	e, ok := f.Electrodes.Get(3)
	require.True(t, ok)
	assert.Equal(t, "elec3", e.Label)

	_, err = nev.Decode(r, int64(len(b)), nev.Options{})
	require.Error(t, err)
}
