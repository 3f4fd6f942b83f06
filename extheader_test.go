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
	"testing"

	"github.com/OpenPSG/nev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeExtendedHeaders(t *testing.T) {
	nb := newBuilder(t, 104)
	nb.extHeader("ARRAYNME", fixed("first", 24)).
		extHeader("ECOMMENT", fixed("implanted 2023", 24)).
		extHeader("CCOMMENT", fixed("motor cortex", 24)).
		extHeader("MAPFILE", fixed("array.cmp", 24)).
		extHeader("ARRAYNME", fixed("Utah 96", 24)).
		extHeader("NEUEVWAV",
			uint16(5),               // electrode
			uint8(2), uint8(17),     // bank B, pin 17
			uint16(250),             // digital factor
			uint16(0),               // energy threshold
			int16(800), int16(-800), // thresholds
			uint8(2), uint8(2),      // units, bytes per sample
			uint16(48),              // spike width
		).
		extHeader("NEUEVLBL", uint16(5), fixed("elec5", 16)).
		extHeader("NEUEVFLT", uint16(5),
			uint32(250000), uint32(4), uint16(1),
			uint32(7500000), uint32(3), uint16(1),
		).
		extHeader("NEUEVLBL", uint16(130), fixed("ainp2", 16)).
		extHeader("DIGLABEL", fixed("parallel", 16), uint8(1)).
		extHeader("DIGLABEL", fixed("serial", 16), uint8(0)).
		extHeader("VIDEOSYN", uint16(1), fixed("front", 16), float32(30)).
		extHeader("VIDEOSYN", uint16(2), fixed("side", 16), float32(29.97)).
		extHeader("TRACKOBJ", uint16(3), uint16(7), uint16(4), fixed("rat", 16))

	f, err := nev.DecodeBytes(nb.bytes(), nev.Options{})
	require.NoError(t, err)

	assert.Equal(t, nev.ArrayInfo{
		Name:             "Utah 96",
		Comment:          "implanted 2023",
		ContinuedComment: "motor cortex",
		MapFile:          "array.cmp",
	}, f.Array)

	assert.Equal(t, 2, f.Electrodes.Len())
	assert.Equal(t, []uint16{5, 130}, f.Electrodes.IDs())

	e, ok := f.Electrodes.Get(5)
	require.True(t, ok)
	assert.Equal(t, nev.ElectrodeInfo{
		ID:            5,
		ConnectorBank: "B",
		ConnectorPin:  17,
		DigitalFactor: 250,
		HighThreshold: 800,
		LowThreshold:  -800,
		Units:         2,
		SampleBytes:   2,
		SpikeWidth:    48,
		Label:         "elec5",
		Filter: &nev.FilterInfo{
			HighCorner: 250000, HighOrder: 4, HighType: 1,
			LowCorner: 7500000, LowOrder: 3, LowType: 1,
		},
	}, e)

	e, ok = f.Electrodes.Get(130)
	require.True(t, ok)
	assert.Equal(t, "ainp2", e.Label)
	assert.Nil(t, e.Filter)
	assert.Zero(t, e.DigitalFactor)

	for _, id := range []uint16{0, 1, 6, 129, 131, 5000} {
		_, ok := f.Electrodes.Get(id)
		assert.False(t, ok, "electrode %d", id)
	}

	assert.Equal(t, []string{"serial", "parallel"}, f.DigitalLabels)
	assert.Equal(t, []nev.VideoSource{
		{ID: 1, Name: "front", FrameRate: 30},
		{ID: 2, Name: "side", FrameRate: 29.97},
	}, f.VideoSources)
	assert.Equal(t, []nev.Trackable{{Type: 3, ID: 7, PointCount: 4, Name: "rat"}}, f.Trackables)
}

func TestElectrodeTableAllCopies(t *testing.T) {
	nb := newBuilder(t, 104)
	nb.extHeader("NEUEVFLT", uint16(2), uint32(1), uint32(1), uint16(1), uint32(1), uint32(1), uint16(1))

	f, err := nev.DecodeBytes(nb.bytes(), nev.Options{HeaderOnly: true})
	require.NoError(t, err)

	all := f.Electrodes.All()
	require.Len(t, all, 1)
	all[0].Filter.HighCorner = 99

	e, _ := f.Electrodes.Get(2)
	assert.Equal(t, uint32(1), e.Filter.HighCorner)
}

func TestDecodeCorruptExtendedHeader(t *testing.T) {
	tests := []struct {
		name  string
		build func(nb *nevBuilder)
	}{
		{"unrecognized tag", func(nb *nevBuilder) {
			nb.extHeader("ARRAYNME", fixed("a", 24)).extHeader("BOGUSTAG", fixed("x", 24))
		}},
		{"electrode id 0", func(nb *nevBuilder) {
			nb.extHeader("NEUEVLBL", uint16(0), fixed("none", 16))
		}},
		{"header bytes too small", func(nb *nevBuilder) {
			nb.extHeader("ARRAYNME", fixed("a", 24)).extHeader("ARRAYNME", fixed("b", 24))
			nb.headerBytes = 336 + 32
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb := newBuilder(t, 104)
			tt.build(nb)

			f, err := nev.DecodeBytes(nb.bytes(), nev.Options{HeaderOnly: true})
			require.ErrorIs(t, err, nev.ErrCorruptExtendedHeader)
			assert.Nil(t, f)
		})
	}
}
