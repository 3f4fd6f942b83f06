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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// nevBuilder assembles NEV files for tests.
type nevBuilder struct {
	t           *testing.T
	fileType    string
	major       uint8
	minor       uint8
	flags       uint16
	stride      int
	sampleRes   uint32
	application string
	comment     string
	headerBytes int // Overrides the computed header size when non-zero
	ext         [][]byte
	packets     [][]byte
}

func newBuilder(t *testing.T, stride int) *nevBuilder {
	return &nevBuilder{
		t:           t,
		fileType:    "NEURALEV",
		major:       2,
		minor:       3,
		stride:      stride,
		sampleRes:   30000,
		application: "File Dialog v6.03",
	}
}

// fixed returns s NUL-padded to n bytes.
func fixed(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func (nb *nevBuilder) encode(size int, fields ...any) []byte {
	var buf bytes.Buffer
	for _, f := range fields {
		require.NoError(nb.t, binary.Write(&buf, binary.LittleEndian, f))
	}
	require.LessOrEqual(nb.t, buf.Len(), size)
	b := buf.Bytes()
	return append(b, make([]byte, size-len(b))...)
}

// extHeader appends an extended header record.
func (nb *nevBuilder) extHeader(tag string, fields ...any) *nevBuilder {
	nb.ext = append(nb.ext, nb.encode(32, append([]any{fixed(tag, 8)}, fields...)...))
	return nb
}

// packet appends a data packet.
func (nb *nevBuilder) packet(ts uint32, tag uint16, fields ...any) *nevBuilder {
	nb.packets = append(nb.packets, nb.encode(nb.stride, append([]any{ts, tag}, fields...)...))
	return nb
}

func (nb *nevBuilder) bytes() []byte {
	headerBytes := 336 + 32*len(nb.ext)
	if nb.headerBytes != 0 {
		headerBytes = nb.headerBytes
	}

	hdr := nb.encode(336,
		fixed(nb.fileType, 8),
		nb.major, nb.minor,
		nb.flags,
		uint32(headerBytes),
		uint32(nb.stride),
		uint32(30000),
		nb.sampleRes,
		[8]uint16{2024, 3, 2, 14, 9, 30, 15, 250},
		fixed(nb.application, 32),
		fixed(nb.comment, 256),
		uint32(len(nb.ext)),
	)

	out := append([]byte{}, hdr...)
	for _, e := range nb.ext {
		out = append(out, e...)
	}
	for _, p := range nb.packets {
		out = append(out, p...)
	}
	return out
}
