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
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// prefixSize is the part of every packet shared by all classes.
	prefixSize = 8
	// chunkPackets bounds how many packets a single read covers.
	chunkPackets = 4096
)

// packetTable holds the common prefix of every packet in the event region.
type packetTable struct {
	timestamps []uint32
	tags       []uint16
	reasons    []uint8
	digital    []uint16 // Inline digital value, zero unless the tag is TagDigital
}

// packetStream reads fixed size packets from the event region.
type packetStream struct {
	r      io.ReaderAt
	start  int64
	stride int
	count  int
	buf    []byte
}

func newPacketStream(r io.ReaderAt, size int64, hdr *Header, width DigitalWidth) (*packetStream, error) {
	stride := int(hdr.PacketBytes)
	if stride < prefixSize+width.bytes() {
		return nil, fmt.Errorf("%w: packet size %d", ErrCorruptFile, stride)
	}

	start := int64(hdr.HeaderBytes)
	if start > size {
		return nil, fmt.Errorf("%w: header bytes %d beyond file size %d", ErrCorruptFile, start, size)
	}

	region := size - start
	if region%int64(stride) != 0 {
		return nil, fmt.Errorf("%w: event region of %d bytes is not a multiple of packet size %d", ErrCorruptFile, region, stride)
	}

	return &packetStream{
		r:      r,
		start:  start,
		stride: stride,
		count:  int(region / int64(stride)),
	}, nil
}

// readChunk reads packets [first, end) into the shared buffer.
func (s *packetStream) readChunk(first, end int) ([]byte, error) {
	n := (end - first) * s.stride
	if cap(s.buf) < n {
		s.buf = make([]byte, n)
	}
	b := s.buf[:n]

	if err := readAt(s.r, b, s.start+int64(first)*int64(s.stride)); err != nil {
		return nil, fmt.Errorf("error reading packets %d-%d: %w", first, end-1, err)
	}
	return b, nil
}

// readPrefixes extracts the common prefix of every packet in bulk.
func (s *packetStream) readPrefixes(width DigitalWidth) (*packetTable, error) {
	t := &packetTable{
		timestamps: make([]uint32, s.count),
		tags:       make([]uint16, s.count),
		reasons:    make([]uint8, s.count),
		digital:    make([]uint16, s.count),
	}

	for first := 0; first < s.count; first += chunkPackets {
		end := min(first+chunkPackets, s.count)
		b, err := s.readChunk(first, end)
		if err != nil {
			return nil, err
		}

		for i := first; i < end; i++ {
			rec := b[(i-first)*s.stride:]
			t.timestamps[i] = binary.LittleEndian.Uint32(rec[0:4])
			t.tags[i] = binary.LittleEndian.Uint16(rec[4:6])
			t.reasons[i] = rec[6]
			if t.tags[i] != TagDigital {
				continue
			}
			if width == DigitalWidth16 {
				t.digital[i] = binary.LittleEndian.Uint16(rec[8:10])
			} else {
				t.digital[i] = uint16(rec[8])
			}
		}
	}

	return t, nil
}

// each calls fn with the full record of every packet in indices, which must
// be ascending. Nearby packets are fetched together so the number of reads
// stays proportional to the number of chunks touched, not packets.
func (s *packetStream) each(indices []int, fn func(i int, rec []byte) error) error {
	for pos := 0; pos < len(indices); {
		first := indices[pos]
		last := pos
		for last+1 < len(indices) && indices[last+1] < first+chunkPackets {
			last++
		}
		end := indices[last] + 1

		b, err := s.readChunk(first, end)
		if err != nil {
			return err
		}

		for _, i := range indices[pos : last+1] {
			off := (i - first) * s.stride
			if err := fn(i, b[off:off+s.stride]); err != nil {
				return err
			}
		}
		pos = last + 1
	}
	return nil
}
