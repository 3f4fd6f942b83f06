// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package nev

import "fmt"

// extKind identifies the kind of an extended header record.
type extKind uint8

const (
	extUnrecognized extKind = iota
	extArrayName
	extArrayComment
	extArrayContinuedComment
	extMapFile
	extWaveform
	extLabel
	extFilter
	extDigitalLabel
	extVideoSource
	extTrackable
)

var extKinds = map[string]extKind{
	"ARRAYNME":    extArrayName,
	"ECOMMENT":    extArrayComment,
	"CCOMMENT":    extArrayContinuedComment,
	"MAPFILE\x00": extMapFile,
	"NEUEVWAV":    extWaveform,
	"NEUEVLBL":    extLabel,
	"NEUEVFLT":    extFilter,
	"DIGLABEL":    extDigitalLabel,
	"VIDEOSYN":    extVideoSource,
	"TRACKOBJ":    extTrackable,
}

func extKindOf(tag []byte) extKind {
	return extKinds[string(tag)]
}

// extendedHeaders accumulates everything the extended header records
// describe.
type extendedHeaders struct {
	array         ArrayInfo
	electrodes    ElectrodeTable
	digitalLabels []string
	videoSources  []VideoSource
	trackables    []Trackable
}

// decodeExtendedHeaders decodes count records of extendedHeaderSize bytes.
func decodeExtendedHeaders(b []byte, count int) (*extendedHeaders, error) {
	if len(b) < count*extendedHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes for %d records", ErrCorruptExtendedHeader, len(b), count)
	}

	ext := &extendedHeaders{}
	for i := range count {
		rec := b[i*extendedHeaderSize : (i+1)*extendedHeaderSize]
		if err := ext.decode(rec); err != nil {
			return nil, fmt.Errorf("error decoding extended header %d: %w", i, err)
		}
	}

	return ext, nil
}

func (ext *extendedHeaders) decode(rec []byte) error {
	c := newCursor(rec)
	tag := c.take(8)

	switch extKindOf(tag) {
	case extArrayName:
		ext.array.Name = c.text(24)
	case extArrayComment:
		ext.array.Comment = c.text(24)
	case extArrayContinuedComment:
		ext.array.ContinuedComment = c.text(24)
	case extMapFile:
		ext.array.MapFile = c.text(24)
	case extWaveform:
		e, err := ext.electrode(c)
		if err != nil {
			return err
		}
		if bank := c.u8(); bank > 0 {
			e.ConnectorBank = string(rune('A' + bank - 1))
		}
		e.ConnectorPin = c.u8()
		e.DigitalFactor = c.u16()
		e.EnergyThreshold = c.u16()
		e.HighThreshold = c.i16()
		e.LowThreshold = c.i16()
		e.Units = c.u8()
		e.SampleBytes = c.u8()
		e.SpikeWidth = c.u16()
	case extLabel:
		e, err := ext.electrode(c)
		if err != nil {
			return err
		}
		e.Label = c.text(16)
	case extFilter:
		e, err := ext.electrode(c)
		if err != nil {
			return err
		}
		e.Filter = &FilterInfo{
			HighCorner: c.u32(),
			HighOrder:  c.u32(),
			HighType:   c.u16(),
			LowCorner:  c.u32(),
			LowOrder:   c.u32(),
			LowType:    c.u16(),
		}
	case extDigitalLabel:
		label := c.text(16)
		mode := int(c.u8())
		if mode >= len(ext.digitalLabels) {
			ext.digitalLabels = append(ext.digitalLabels, make([]string, mode+1-len(ext.digitalLabels))...)
		}
		ext.digitalLabels[mode] = label
	case extVideoSource:
		ext.videoSources = append(ext.videoSources, VideoSource{
			ID:        c.u16(),
			Name:      c.text(16),
			FrameRate: c.f32(),
		})
	case extTrackable:
		ext.trackables = append(ext.trackables, Trackable{
			Type:       c.u16(),
			ID:         c.u16(),
			PointCount: c.u16(),
			Name:       c.text(16),
		})
	default:
		return fmt.Errorf("%w: unrecognized tag %q", ErrCorruptExtendedHeader, cstring(tag))
	}

	if c.err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptExtendedHeader, c.err)
	}
	return nil
}

// electrode reads the electrode ID of a per-electrode record and returns its
// table slot.
func (ext *extendedHeaders) electrode(c *cursor) (*ElectrodeInfo, error) {
	id := c.u16()
	if c.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptExtendedHeader, c.err)
	}
	if id == 0 {
		return nil, fmt.Errorf("%w: electrode id 0", ErrCorruptExtendedHeader)
	}
	return ext.electrodes.entry(id), nil
}
