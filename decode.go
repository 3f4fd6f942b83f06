// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package nev decodes NEV neural event files.
package nev

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// DecodeBytes decodes a NEV file held in memory.
func DecodeBytes(b []byte, opts Options) (*File, error) {
	return Decode(bytes.NewReader(b), int64(len(b)), opts)
}

// Decode decodes a NEV file of the given size. Either the whole file is
// decoded or an error is returned with no partial result.
func Decode(r io.ReaderAt, size int64, opts Options) (*File, error) {
	log := opts.logger()

	b := make([]byte, headerSize)
	if err := readAt(r, b, 0); err != nil {
		return nil, fmt.Errorf("error reading header: %w: %w", ErrCorruptFile, err)
	}
	hdr, err := decodeHeader(b)
	if err != nil {
		return nil, err
	}
	log.Debug("decoded header",
		slog.String("version", hdr.Version.String()),
		slog.Uint64("header_bytes", uint64(hdr.HeaderBytes)),
		slog.Uint64("packet_bytes", uint64(hdr.PacketBytes)),
		slog.Uint64("extended_headers", uint64(hdr.ExtendedHeaderCount)))

	extBytes := int64(hdr.ExtendedHeaderCount) * extendedHeaderSize
	if int64(hdr.HeaderBytes) < headerSize+extBytes {
		return nil, fmt.Errorf("%w: %d extended headers do not fit in %d header bytes", ErrCorruptExtendedHeader, hdr.ExtendedHeaderCount, hdr.HeaderBytes)
	}
	if headerSize+extBytes > size {
		return nil, fmt.Errorf("%w: extended headers extend beyond file size %d", ErrCorruptFile, size)
	}

	b = make([]byte, extBytes)
	if err := readAt(r, b, headerSize); err != nil {
		return nil, fmt.Errorf("error reading extended headers: %w: %w", ErrCorruptFile, err)
	}
	ext, err := decodeExtendedHeaders(b, int(hdr.ExtendedHeaderCount))
	if err != nil {
		return nil, err
	}
	log.Debug("decoded extended headers",
		slog.Int("electrodes", ext.electrodes.Len()),
		slog.Int("video_sources", len(ext.videoSources)),
		slog.Int("trackables", len(ext.trackables)))

	f := &File{
		Header:        hdr,
		Array:         ext.array,
		Electrodes:    ext.electrodes,
		DigitalLabels: ext.digitalLabels,
		VideoSources:  ext.videoSources,
		Trackables:    ext.trackables,
	}

	if opts.HeaderOnly {
		return f, nil
	}

	if err := decodePackets(f, r, size, opts, log); err != nil {
		return nil, err
	}

	return f, nil
}

// decodePackets reads the event region, classifies every packet and decodes
// each class into f.
func decodePackets(f *File, r io.ReaderAt, size int64, opts Options, log *slog.Logger) error {
	s, err := newPacketStream(r, size, &f.Header, opts.DigitalWidth)
	if err != nil {
		return err
	}

	t, err := s.readPrefixes(opts.DigitalWidth)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}

	p, err := partitionTags(t.tags)
	if err != nil {
		return err
	}

	f.PacketCount = s.count
	f.Counts = p.counts()
	log.Debug("classified packets",
		slog.Int("packets", s.count),
		slog.String("digital_width", opts.DigitalWidth.String()),
		slog.Any("counts", f.Counts))

	f.Spikes = make([]SpikeEvent, 0, len(p.spikes))
	if opts.ReadWaveforms {
		err = s.each(p.spikes, func(i int, rec []byte) error {
			f.Spikes = append(f.Spikes, spikeEvent(f, t, i, rec, opts.WaveformUnits))
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptFile, err)
		}
	} else {
		for _, i := range p.spikes {
			f.Spikes = append(f.Spikes, spikeEvent(f, t, i, nil, UnitsRaw))
		}
	}

	f.Digital = make([]DigitalEvent, 0, len(p.digital))
	for _, i := range p.digital {
		f.Digital = append(f.Digital, DigitalEvent{
			Timestamp:       t.timestamps[i],
			Seconds:         seconds(t.timestamps[i], f.Header.SampleResolution),
			InsertionReason: t.reasons[i],
			Value:           t.digital[i],
		})
	}

	if opts.ParseMarkers {
		f.Markers, f.Warnings = ParseMarkers(f.Digital)
		if len(f.Warnings) > 0 {
			log.Warn("digital marker stream contains unparsed segments",
				slog.Int("unparsed", len(f.Warnings)),
				slog.Int("segments", len(f.Markers)))
		}
	}

	if err := decodeClass(s, t, p.comments, decodeComment, &f.Comments); err != nil {
		return err
	}
	if err := decodeClass(s, t, p.videoSync, decodeVideoSync, &f.VideoSync); err != nil {
		return err
	}
	if err := decodeClass(s, t, p.tracking, decodeTracking, &f.Tracking); err != nil {
		return err
	}
	if err := decodeClass(s, t, p.patientTrigger, decodePatientTrigger, &f.PatientTriggers); err != nil {
		return err
	}
	if err := decodeClass(s, t, p.reconfig, decodeReconfig, &f.Reconfigs); err != nil {
		return err
	}

	return nil
}

func spikeEvent(f *File, t *packetTable, i int, rec []byte, units WaveformUnits) SpikeEvent {
	ev := SpikeEvent{
		Timestamp: t.timestamps[i],
		Electrode: t.tags[i],
		Unit:      t.reasons[i],
		Units:     UnitsRaw,
	}
	if rec == nil {
		return ev
	}

	ev.Waveform = decodeWaveform(rec)
	if units == UnitsMicrovolts && ConvertWaveform(ev.Waveform, f.Electrodes.digitalFactor(ev.Electrode)) {
		ev.Units = UnitsMicrovolts
	}
	return ev
}

// decodeClass decodes the payload of every packet in indices with dec.
func decodeClass[E any](s *packetStream, t *packetTable, indices []int, dec func(uint32, []byte) (E, error), out *[]E) error {
	if len(indices) == 0 {
		return nil
	}

	events := make([]E, 0, len(indices))
	err := s.each(indices, func(i int, rec []byte) error {
		ev, err := dec(t.timestamps[i], rec)
		if err != nil {
			return fmt.Errorf("error decoding packet %d: %w", i, err)
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrCorruptFile) {
			err = fmt.Errorf("%w: %w", ErrCorruptFile, err)
		}
		return err
	}

	*out = events
	return nil
}

func seconds(ts, resolution uint32) float64 {
	if resolution == 0 {
		return 0
	}
	return float64(ts) / float64(resolution)
}

// readAt fills b from offset off.
func readAt(r io.ReaderAt, b []byte, off int64) error {
	n, err := r.ReadAt(b, off)
	if n == len(b) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return err
}
