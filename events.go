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
	"math"
)

// Minimum packet sizes per class.
const (
	commentMinBytes   = 12
	videoSyncMinBytes = 20
	trackingMinBytes  = 50
	triggerMinBytes   = 8
	reconfigMinBytes  = 32
)

const charSetUTF16 = 1

func checkSize(class PacketClass, rec []byte, need int) error {
	if len(rec) < need {
		return fmt.Errorf("%w: %s packet of %d bytes, need %d", ErrCorruptFile, class, len(rec), need)
	}
	return nil
}

// decodeWaveform reads the samples following the packet prefix.
func decodeWaveform(rec []byte) []int16 {
	c := newCursor(rec[prefixSize:])
	wf := make([]int16, c.remaining()/2)
	for i := range wf {
		wf[i] = c.i16()
	}
	return wf
}

// ConvertWaveform converts raw samples to microvolts in place using an
// electrode digital factor in nanovolts per bit. Samples are divided by the
// integer 1000/factor and truncated, matching the fixed point storage; a
// factor above 1000 scales by factor/1000 instead, saturating at the int16
// range. A zero factor leaves the samples untouched and reports false.
func ConvertWaveform(samples []int16, factor uint16) bool {
	if factor == 0 {
		return false
	}

	div := 1000 / int32(factor)
	for i, s := range samples {
		if div == 0 {
			samples[i] = saturate16(int32(s) * int32(factor) / 1000)
		} else {
			samples[i] = int16(int32(s) / div)
		}
	}
	return true
}

func saturate16(v int32) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

func decodeComment(ts uint32, rec []byte) (CommentEvent, error) {
	if err := checkSize(ClassComment, rec, commentMinBytes); err != nil {
		return CommentEvent{}, err
	}

	c := newCursor(rec)
	c.seek(6)
	ev := CommentEvent{
		Timestamp: ts,
		CharSet:   c.u8(),
		Flags:     c.u8(),
		Color:     c.u32(),
	}

	text := c.rest()
	if ev.CharSet == charSetUTF16 {
		ev.Text = utf16String(text)
	} else {
		ev.Text = cstring(text)
	}

	return ev, c.err
}

func decodeVideoSync(ts uint32, rec []byte) (VideoSyncEvent, error) {
	if err := checkSize(ClassVideoSync, rec, videoSyncMinBytes); err != nil {
		return VideoSyncEvent{}, err
	}

	c := newCursor(rec)
	c.seek(6)
	ev := VideoSyncEvent{
		Timestamp:   ts,
		FileNumber:  c.u16(),
		FrameNumber: c.u32(),
		ElapsedTime: c.u32(),
		SourceID:    c.u32(),
	}

	return ev, c.err
}

func decodeTracking(ts uint32, rec []byte) (TrackingEvent, error) {
	if err := checkSize(ClassTracking, rec, trackingMinBytes); err != nil {
		return TrackingEvent{}, err
	}

	c := newCursor(rec)
	c.seek(6)
	ev := TrackingEvent{
		Timestamp:   ts,
		ChildID:     c.u16(),
		TrackableID: c.u32(),
	}

	// Geometry fields share one representation and are read in file order.
	for _, f := range []*int32{
		&ev.CenterX, &ev.CenterY, &ev.CenterZ,
		&ev.Direction1, &ev.Direction2,
		&ev.Volume,
		&ev.Radius1, &ev.Radius2, &ev.Radius3,
	} {
		*f = c.i32()
	}
	ev.ChildCount = c.u16()

	return ev, c.err
}

func decodePatientTrigger(ts uint32, rec []byte) (PatientTriggerEvent, error) {
	if err := checkSize(ClassPatientTrigger, rec, triggerMinBytes); err != nil {
		return PatientTriggerEvent{}, err
	}

	c := newCursor(rec)
	c.seek(6)
	ev := PatientTriggerEvent{
		Timestamp:   ts,
		TriggerType: c.u16(),
	}

	return ev, c.err
}

func decodeReconfig(ts uint32, rec []byte) (ReconfigEvent, error) {
	if err := checkSize(ClassReconfig, rec, reconfigMinBytes); err != nil {
		return ReconfigEvent{}, err
	}

	c := newCursor(rec)
	c.seek(6)
	ev := ReconfigEvent{
		Timestamp:   ts,
		ChangeType:  c.u16(),
		Component:   c.text(24),
		Description: cstring(c.rest()),
	}

	return ev, c.err
}
