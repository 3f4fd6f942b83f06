// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package nev

import "time"

// FileType is the only file type tag accepted by the decoder.
const FileType = "NEURALEV"

// Version is a NEV file spec revision.
type Version struct {
	Major uint8 `json:"major"`
	Minor uint8 `json:"minor"`
}

// Header represents the fixed NEV file header.
type Header struct {
	FileType            string     `json:"fileType"`            // File type tag, always "NEURALEV"
	Version             Version    `json:"version"`             // File spec revision
	Flags               uint16     `json:"flags"`               // Additional flags, bit 0 set if all waveforms are 16-bit
	HeaderBytes         uint32     `json:"headerBytes"`         // Bytes in all headers, also the offset of the first data packet
	PacketBytes         uint32     `json:"packetBytes"`         // Bytes in every data packet
	TimeResolution      uint32     `json:"timeResolution"`      // Time stamp ticks per second
	SampleResolution    uint32     `json:"sampleResolution"`    // Samples per second
	Origin              SystemTime `json:"origin"`              // Raw recording start time
	Application         string     `json:"application"`         // Application that created the file
	Comment             string     `json:"comment"`             // Free text comment
	ExtendedHeaderCount uint32     `json:"extendedHeaderCount"` // Number of extended headers
}

// WaveformsAre16Bit reports whether the header flags declare 16-bit spike
// waveforms regardless of the per-electrode sample width.
func (h *Header) WaveformsAre16Bit() bool {
	return h.Flags&0x01 != 0
}

// StartTime returns the recording start time in UTC.
func (h *Header) StartTime() time.Time {
	o := h.Origin
	return time.Date(int(o.Year), time.Month(o.Month), int(o.Day),
		int(o.Hour), int(o.Minute), int(o.Second), int(o.Millisecond)*int(time.Millisecond), time.UTC)
}

// SystemTime holds the raw time origin components as stored in the file.
type SystemTime struct {
	Year        uint16 `json:"year"`
	Month       uint16 `json:"month"`
	Weekday     uint16 `json:"weekday"`
	Day         uint16 `json:"day"`
	Hour        uint16 `json:"hour"`
	Minute      uint16 `json:"minute"`
	Second      uint16 `json:"second"`
	Millisecond uint16 `json:"millisecond"`
}

// ArrayInfo holds array level metadata from the extended headers.
type ArrayInfo struct {
	Name             string `json:"name,omitempty"`
	Comment          string `json:"comment,omitempty"`
	ContinuedComment string `json:"continuedComment,omitempty"`
	MapFile          string `json:"mapFile,omitempty"`
}

// ElectrodeInfo represents the configuration of a single electrode, merged
// from every extended header that names it.
type ElectrodeInfo struct {
	ID              uint16      `json:"id"`
	ConnectorBank   string      `json:"connectorBank,omitempty"`   // Physical connector bank ("A", "B", ...)
	ConnectorPin    uint8       `json:"connectorPin,omitempty"`    // Pin on the connector
	DigitalFactor   uint16      `json:"digitalFactor,omitempty"`   // Nanovolts per bit
	EnergyThreshold uint16      `json:"energyThreshold,omitempty"` // Energy detection threshold
	HighThreshold   int16       `json:"highThreshold,omitempty"`   // High amplitude threshold (uV)
	LowThreshold    int16       `json:"lowThreshold,omitempty"`    // Low amplitude threshold (uV)
	Units           uint8       `json:"units,omitempty"`           // Number of sorted units
	SampleBytes     uint8       `json:"sampleBytes,omitempty"`     // Bytes per waveform sample
	SpikeWidth      uint16      `json:"spikeWidth,omitempty"`      // Samples per waveform
	Label           string      `json:"label,omitempty"`
	Filter          *FilterInfo `json:"filter,omitempty"`
}

// FilterInfo describes the filters applied to an electrode. Corner
// frequencies are in millihertz.
type FilterInfo struct {
	HighCorner uint32 `json:"highCorner"`
	HighOrder  uint32 `json:"highOrder"`
	HighType   uint16 `json:"highType"`
	LowCorner  uint32 `json:"lowCorner"`
	LowOrder   uint32 `json:"lowOrder"`
	LowType    uint16 `json:"lowType"`
}

// VideoSource describes a video synchronisation source.
type VideoSource struct {
	ID        uint16  `json:"id"`
	Name      string  `json:"name"`
	FrameRate float32 `json:"frameRate"`
}

// Trackable describes an object tracked by a video tracking system.
type Trackable struct {
	Type       uint16 `json:"type"`
	ID         uint16 `json:"id"`
	PointCount uint16 `json:"pointCount"`
	Name       string `json:"name"`
}

// SpikeEvent is a detected spike on an electrode.
type SpikeEvent struct {
	Timestamp uint32        `json:"timestamp"`
	Electrode uint16        `json:"electrode"`
	Unit      uint8         `json:"unit"`               // Sorted unit, 0 for unclassified
	Waveform  []int16       `json:"waveform,omitempty"` // Only present when waveforms are read
	Units     WaveformUnits `json:"units"`
}

// DigitalEvent is a change on the digital inputs.
type DigitalEvent struct {
	Timestamp       uint32  `json:"timestamp"`
	Seconds         float64 `json:"seconds"`
	InsertionReason uint8   `json:"insertionReason"`
	Value           uint16  `json:"value"`
}

// CommentEvent is a user or application comment.
type CommentEvent struct {
	Timestamp uint32 `json:"timestamp"`
	CharSet   uint8  `json:"charSet"` // 0 for ANSI, 1 for UTF-16
	Flags     uint8  `json:"flags"`
	Color     uint32 `json:"color"`
	Text      string `json:"text"`
}

// VideoSyncEvent links a timestamp to a video frame.
type VideoSyncEvent struct {
	Timestamp   uint32 `json:"timestamp"`
	FileNumber  uint16 `json:"fileNumber"`
	FrameNumber uint32 `json:"frameNumber"`
	ElapsedTime uint32 `json:"elapsedTime"` // Milliseconds since the start of the video file
	SourceID    uint32 `json:"sourceId"`
}

// TrackingEvent is a tracked object's geometry at a point in time.
type TrackingEvent struct {
	Timestamp   uint32 `json:"timestamp"`
	ChildID     uint16 `json:"childId"`
	TrackableID uint32 `json:"trackableId"`
	CenterX     int32  `json:"centerX"`
	CenterY     int32  `json:"centerY"`
	CenterZ     int32  `json:"centerZ"`
	Direction1  int32  `json:"direction1"`
	Direction2  int32  `json:"direction2"`
	Volume      int32  `json:"volume"`
	Radius1     int32  `json:"radius1"`
	Radius2     int32  `json:"radius2"`
	Radius3     int32  `json:"radius3"`
	ChildCount  uint16 `json:"childCount"`
}

// PatientTriggerEvent is an externally generated patient trigger.
type PatientTriggerEvent struct {
	Timestamp   uint32 `json:"timestamp"`
	TriggerType uint16 `json:"triggerType"`
}

// ReconfigEvent records a change of system configuration during recording.
type ReconfigEvent struct {
	Timestamp   uint32 `json:"timestamp"`
	ChangeType  uint16 `json:"changeType"`
	Component   string `json:"component"`
	Description string `json:"description"`
}

// ClassCounts holds the number of packets seen per packet class.
type ClassCounts struct {
	Digital        int `json:"digital"`
	Spike          int `json:"spike"`
	Comment        int `json:"comment"`
	VideoSync      int `json:"videoSync"`
	Tracking       int `json:"tracking"`
	PatientTrigger int `json:"patientTrigger"`
	Reconfig       int `json:"reconfig"`
}

// File is a decoded NEV file. It shares no memory with the decoded input.
type File struct {
	Header        Header         `json:"header"`
	Array         ArrayInfo      `json:"array"`
	Electrodes    ElectrodeTable `json:"electrodes"`
	DigitalLabels []string       `json:"digitalLabels,omitempty"` // Indexed by IO mode
	VideoSources  []VideoSource  `json:"videoSources,omitempty"`
	Trackables    []Trackable    `json:"trackables,omitempty"`

	PacketCount     int                   `json:"packetCount"`
	Counts          ClassCounts           `json:"counts"`
	Spikes          []SpikeEvent          `json:"spikes,omitempty"`
	Digital         []DigitalEvent        `json:"digital,omitempty"`
	Markers         []Marker              `json:"markers,omitempty"`
	Comments        []CommentEvent        `json:"comments,omitempty"`
	VideoSync       []VideoSyncEvent      `json:"videoSync,omitempty"`
	Tracking        []TrackingEvent       `json:"tracking,omitempty"`
	PatientTriggers []PatientTriggerEvent `json:"patientTriggers,omitempty"`
	Reconfigs       []ReconfigEvent       `json:"reconfigs,omitempty"`

	// Warnings holds the marker segments that could not be parsed.
	Warnings []*MarkerError `json:"warnings,omitempty"`
}

// HasUnparsedMarkers reports whether any digital marker segment was left
// unparsed.
func (f *File) HasUnparsedMarkers() bool {
	return len(f.Warnings) > 0
}
