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

// Packet tags that identify non-spike packet classes.
const (
	TagDigital        uint16 = 0
	TagMaxElectrode   uint16 = 16384
	TagReconfig       uint16 = 65531
	TagPatientTrigger uint16 = 65532
	TagTracking       uint16 = 65533
	TagVideoSync      uint16 = 65534
	TagComment        uint16 = 65535
)

// PacketClass is the kind of a data packet, derived from its tag.
type PacketClass uint8

const (
	ClassUnknown PacketClass = iota
	ClassDigital
	ClassSpike
	ClassComment
	ClassVideoSync
	ClassTracking
	ClassPatientTrigger
	ClassReconfig
)

var classNames = [...]string{
	ClassUnknown:        "unknown",
	ClassDigital:        "digital",
	ClassSpike:          "spike",
	ClassComment:        "comment",
	ClassVideoSync:      "video-sync",
	ClassTracking:       "tracking",
	ClassPatientTrigger: "patient-trigger",
	ClassReconfig:       "reconfig",
}

func (c PacketClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

func (c PacketClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify returns the class of a packet with the given tag.
func Classify(tag uint16) PacketClass {
	switch {
	case tag == TagDigital:
		return ClassDigital
	case tag <= TagMaxElectrode:
		return ClassSpike
	case tag == TagComment:
		return ClassComment
	case tag == TagVideoSync:
		return ClassVideoSync
	case tag == TagTracking:
		return ClassTracking
	case tag == TagPatientTrigger:
		return ClassPatientTrigger
	case tag == TagReconfig:
		return ClassReconfig
	default:
		return ClassUnknown
	}
}

// partition holds packet indices per class, each in ascending order.
type partition struct {
	digital        []int
	spikes         []int
	comments       []int
	videoSync      []int
	tracking       []int
	patientTrigger []int
	reconfig       []int
}

// partitionTags splits packet indices into disjoint classes. A tag outside
// every class aborts with ErrUnknownPacketTag.
func partitionTags(tags []uint16) (*partition, error) {
	p := &partition{}
	for i, tag := range tags {
		switch Classify(tag) {
		case ClassDigital:
			p.digital = append(p.digital, i)
		case ClassSpike:
			p.spikes = append(p.spikes, i)
		case ClassComment:
			p.comments = append(p.comments, i)
		case ClassVideoSync:
			p.videoSync = append(p.videoSync, i)
		case ClassTracking:
			p.tracking = append(p.tracking, i)
		case ClassPatientTrigger:
			p.patientTrigger = append(p.patientTrigger, i)
		case ClassReconfig:
			p.reconfig = append(p.reconfig, i)
		default:
			return nil, fmt.Errorf("%w: tag %d in packet %d", ErrUnknownPacketTag, tag, i)
		}
	}
	return p, nil
}

func (p *partition) counts() ClassCounts {
	return ClassCounts{
		Digital:        len(p.digital),
		Spike:          len(p.spikes),
		Comment:        len(p.comments),
		VideoSync:      len(p.videoSync),
		Tracking:       len(p.tracking),
		PatientTrigger: len(p.patientTrigger),
		Reconfig:       len(p.reconfig),
	}
}
