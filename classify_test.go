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
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversEveryIndex(t *testing.T) {
	known := []uint16{0, 1, 2, 500, 16384, 65531, 65532, 65533, 65534, 65535}
	rng := rand.New(rand.NewPCG(1, 2))

	tags := make([]uint16, 5000)
	for i := range tags {
		tags[i] = known[rng.IntN(len(known))]
	}

	p, err := partitionTags(tags)
	require.NoError(t, err)

	seen := make([]int, len(tags))
	for _, class := range [][]int{p.digital, p.spikes, p.comments, p.videoSync, p.tracking, p.patientTrigger, p.reconfig} {
		for j, i := range class {
			seen[i]++
			if j > 0 {
				assert.Less(t, class[j-1], i)
			}
		}
	}
	for i, n := range seen {
		assert.Equal(t, 1, n, "packet %d", i)
	}

	c := p.counts()
	assert.Equal(t, len(tags), c.Digital+c.Spike+c.Comment+c.VideoSync+c.Tracking+c.PatientTrigger+c.Reconfig)
}

func TestPartitionRejectsUnknownTag(t *testing.T) {
	_, err := partitionTags([]uint16{1, 0, 16385})
	require.ErrorIs(t, err, ErrUnknownPacketTag)
	assert.Contains(t, err.Error(), "packet 2")
}

func TestPacketClassString(t *testing.T) {
	assert.Equal(t, "video-sync", ClassVideoSync.String())
	assert.Equal(t, "class(42)", PacketClass(42).String())

	b, err := ClassComment.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "comment", string(b))
}
