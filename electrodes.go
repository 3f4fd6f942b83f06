// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package nev

import "github.com/goccy/go-json"

// ElectrodeTable holds electrode configuration indexed directly by electrode
// ID. IDs may be sparse, unset slots have ID 0.
type ElectrodeTable struct {
	entries []ElectrodeInfo
}

// Get returns the configuration of an electrode.
func (t *ElectrodeTable) Get(id uint16) (ElectrodeInfo, bool) {
	if id == 0 || int(id) >= len(t.entries) || t.entries[id].ID == 0 {
		return ElectrodeInfo{}, false
	}
	return t.entries[id], true
}

// Len returns the number of configured electrodes.
func (t *ElectrodeTable) Len() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].ID != 0 {
			n++
		}
	}
	return n
}

// IDs returns the configured electrode IDs in ascending order.
func (t *ElectrodeTable) IDs() []uint16 {
	var ids []uint16
	for i := range t.entries {
		if t.entries[i].ID != 0 {
			ids = append(ids, t.entries[i].ID)
		}
	}
	return ids
}

// All returns a copy of every configured electrode in ascending ID order.
func (t *ElectrodeTable) All() []ElectrodeInfo {
	var out []ElectrodeInfo
	for i := range t.entries {
		if t.entries[i].ID != 0 {
			e := t.entries[i]
			if e.Filter != nil {
				f := *e.Filter
				e.Filter = &f
			}
			out = append(out, e)
		}
	}
	return out
}

// digitalFactor returns the electrode's digital factor, or 0 if unknown.
func (t *ElectrodeTable) digitalFactor(id uint16) uint16 {
	if int(id) >= len(t.entries) {
		return 0
	}
	return t.entries[id].DigitalFactor
}

// entry returns the slot for id, growing the table on first sight.
func (t *ElectrodeTable) entry(id uint16) *ElectrodeInfo {
	if int(id) >= len(t.entries) {
		t.entries = append(t.entries, make([]ElectrodeInfo, int(id)+1-len(t.entries))...)
	}
	e := &t.entries[id]
	e.ID = id
	return e
}

func (t ElectrodeTable) MarshalJSON() ([]byte, error) {
	all := t.All()
	if all == nil {
		all = []ElectrodeInfo{}
	}
	return json.Marshal(all)
}
