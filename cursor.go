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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf16"
)

// cursor is a bounded little-endian reader over a byte slice. The first out
// of range read is remembered and every later read returns zero, so callers
// decode a whole block and check err once.
type cursor struct {
	b   []byte
	off int
	err error
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b}
}

func (c *cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.off+n > len(c.b) {
		c.err = fmt.Errorf("read of %d bytes at offset %d exceeds %d: %w", n, c.off, len(c.b), io.ErrUnexpectedEOF)
		return nil
	}
	p := c.b[c.off : c.off+n]
	c.off += n
	return p
}

// seek moves to an absolute offset within the slice.
func (c *cursor) seek(off int) {
	if c.err != nil {
		return
	}
	if off < 0 || off > len(c.b) {
		c.err = fmt.Errorf("seek to %d outside %d bytes: %w", off, len(c.b), io.ErrUnexpectedEOF)
		return
	}
	c.off = off
}

func (c *cursor) u8() uint8 {
	p := c.take(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (c *cursor) u16() uint16 {
	p := c.take(2)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(p)
}

func (c *cursor) i16() int16 {
	return int16(c.u16())
}

func (c *cursor) u32() uint32 {
	p := c.take(4)
	if p == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}

func (c *cursor) i32() int32 {
	return int32(c.u32())
}

func (c *cursor) f32() float32 {
	return math.Float32frombits(c.u32())
}

// text reads a fixed-length NUL-padded field.
func (c *cursor) text(n int) string {
	return cstring(c.take(n))
}

// rest returns the remaining bytes.
func (c *cursor) rest() []byte {
	return c.take(len(c.b) - c.off)
}

func (c *cursor) remaining() int {
	return len(c.b) - c.off
}

// cstring converts a NUL-padded buffer to a string, stopping at the first NUL.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// utf16String decodes UTF-16 little endian bytes, stopping at the first NUL
// code unit.
func utf16String(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}

	u16s := make([]uint16, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		v := binary.LittleEndian.Uint16(b[i : i+2])
		if v == 0 {
			break
		}
		u16s = append(u16s, v)
	}

	return string(utf16.Decode(u16s))
}
