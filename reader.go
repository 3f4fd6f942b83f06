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
	"os"

	"golang.org/x/sys/unix"
)

// DecodeFile decodes the NEV file at path. The file is mapped read-only
// where possible and read through ReadAt otherwise; the returned File does
// not reference the mapping.
func DecodeFile(path string, opts Options) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("error getting file info: %w", err)
	}
	size := stat.Size()

	if size > 0 && size <= int64(int(^uint(0)>>1)) {
		data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			nf, decodeErr := DecodeBytes(data, opts)
			if err := unix.Munmap(data); err != nil && decodeErr == nil {
				return nil, fmt.Errorf("error unmapping file: %w", err)
			}
			return nf, decodeErr
		}
		opts.logger().Debug("mmap unavailable, falling back to ReadAt", "path", path, "error", err)
	}

	return Decode(f, size, opts)
}
