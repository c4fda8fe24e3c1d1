// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
)

// Fingerprint derives a stable cache key for a file from its path, size, and
// modification time. Content is deliberately not hashed: media files are
// large and effectively immutable once written by the message store, so the
// stat triple is a cheap identity proxy. A file that cannot be stat'd yields
// ok=false, which forces a cache miss downstream.
func Fingerprint(path string) (key string, ok bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%d:%d", path, info.ModTime().UnixNano(), info.Size())))
	return hex.EncodeToString(sum[:]), true
}
