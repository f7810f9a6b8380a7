// Package compress gzips a batch payload before upload.
package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"
)

// Gzip wraps data in a single gzip member. The output is deterministic
// modulo the timestamp gzip embeds in its header; callers comparing
// compressed output across runs must account for that.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress: writing gzip member: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: closing gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}
