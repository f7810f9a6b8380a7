// Package encode concatenates a batch of log records into an NDJSON payload.
package encode

import "bytes"

// Batch concatenates record||'\n' for each record in order, producing a
// contiguous NDJSON buffer. Batch is total: it never fails.
func Batch(records [][]byte) []byte {
	size := 0
	for _, r := range records {
		size += len(r) + 1
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	for _, r := range records {
		buf.Write(r)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Bytes returns the byte accounting used by the aggregator's triggers:
// len(record)+1 per record, the +1 covering the trailing newline Batch adds.
func Bytes(records [][]byte) int {
	n := 0
	for _, r := range records {
		n += len(r) + 1
	}
	return n
}
