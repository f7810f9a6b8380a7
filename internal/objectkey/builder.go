// Package objectkey builds destination keys for uploaded batches.
package objectkey

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Builder produces object keys of the form
// {prefix}{appName}/{yyyy-MM-dd in UTC}/{uuid}.jsonl[.gz].
type Builder struct {
	Prefix  string
	AppName string
}

// Build returns a fresh, unique key for a flush happening at now. gzip
// selects the .jsonl vs .jsonl.gz suffix.
func (b Builder) Build(gzip bool, now time.Time) string {
	ext := ".jsonl"
	if gzip {
		ext = ".jsonl.gz"
	}
	date := now.UTC().Format("2006-01-02")
	return fmt.Sprintf("%s%s/%s/%s%s", b.Prefix, b.AppName, date, uuid.New().String(), ext)
}
