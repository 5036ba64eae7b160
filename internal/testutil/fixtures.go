package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/perigee-io/bucketsweep/sweeptypes"
)

// Keys generates n synthetic object keys under prefix.
func Keys(prefix string, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("%sobj-%04d.webp", prefix, i)
	}
	return keys
}

// Entries wraps keys in object entries with plausible metadata.
func Entries(keys []string) []sweeptypes.ObjectEntry {
	entries := make([]sweeptypes.ObjectEntry, len(keys))
	for i, key := range keys {
		entries[i] = sweeptypes.ObjectEntry{
			Key:          key,
			Size:         int64(1024 * (i + 1)),
			LastModified: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		}
	}
	return entries
}

// PagedStore returns a MockStore serving the given keys split into pages of
// pageSize, chained by synthetic cursors. The returned counter reports how
// many list calls were made.
func PagedStore(prefix string, keys []string, pageSize int) (*MockStore, *atomic.Int32) {
	pages := make(map[string]*sweeptypes.Page)
	cursor := ""
	for offset := 0; offset < len(keys); offset += pageSize {
		end := offset + pageSize
		if end > len(keys) {
			end = len(keys)
		}
		next := ""
		if end < len(keys) {
			next = fmt.Sprintf("cursor-%d", end)
		}
		pages[cursor] = &sweeptypes.Page{Entries: Entries(keys[offset:end]), Cursor: next}
		cursor = next
	}
	if len(pages) == 0 {
		pages[""] = &sweeptypes.Page{}
	}

	calls := &atomic.Int32{}
	store := &MockStore{
		ListPageFunc: func(_ context.Context, _, gotPrefix, cursor string) (*sweeptypes.Page, error) {
			calls.Add(1)
			if gotPrefix != prefix {
				return &sweeptypes.Page{}, nil
			}
			page, ok := pages[cursor]
			if !ok {
				return &sweeptypes.Page{}, nil
			}
			return page, nil
		},
	}
	return store, calls
}
