package server

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/tools/blog/atom"
)

// Entry describes one reconciliation of the served list.
type Entry struct {
	Generation uint64
	Time       time.Time
	Items      int      // Number of items after the reconciliation
	Ops        []string // Applied operations
}

// Feed keeps the most recent entries and renders them as an Atom feed. It is safe for concurrent
// use.
type Feed struct {
	title string
	limit int

	mu      sync.Mutex
	entries []Entry // Newest first
}

// NewFeed returns a feed titled title that keeps at most limit entries.
func NewFeed(title string, limit int) *Feed {
	return &Feed{title: title, limit: limit}
}

// Add adds e as the newest entry.
func (f *Feed) Add(e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append([]Entry{e}, f.entries...)
	if len(f.entries) > f.limit {
		f.entries = f.entries[:f.limit]
	}
}

// Render encodes the feed. Links are relative to base.
func (f *Feed) Render(base string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var updated time.Time
	if len(f.entries) > 0 {
		updated = f.entries[0].Time
	}
	feed := atom.Feed{
		Title:   f.title,
		ID:      "tag:listpatch:" + f.title,
		Updated: atom.Time(updated),
		Link: []atom.Link{{
			Rel:  "self",
			Href: base + "/feed.atom",
		}},
	}

	for _, e := range f.entries {
		gen := strconv.FormatUint(e.Generation, 10)
		feed.Entry = append(feed.Entry, &atom.Entry{
			Title: "Generation " + gen,
			ID:    feed.ID + ":" + gen,
			Link: []atom.Link{{
				Rel:  "alternate",
				Href: base + "/",
			}},
			Published: atom.Time(e.Time),
			Updated:   atom.Time(e.Time),
			Summary: &atom.Text{
				Type: "text",
				Body: fmt.Sprintf("%d operations, %d items", len(e.Ops), e.Items),
			},
			Content: &atom.Text{
				Type: "text",
				Body: strings.Join(e.Ops, "\n"),
			},
		})
	}

	b, err := xml.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("encoding feed: %v", err)
	}
	return b, nil
}
