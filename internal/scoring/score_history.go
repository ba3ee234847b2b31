package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ScoreHistoryEntry represents a single completed round's score.
type ScoreHistoryEntry struct {
	ID        string `json:"id"`
	Score     int    `json:"score"`
	Timestamp string `json:"timestamp"`
}

// History holds past round scores loaded from storage and appends new ones.
type History struct {
	storage ScoreStorage
	entries []ScoreHistoryEntry
}

// LoadHistory reads all past entries from the given storage, sorted by
// score descending.
func LoadHistory(storage ScoreStorage) (*History, error) {
	entries, err := storage.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("could not load score history: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return &History{storage: storage, entries: entries}, nil
}

// Attempts returns the number of rounds on record.
func (h *History) Attempts() int {
	return len(h.entries)
}

// Best returns the highest recorded score, or nil when no rounds have been
// played yet.
func (h *History) Best() *ScoreHistoryEntry {
	if len(h.entries) == 0 {
		return nil
	}
	return &h.entries[0]
}

// TopN returns up to n entries with the highest scores.
func (h *History) TopN(n int) []ScoreHistoryEntry {
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]ScoreHistoryEntry, n)
	copy(out, h.entries[:n])
	return out
}

// RecordRound appends a finished round's score and persists the full list.
func (h *History) RecordRound(score int) error {
	entry := ScoreHistoryEntry{
		ID:        uuid.NewString(),
		Score:     score,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	h.entries = append(h.entries, entry)
	sort.Slice(h.entries, func(i, j int) bool {
		return h.entries[i].Score > h.entries[j].Score
	})
	if err := h.storage.SaveAll(h.entries); err != nil {
		return fmt.Errorf("could not save score history: %w", err)
	}
	return nil
}
