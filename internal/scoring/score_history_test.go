package scoring

import (
	"errors"
	"testing"
)

// MockScoreStorage is an in-memory ScoreStorage for tests.
type MockScoreStorage struct {
	Entries    []ScoreHistoryEntry
	SaveCalled bool
	err        error // simulated storage failure
}

func (m *MockScoreStorage) LoadAll() ([]ScoreHistoryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.Entries, nil
}

func (m *MockScoreStorage) SaveAll(entries []ScoreHistoryEntry) error {
	if m.err != nil {
		return m.err
	}
	m.Entries = entries
	m.SaveCalled = true
	return nil
}

func TestLoadHistory_Empty(t *testing.T) {
	h, err := LoadHistory(&MockScoreStorage{})
	if err != nil {
		t.Fatalf("LoadHistory returned an unexpected error: %v", err)
	}
	if h.Attempts() != 0 {
		t.Errorf("expected 0 attempts, got %d", h.Attempts())
	}
	if h.Best() != nil {
		t.Errorf("expected nil best entry, got %+v", h.Best())
	}
}

func TestLoadHistory_SortsByScore(t *testing.T) {
	store := &MockScoreStorage{
		Entries: []ScoreHistoryEntry{
			{ID: "a", Score: 120},
			{ID: "b", Score: 500},
			{ID: "c", Score: 40},
		},
	}

	h, err := LoadHistory(store)
	if err != nil {
		t.Fatalf("LoadHistory returned an unexpected error: %v", err)
	}

	if h.Attempts() != 3 {
		t.Errorf("expected 3 attempts, got %d", h.Attempts())
	}
	if best := h.Best(); best == nil || best.Score != 500 {
		t.Errorf("expected best score 500, got %+v", best)
	}

	top := h.TopN(2)
	if len(top) != 2 || top[0].Score != 500 || top[1].Score != 120 {
		t.Errorf("TopN(2) mismatch: %+v", top)
	}
	if got := h.TopN(10); len(got) != 3 {
		t.Errorf("TopN larger than history should cap at %d, got %d", 3, len(got))
	}
}

func TestRecordRound(t *testing.T) {
	store := &MockScoreStorage{
		Entries: []ScoreHistoryEntry{{ID: "old", Score: 10}},
	}
	h, err := LoadHistory(store)
	if err != nil {
		t.Fatalf("LoadHistory returned an unexpected error: %v", err)
	}

	if err := h.RecordRound(99); err != nil {
		t.Fatalf("RecordRound returned an unexpected error: %v", err)
	}

	if !store.SaveCalled {
		t.Error("RecordRound should persist entries")
	}
	if h.Attempts() != 2 {
		t.Errorf("expected 2 attempts, got %d", h.Attempts())
	}
	if best := h.Best(); best == nil || best.Score != 99 {
		t.Errorf("expected new best 99, got %+v", best)
	}
	if best := h.Best(); best.ID == "" || best.Timestamp == "" {
		t.Errorf("recorded entry missing ID or timestamp: %+v", best)
	}
}

func TestLoadHistory_StorageError(t *testing.T) {
	store := &MockScoreStorage{err: errors.New("disk on fire")}
	if _, err := LoadHistory(store); err == nil {
		t.Error("expected error from failing storage, got nil")
	}
}
