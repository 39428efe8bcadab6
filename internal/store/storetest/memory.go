// Package storetest provides an in-memory store.GameStore for tests of the
// pipeline handlers.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/courtside/game-video/internal/store"
	"github.com/courtside/game-video/internal/video"
)

// Memory keeps one ProcessingRecord per game and counts writes. Games must be
// seeded with Seed (or AutoCreate set) before writes succeed, mirroring the
// existence condition of the DynamoDB store.
type Memory struct {
	mu         sync.Mutex
	records    map[string]*store.ProcessingRecord
	Writes     int
	WriteErr   error
	AutoCreate bool
}

// Compile-time interface check.
var _ store.GameStore = (*Memory)(nil)

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*store.ProcessingRecord)}
}

// Seed creates or replaces a game's record.
func (m *Memory) Seed(rec store.ProcessingRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.GameID] = &rec
}

// Record returns a copy of the game's record, or nil.
func (m *Memory) Record(gameID string) *store.ProcessingRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[gameID]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

func (m *Memory) write(gameID string, apply func(*store.ProcessingRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	rec, ok := m.records[gameID]
	if !ok {
		if !m.AutoCreate {
			return store.ErrGameNotFound
		}
		rec = &store.ProcessingRecord{GameID: gameID}
		m.records[gameID] = rec
	}
	apply(rec)
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *Memory) MarkProcessing(ctx context.Context, gameID, jobID string) error {
	return m.write(gameID, func(r *store.ProcessingRecord) {
		r.Status = video.StatusProcessing
		r.MediaConvertJobID = jobID
	})
}

func (m *Memory) MarkSubmitFailed(ctx context.Context, gameID string) error {
	return m.write(gameID, func(r *store.ProcessingRecord) {
		r.Status = video.StatusFailed
		r.MediaConvertJobID = ""
	})
}

func (m *Memory) MarkJobFailed(ctx context.Context, gameID string) error {
	return m.write(gameID, func(r *store.ProcessingRecord) {
		r.Status = video.StatusFailed
	})
}

func (m *Memory) MarkCompleted(ctx context.Context, gameID string, renditions map[string]string, thumbnails []string) error {
	return m.write(gameID, func(r *store.ProcessingRecord) {
		r.Status = video.StatusCompleted
		r.ProcessedVideoURLs = renditions
		r.ThumbnailURLs = thumbnails
	})
}

func (m *Memory) GetProcessingRecord(ctx context.Context, gameID string) (*store.ProcessingRecord, error) {
	return m.Record(gameID), nil
}
