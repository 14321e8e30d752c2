package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
)

// Upload is a spreadsheet held in memory between the upload and process
// calls.
type Upload struct {
	ID               string
	OriginalFilename string
	Data             []byte
	Columns          []string
	RowCount         int
	UploadedAt       time.Time
}

// Result is a processed spreadsheet awaiting download.
type Result struct {
	ID        string
	Filename  string
	Data      []byte
	CreatedAt time.Time
}

// Store keeps uploads and processed results in memory. Uploads are single
// use: consuming one for processing removes it, so the same temporary id
// cannot be processed twice.
type Store struct {
	mu      sync.RWMutex
	uploads map[string]*Upload
	results map[string]*Result
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		uploads: make(map[string]*Upload),
		results: make(map[string]*Result),
	}
}

// PutUpload registers an uploaded spreadsheet and returns its temporary id.
func (s *Store) PutUpload(originalFilename string, data []byte, columns []string, rowCount int) *Upload {
	now := time.Now()
	up := &Upload{
		ID:               fmt.Sprintf("temp_%s_%s", now.Format("20060102_150405"), originalFilename),
		OriginalFilename: originalFilename,
		Data:             data,
		Columns:          columns,
		RowCount:         rowCount,
		UploadedAt:       now,
	}

	s.mu.Lock()
	s.uploads[up.ID] = up
	s.mu.Unlock()

	return up
}

// GetUpload returns an upload without consuming it.
func (s *Store) GetUpload(id string) (*Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	up, ok := s.uploads[id]
	if !ok {
		return nil, domain.NewNotFound("file not found, please upload again")
	}
	return up, nil
}

// ConsumeUpload removes an upload after successful processing.
func (s *Store) ConsumeUpload(id string) {
	s.mu.Lock()
	delete(s.uploads, id)
	s.mu.Unlock()
}

// PutResult stores a processed spreadsheet and returns its download id.
func (s *Store) PutResult(filename string, data []byte) *Result {
	res := &Result{
		ID:        uuid.New().String(),
		Filename:  filename,
		Data:      data,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.results[res.ID] = res
	s.mu.Unlock()

	return res
}

// GetResult returns a processed spreadsheet by download id.
func (s *Store) GetResult(id string) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.results[id]
	if !ok {
		return nil, domain.NewNotFound("processed file %s not found", id)
	}
	return res, nil
}
