package wizard

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a draft with the given ID is not found.
var ErrNotFound = errors.New("wizard draft not found")

// ErrEmptyID is returned when trying to store a draft with an empty ID.
var ErrEmptyID = errors.New("empty draft ID")

// SaleDraft is the in-progress state of one sale-creation flow.
type SaleDraft struct {
	ID        string
	OwnerID   string
	Payment   *PaymentWizard
	Steps     *Steps
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch records activity on the draft.
func (d *SaleDraft) Touch(now time.Time) {
	d.mu.Lock()
	d.lastSeen = now
	d.mu.Unlock()
}

// LastSeen returns the time of the last recorded activity.
func (d *SaleDraft) LastSeen() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSeen
}

// Storage is the interface for the draft store.
type Storage interface {
	Set(d *SaleDraft) error
	Read(id string) (*SaleDraft, error)
	Delete(id string) error
	GetAll() ([]*SaleDraft, error)
}

// LocalStorage provides an in-memory implementation for storing drafts.
type LocalStorage struct {
	mu sync.RWMutex
	m  map[string]*SaleDraft
}

// NewLocalStorage instantiates a new LocalStorage with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[string]*SaleDraft{},
	}
}

// Set stores d. Returns ErrEmptyID if the draft has an empty ID.
func (l *LocalStorage) Set(d *SaleDraft) error {
	if d.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	l.m[d.ID] = d
	l.mu.Unlock()
	return nil
}

// Read retrieves a draft by ID.
// Returns ErrNotFound if the draft is not found.
func (l *LocalStorage) Read(id string) (*SaleDraft, error) {
	l.mu.RLock()
	d, ok := l.m[id]
	l.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// Delete removes a draft by ID.
func (l *LocalStorage) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m[id]; !ok {
		return ErrNotFound
	}
	delete(l.m, id)
	return nil
}

// GetAll retrieves all drafts.
func (l *LocalStorage) GetAll() ([]*SaleDraft, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	drafts := make([]*SaleDraft, 0, len(l.m))
	for _, d := range l.m {
		drafts = append(drafts, d)
	}
	return drafts, nil
}
