// Package store tracks which mods are installed locally. The Store is the
// only writer of the in-memory collection; durable persistence belongs to the
// installation backend behind the RecordStore interface.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"spool/internal/domain"
	"spool/internal/notify"
)

// RecordStore is the persistence half of the installation backend: it owns
// the durable installed-mods record.
type RecordStore interface {
	LoadRecord(ctx context.Context) (domain.InstalledModsRecord, error)
	SaveRecord(ctx context.Context, record domain.InstalledModsRecord) error
}

// Listener receives the full installed-mods list after every mutation.
type Listener func(mods []domain.InstalledMod)

type subscriber struct {
	id     int64
	fn     Listener
	active bool
}

// Store is the authoritative in-memory record of installed mods. Construct
// one at the composition root and share it; all methods are safe for
// concurrent use.
type Store struct {
	backend RecordStore
	hub     *notify.Hub
	log     *zap.Logger

	mu    sync.Mutex
	mods  []domain.InstalledMod
	subs  []*subscriber
	subID int64
}

// New creates a store backed by the given persistence backend. A nil logger
// falls back to zap.NewNop.
func New(backend RecordStore, hub *notify.Hub, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, hub: hub, log: log}
}

// Subscribe registers a listener for future mutations and returns its
// unsubscribe function. Unsubscribing is idempotent.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subID++
	sub := &subscriber{id: s.subID, fn: fn, active: true}
	s.subs = append(s.subs, sub)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		sub.active = false
		for i, cur := range s.subs {
			if cur.id == sub.id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

// LoadInstalledMods replaces the collection wholesale from the backend and
// notifies subscribers. A backend failure degrades to an empty collection
// instead of propagating: a blank installed list is preferable to blocking
// the UI, and the next successful install rewrites the record anyway.
func (s *Store) LoadInstalledMods(ctx context.Context) []domain.InstalledMod {
	record, err := s.backend.LoadRecord(ctx)

	s.mu.Lock()
	if err != nil {
		s.log.Warn("loading installed mods record failed", zap.Error(err))
		s.mods = nil
	} else {
		s.mods = append([]domain.InstalledMod(nil), record.Mods...)
	}
	loaded := s.copyModsLocked()
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.fanOut(subs, loaded)
	return loaded
}

// AddInstalledMod records a fresh installation. Any existing entry with the
// same modID is superseded, never duplicated. Persistence failures propagate:
// an install whose record silently vanished would be invisible to uninstall.
func (s *Store) AddInstalledMod(ctx context.Context, modID, modTitle, version string, installedFiles []string, gamePath, downloadURL string) error {
	entry := domain.InstalledMod{
		ModID:          modID,
		ModTitle:       modTitle,
		Version:        version,
		InstalledAt:    domain.Timestamp(time.Now()),
		InstalledFiles: append([]string(nil), installedFiles...),
		GamePath:       gamePath,
		DownloadURL:    downloadURL,
	}

	s.mu.Lock()
	prev := s.copyModsLocked()
	s.removeLocked(modID)
	s.mods = append(s.mods, entry)

	if err := s.persistLocked(ctx); err != nil {
		s.mods = prev
		s.mu.Unlock()
		return fmt.Errorf("persisting installed mods: %w", err)
	}
	current := s.copyModsLocked()
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.fanOut(subs, current)
	s.hub.Success("Mod Installed", fmt.Sprintf("%s v%s has been installed successfully", modTitle, version))
	return nil
}

// RemoveInstalledMod deletes the entry for modID. Returns
// domain.ErrNotInstalled if no such entry exists, leaving the store
// unchanged.
func (s *Store) RemoveInstalledMod(ctx context.Context, modID string) error {
	s.mu.Lock()
	entry, ok := s.findLocked(modID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrNotInstalled, modID)
	}
	title := entry.ModTitle

	prev := s.copyModsLocked()
	s.removeLocked(modID)

	if err := s.persistLocked(ctx); err != nil {
		s.mods = prev
		s.mu.Unlock()
		return fmt.Errorf("persisting installed mods: %w", err)
	}
	current := s.copyModsLocked()
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.fanOut(subs, current)
	s.hub.Success("Mod Uninstalled", fmt.Sprintf("%s has been uninstalled successfully", title))
	return nil
}

// UpdateModVersion rewrites the version, file list and install timestamp of
// an existing entry after a reinstallation. Returns domain.ErrNotInstalled
// if the mod is absent.
func (s *Store) UpdateModVersion(ctx context.Context, modID, newVersion string, newInstalledFiles []string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.mods {
		if s.mods[i].ModID == modID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrNotInstalled, modID)
	}

	prev := s.copyModsLocked()
	s.mods[idx].Version = newVersion
	s.mods[idx].InstalledFiles = append([]string(nil), newInstalledFiles...)
	s.mods[idx].InstalledAt = domain.Timestamp(time.Now())
	title := s.mods[idx].ModTitle

	if err := s.persistLocked(ctx); err != nil {
		s.mods = prev
		s.mu.Unlock()
		return fmt.Errorf("persisting installed mods: %w", err)
	}
	current := s.copyModsLocked()
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.fanOut(subs, current)
	s.hub.Success("Mod Updated", fmt.Sprintf("%s has been updated to v%s", title, newVersion))
	return nil
}

// ClearAll empties the collection and persists the empty record.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	prev := s.copyModsLocked()
	s.mods = nil

	if err := s.persistLocked(ctx); err != nil {
		s.mods = prev
		s.mu.Unlock()
		return fmt.Errorf("persisting installed mods: %w", err)
	}
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.fanOut(subs, []domain.InstalledMod{})
	return nil
}

// IsModInstalled reports whether an entry for modID exists.
func (s *Store) IsModInstalled(modID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.findLocked(modID)
	return ok
}

// GetInstalledMod returns the entry for modID, if present.
func (s *Store) GetInstalledMod(modID string) (domain.InstalledMod, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(modID)
}

// GetInstalledMods returns a copy of the installed list; mutating the result
// does not affect the store.
func (s *Store) GetInstalledMods() []domain.InstalledMod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyModsLocked()
}

// Count returns the number of installed mods.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mods)
}

// persistLocked writes the current collection through the backend. Caller
// must hold s.mu; holding it across the save serializes concurrent
// read-modify-write cycles so the supersede invariant survives racing adds.
func (s *Store) persistLocked(ctx context.Context) error {
	record := domain.InstalledModsRecord{
		Mods:        s.copyModsLocked(),
		LastUpdated: domain.Timestamp(time.Now()),
	}
	return s.backend.SaveRecord(ctx, record)
}

func (s *Store) findLocked(modID string) (domain.InstalledMod, bool) {
	for _, m := range s.mods {
		if m.ModID == modID {
			m.InstalledFiles = append([]string(nil), m.InstalledFiles...)
			return m, true
		}
	}
	return domain.InstalledMod{}, false
}

func (s *Store) removeLocked(modID string) {
	kept := s.mods[:0]
	for _, m := range s.mods {
		if m.ModID != modID {
			kept = append(kept, m)
		}
	}
	s.mods = kept
}

// copyModsLocked copies the collection including each entry's file list, so
// no caller or listener shares backing arrays with the store.
func (s *Store) copyModsLocked() []domain.InstalledMod {
	out := make([]domain.InstalledMod, len(s.mods))
	for i, m := range s.mods {
		m.InstalledFiles = append([]string(nil), m.InstalledFiles...)
		out[i] = m
	}
	return out
}

func (s *Store) snapshotLocked() []*subscriber {
	subs := make([]*subscriber, len(s.subs))
	copy(subs, s.subs)
	return subs
}

func (s *Store) fanOut(subs []*subscriber, mods []domain.InstalledMod) {
	for _, sub := range subs {
		s.mu.Lock()
		ok := sub.active
		s.mu.Unlock()
		if ok {
			sub.fn(mods)
		}
	}
}
