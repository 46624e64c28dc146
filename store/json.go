package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"StrawberryBot/utils"
)

// fileData is the on-disk layout. Older files only carry the three legacy maps.
type fileData struct {
	Users map[string]Record `json:"users,omitempty"`

	Players   map[string]int64  `json:"players,omitempty"`
	LastDaily map[string]string `json:"last_daily,omitempty"`
	Streaks   map[string]int    `json:"streaks,omitempty"`
}

var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// JSONStore keeps every record in memory and flushes the map to a single file.
type JSONStore struct {
	path   string
	backup string

	mu           sync.Mutex
	users        map[string]Record
	dirty        bool
	writeThrough bool
	now          func() time.Time

	stop chan struct{}
	done chan struct{}
}

// OpenJSON loads path (creating its directory if needed). With a positive
// autosave interval dirty data is flushed periodically and on Close;
// otherwise every mutation is written through immediately.
func OpenJSON(path string, autosave time.Duration) (*JSONStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("json store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &JSONStore{
		path:         path,
		backup:       strings.TrimSuffix(path, filepath.Ext(path)) + ".backup.json",
		users:        make(map[string]Record),
		writeThrough: autosave <= 0,
		now:          time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	if autosave > 0 {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.autosaveLoop(autosave)
	}
	return s, nil
}

func (s *JSONStore) autosaveLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				utils.LogError("Error autosaving strawberry data: %v", err)
			}
		case <-s.stop:
			return
		}
	}
}

func (s *JSONStore) load() error {
	err := s.loadFile(s.path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		// A crash between the two renames in save leaves only the backup.
		if berr := s.loadFile(s.backup); berr == nil {
			utils.LogComponent("store", "Recovered strawberry data from %s", s.backup)
		}
		return nil
	}

	utils.LogError("Error loading strawberry data from %s: %v", s.path, err)
	if berr := s.loadFile(s.backup); berr != nil {
		if errors.Is(berr, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", s.path, err)
		}
		return fmt.Errorf("load %s: %w (backup: %v)", s.path, err, berr)
	}
	utils.LogComponent("store", "Loaded strawberry data from backup %s", s.backup)
	return nil
}

func (s *JSONStore) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	now := s.now()
	users := make(map[string]Record)

	for id, rec := range data.Users {
		if rec.Strawberries < 0 {
			continue
		}
		rec.UserID = id
		if rec.LastDaily.After(now) {
			rec.LastDaily = time.Time{}
		}
		if rec.Streak < 0 {
			rec.Streak = 0
		}
		users[id] = rec
	}

	for id, amount := range data.Players {
		if amount < 0 {
			continue
		}
		rec := users[id]
		rec.UserID = id
		rec.Strawberries = amount
		users[id] = rec
	}
	for id, raw := range data.LastDaily {
		rec, ok := users[id]
		if !ok {
			continue
		}
		t, ok := ParseLegacyTime(raw)
		if !ok || t.After(now) {
			continue
		}
		rec.LastDaily = t
		users[id] = rec
	}
	for id, streak := range data.Streaks {
		rec, ok := users[id]
		if !ok || streak < 0 {
			continue
		}
		rec.Streak = streak
		users[id] = rec
	}

	s.users = users
	utils.LogComponent("store", "Loaded %d strawberry records from %s", len(users), path)
	return nil
}

// ParseLegacyTime reads RFC 3339, timezone-less ISO 8601 (local time) or unix
// seconds, as found in files written by earlier versions of the bot.
func ParseLegacyTime(raw string) (time.Time, bool) {
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.UTC(), true
		}
	}
	if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return timeOrZero(sec), sec > 0
	}
	return time.Time{}, false
}

// Flush writes the data if anything changed since the last save.
func (s *JSONStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.saveLocked()
}

func (s *JSONStore) saveLocked() error {
	raw, err := json.MarshalIndent(fileData{Users: s.users}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode strawberry data: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}

	hadMain := true
	if err := os.Rename(s.path, s.backup); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("backup %s: %w", s.path, err)
		}
		hadMain = false
	}
	if err := os.Rename(tmp, s.path); err != nil {
		if hadMain {
			_ = os.Rename(s.backup, s.path)
		}
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	if hadMain {
		_ = os.Remove(s.backup)
	}

	s.dirty = false
	return nil
}

func (s *JSONStore) Get(ctx context.Context, userID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *JSONStore) Update(ctx context.Context, userID string, fn UpdateFunc) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.users[userID]
	rec := prev
	if !exists {
		rec = Record{UserID: userID}
	}
	if err := fn(&rec, exists); err != nil {
		return Record{}, err
	}
	rec.UserID = userID
	wasDirty := s.dirty
	s.users[userID] = rec
	s.dirty = true

	if s.writeThrough {
		if err := s.saveLocked(); err != nil {
			// An unsaved write-through change must not reach a later save.
			if exists {
				s.users[userID] = prev
			} else {
				delete(s.users, userID)
			}
			s.dirty = wasDirty
			return Record{}, err
		}
	}
	return rec, nil
}

func (s *JSONStore) Top(ctx context.Context, limit int) ([]Record, error) {
	recs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	SortRecords(recs)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (s *JSONStore) Rank(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return 0, nil
	}
	rank := 1
	for _, other := range s.users {
		if other.Strawberries > rec.Strawberries {
			rank++
		}
	}
	return rank, nil
}

func (s *JSONStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *JSONStore) Prune(ctx context.Context, cutoff time.Time, maxBalance int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := make(map[string]Record)
	var removed []string
	for id, rec := range s.users {
		if Prunable(rec, cutoff, maxBalance) {
			delete(s.users, id)
			pruned[id] = rec
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	wasDirty := s.dirty
	s.dirty = true
	if s.writeThrough {
		if err := s.saveLocked(); err != nil {
			for id, rec := range pruned {
				s.users[id] = rec
			}
			s.dirty = wasDirty
			return nil, err
		}
	}
	return removed, nil
}

func (s *JSONStore) All(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := make([]Record, 0, len(s.users))
	for _, rec := range s.users {
		recs = append(recs, rec)
	}
	return recs, nil
}

// Close stops the autosave loop and flushes pending changes.
func (s *JSONStore) Close() error {
	if s.stop != nil {
		close(s.stop)
		<-s.done
		s.stop = nil
	}
	return s.Flush()
}
