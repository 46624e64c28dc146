// Package bugs keeps user-submitted bug reports in a JSON file.
package bugs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"StrawberryBot/store"
	"StrawberryBot/utils"
)

type Status string

const (
	StatusOpen          Status = "open"
	StatusInvestigating Status = "investigating"
	StatusFixed         Status = "fixed"
	StatusClosed        Status = "closed"
)

var Statuses = []Status{StatusOpen, StatusInvestigating, StatusFixed, StatusClosed}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) Emoji() string {
	switch s {
	case StatusOpen:
		return "🔴"
	case StatusInvestigating:
		return "🟡"
	case StatusFixed:
		return "🟢"
	default:
		return "⚫"
	}
}

var ErrNotFound = errors.New("bug report not found")

type Report struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	GameType    string            `json:"game_type"`
	Description string            `json:"description"`
	GameState   map[string]string `json:"game_state"`
	Timestamp   time.Time         `json:"timestamp"`
	Status      Status            `json:"status"`
	AdminNotes  string            `json:"admin_notes,omitempty"`
}

// Tracker stores reports keyed by ids of the form BUG0001.
type Tracker struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	reports map[string]*Report
	nextID  int
}

// flexID accepts a user id written as a JSON string or number.
type flexID string

func (id *flexID) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	if string(raw) == "null" {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("user_id: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

// fileReport is the on-disk shape. Older files carry a numeric user_id, a
// timezone-less timestamp and game state values of any JSON type.
type fileReport struct {
	ID          string                     `json:"id"`
	UserID      flexID                     `json:"user_id"`
	GameType    string                     `json:"game_type"`
	Description string                     `json:"description"`
	GameState   map[string]json.RawMessage `json:"game_state"`
	Timestamp   string                     `json:"timestamp"`
	Status      Status                     `json:"status"`
	AdminNotes  *string                    `json:"admin_notes"`
}

func (f fileReport) report(id string) Report {
	r := Report{
		ID:          id,
		UserID:      string(f.UserID),
		GameType:    f.GameType,
		Description: f.Description,
		Status:      f.Status,
	}
	if r.Status == "" {
		r.Status = StatusOpen
	}
	if f.AdminNotes != nil {
		r.AdminNotes = *f.AdminNotes
	}
	if ts, ok := store.ParseLegacyTime(f.Timestamp); ok {
		r.Timestamp = ts
	}
	if len(f.GameState) > 0 {
		r.GameState = make(map[string]string, len(f.GameState))
		for k, raw := range f.GameState {
			var str string
			if err := json.Unmarshal(raw, &str); err == nil {
				r.GameState[k] = str
			} else {
				r.GameState[k] = string(raw)
			}
		}
	}
	return r
}

func decodeReports(raw []byte) (map[string]*Report, error) {
	var file map[string]fileReport
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	reports := make(map[string]*Report, len(file))
	for id, f := range file {
		r := f.report(id)
		reports[id] = &r
	}
	return reports, nil
}

// Open loads the tracker file at path, if it exists. An unreadable file is
// logged and moved aside so the bot still starts.
func Open(path string) (*Tracker, error) {
	t := &Tracker{path: path, now: time.Now, reports: make(map[string]*Report), nextID: 1}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bug reports: %w", err)
	}
	reports, err := decodeReports(raw)
	if err != nil {
		utils.LogError("Error loading bug reports from %s: %v", path, err)
		if rerr := os.Rename(path, path+".corrupt"); rerr != nil {
			return nil, fmt.Errorf("move aside unreadable bug reports: %w", rerr)
		}
		return t, nil
	}
	t.reports = reports
	for id := range t.reports {
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "BUG")); err == nil && n >= t.nextID {
			t.nextID = n + 1
		}
	}
	utils.LogInfo("Loaded %d bug reports", len(t.reports))
	return t, nil
}

func (t *Tracker) saveLocked() error {
	raw, err := json.MarshalIndent(t.reports, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bug reports: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create bug report dir: %w", err)
	}
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write bug reports: %w", err)
	}
	return os.Rename(tmp, t.path)
}

// Create files a new open report and returns it.
func (t *Tracker) Create(userID, gameType, description string, state map[string]string) (Report, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r := &Report{
		ID:          fmt.Sprintf("BUG%04d", t.nextID),
		UserID:      userID,
		GameType:    gameType,
		Description: description,
		GameState:   state,
		Timestamp:   t.now().UTC(),
		Status:      StatusOpen,
	}
	t.reports[r.ID] = r
	t.nextID++
	if err := t.saveLocked(); err != nil {
		delete(t.reports, r.ID)
		t.nextID--
		return Report{}, err
	}
	utils.LogInfo("Created bug report %s from user %s", r.ID, userID)
	return *r, nil
}

func (t *Tracker) Get(id string) (Report, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.reports[strings.ToUpper(id)]
	if !ok {
		return Report{}, ErrNotFound
	}
	return *r, nil
}

// List returns reports newest first, optionally filtered by status.
func (t *Tracker) List(status Status) []Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Report
	for _, r := range t.reports {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Update changes status and/or notes. Empty values leave the field alone.
// It returns the updated report and the status it had before.
func (t *Tracker) Update(id string, status Status, notes string) (Report, Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.reports[strings.ToUpper(id)]
	if !ok {
		return Report{}, "", ErrNotFound
	}
	before := *r
	if status != "" {
		r.Status = status
	}
	if notes != "" {
		r.AdminNotes = notes
	}
	if err := t.saveLocked(); err != nil {
		*r = before
		return Report{}, "", err
	}
	utils.LogInfo("Updated bug report %s", r.ID)
	return *r, before.Status, nil
}
