package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RosterRecorder is implemented by recorders that also want the list_players
// roster, which does not arrive as an event.
type RosterRecorder interface {
	RecordRoster(infos []protocol.PlayerInfo)
}

// JournalEntry is either one dispatched event or one roster delivery
type JournalEntry struct {
	Event  protocol.Event
	Roster []protocol.PlayerInfo
	// IsRoster selects Roster over Event.
	IsRoster bool
}

// Journal records everything a Router was fed so that a session can be
// rebuilt offline. Replaying a journal into a fresh Router reproduces the
// recorded session exactly.
type Journal struct {
	SessionID uuid.UUID
	entries   []JournalEntry
	mu        sync.RWMutex
}

// NewJournal creates an empty journal for a new session id
func NewJournal() *Journal {
	return &Journal{SessionID: uuid.New()}
}

// Record appends ev. It satisfies EventRecorder
func (j *Journal) Record(ev protocol.Event) {
	ev.Data = append([]string(nil), ev.Data...)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, JournalEntry{Event: ev})
}

// RecordRoster appends a list_players roster
func (j *Journal) RecordRoster(infos []protocol.PlayerInfo) {
	roster := append([]protocol.PlayerInfo(nil), infos...)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, JournalEntry{Roster: roster, IsRoster: true})
}

// Len returns the number of recorded entries
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Entries returns a copy of the recorded entries in order
func (j *Journal) Entries() []JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]JournalEntry(nil), j.entries...)
}

// Replay feeds the first n entries into r; n < 0 or past the end replays everything
func (j *Journal) Replay(r *Router, n int) int {
	entries := j.Entries()
	if n < 0 || n > len(entries) {
		n = len(entries)
	}
	for _, e := range entries[:n] {
		if e.IsRoster {
			r.PlayersListed(e.Roster)
			continue
		}
		r.Dispatch(e.Event)
	}
	return n
}

// journalMetadata heads a saved journal file
type journalMetadata struct {
	SessionID  string
	Timestamp  time.Time
	Version    int
	EntryCount int
}

const journalVersion = 1

func journalPath(directory string, id uuid.UUID) string {
	return filepath.Join(directory, fmt.Sprintf("%s.journal", id))
}

// SaveToFile writes the journal to <directory>/<session id>.journal as gzipped gob
func (j *Journal) SaveToFile(directory string) (string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filename := journalPath(directory, j.SessionID)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gzipWriter)

	metadata := journalMetadata{
		SessionID:  j.SessionID.String(),
		Timestamp:  time.Now(),
		Version:    journalVersion,
		EntryCount: len(j.entries),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i := range j.entries {
		if err := encoder.Encode(&j.entries[i]); err != nil {
			return "", fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}
	if err := gzipWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to flush journal: %w", err)
	}
	return filename, nil
}

// LoadJournalFromFile reads a journal previously written by SaveToFile
func LoadJournalFromFile(directory string, id uuid.UUID) (*Journal, error) {
	file, err := os.Open(journalPath(directory, id))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata journalMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != journalVersion {
		return nil, fmt.Errorf("unsupported journal version: %d", metadata.Version)
	}
	sessionID, err := uuid.Parse(metadata.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", metadata.SessionID, err)
	}

	j := &Journal{SessionID: sessionID, entries: make([]JournalEntry, 0, metadata.EntryCount)}
	for i := 0; i < metadata.EntryCount; i++ {
		var entry JournalEntry
		if err := decoder.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
		j.entries = append(j.entries, entry)
	}
	return j, nil
}

// SaveJournal writes j to directory and logs the outcome
func SaveJournal(logger *zap.Logger, j *Journal, directory string) error {
	filename, err := j.SaveToFile(directory)
	if err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}
	logger.Info("saved session journal",
		zap.String("session_id", j.SessionID.String()),
		zap.Int("entry_count", j.Len()),
		zap.String("file", filename),
	)
	return nil
}
