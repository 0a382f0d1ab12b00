package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/logger"
)

const (
	DefaultDir = "interview_results"

	filePrefix = "interview_"
	fileSuffix = ".json"
)

// Store keeps records as interview_<timestamp>.json files in Dir.
type Store struct {
	Dir    string
	logger *zap.Logger
}

// Entry is a stored record together with the file it was read from.
type Entry struct {
	Path   string
	Record Record
}

func NewStore(dir string, log *zap.Logger) *Store {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir, logger: logger.OrNop(log)}
}

// PathFor returns the file a record is saved to.
func (s *Store) PathFor(r Record) string {
	return filepath.Join(s.Dir, filePrefix+r.Timestamp+fileSuffix)
}

// Save writes the record atomically and returns its path. Saving the same
// session again replaces the previous file.
func (s *Store) Save(r Record) (string, error) {
	if r.Timestamp == "" {
		return "", errors.New("record has no timestamp")
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}

	path := s.PathFor(r)

	tmp, err := os.CreateTemp(s.Dir, ".interview-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename: %w", err)
	}

	s.logger.Debug("record saved",
		zap.String("path", path),
		zap.String("session_id", r.SessionID),
		zap.String("state", r.State),
	)

	return path, nil
}

// Load reads a record. Fields missing from the file load as zero values.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decoding record %s: %w", path, err)
	}

	return r, nil
}

// List returns the readable records in Dir, oldest first. A missing
// directory yields an empty list.
func (s *Store) List() ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}

	entries := make([]Entry, 0, len(matches))
	for _, path := range matches {
		r, err := Load(path)
		if err != nil {
			s.logger.Warn("skipping unreadable record", zap.String("path", path), zap.Error(err))
			continue
		}
		entries = append(entries, Entry{Path: path, Record: r})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Record.Timestamp != entries[j].Record.Timestamp {
			return entries[i].Record.Timestamp < entries[j].Record.Timestamp
		}
		return entries[i].Path < entries[j].Path
	})

	return entries, nil
}
