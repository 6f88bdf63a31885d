// Package settings provides program settings persistence with file watching.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
)

// Event represents a settings service event.
type Event struct {
	Type     EventType
	Error    error
	Settings *ProgramSettings
	Changes  []string
}

// EventType defines the type of settings event.
type EventType int

const (
	EventSettingsLoaded EventType = iota
	EventSettingsChanged
	EventSettingsUpdated
	EventError
)

// Service manages program settings with file watching and change notifications.
type Service struct {
	mu            sync.RWMutex
	settings      ProgramSettings
	lastWritten   []byte
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	closeOnce     sync.Once
	debounceTimer *time.Timer
}

// New creates a settings service, writing defaults when the file is missing,
// and starts watching the file for external edits.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		return nil, fmt.Errorf("settings path must not be empty")
	}

	s := &Service{
		settings:  Defaults(),
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	current := s.Get()
	s.sendEvent(Event{Type: EventSettingsLoaded, Settings: &current})

	return s, nil
}

// Events returns the event channel for subscribing to settings changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the settings file location.
func (s *Service) Path() string {
	return s.filePath
}

// Get returns a copy of the current settings.
func (s *Service) Get() ProgramSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update validates and persists new settings, returning a description of what changed.
func (s *Service) Update(updated ProgramSettings) ([]string, error) {
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	old := s.settings
	if updated.Version == 0 {
		updated.Version = old.Version
	}
	s.settings = updated
	if err := s.saveLocked(); err != nil {
		s.settings = old
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	s.mu.Unlock()

	changes := Diff(old, updated)
	s.sendEvent(Event{Type: EventSettingsUpdated, Settings: &updated, Changes: changes})
	return changes, nil
}

// parse reads settings over the defaults so missing keys keep their default value.
func parse(data []byte) (ProgramSettings, error) {
	settings := Defaults()
	if err := json.Unmarshal(data, &settings); err != nil {
		return ProgramSettings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return ProgramSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.loadLocked()
	return err
}

// loadLocked reloads the file and reports whether it differed from what was
// last written by this service (must hold lock).
func (s *Service) loadLocked() (bool, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return false, err
	}
	if s.lastWritten != nil && bytes.Equal(data, s.lastWritten) {
		return false, nil
	}

	settings, err := parse(data)
	if err != nil {
		return false, err
	}

	s.settings = settings
	s.lastWritten = data
	return true, nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes settings to the JSON file (must hold lock).
func (s *Service) saveLocked() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.lastWritten = data
	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so editors that replace the file are still seen
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads settings after an external edit. Invalid files
// leave the previous settings in place.
func (s *Service) handleFileChange() {
	select {
	case <-s.stopChan:
		return
	default:
	}

	s.mu.Lock()
	old := s.settings
	changed, err := s.loadLocked()
	current := s.settings
	s.mu.Unlock()

	if err != nil {
		logger.Warn("ignoring settings file change", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	if !changed {
		return
	}

	logger.Info("settings reloaded from disk", "path", s.filePath)
	s.sendEvent(Event{Type: EventSettingsChanged, Settings: &current, Changes: Diff(old, current)})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
