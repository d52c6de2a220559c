package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	settingsFileName = "settings.json"
	dailyMetricsDir  = "daily"
)

// Storage persists SessionMetrics/DailyMetrics/UserSettings as one JSON
// file per day under baseDir/daily, plus a single settings.json.
// MetricsManager is the only caller; Storage itself knows nothing about
// the orchestrator or session.Session.
type Storage struct {
	baseDir string
}

func NewStorage(baseDir string) (*Storage, error) {
	dailyDir := filepath.Join(baseDir, dailyMetricsDir)
	if err := os.MkdirAll(dailyDir, 0755); err != nil {
		return nil, fmt.Errorf("metrics: creating %s: %w", dailyDir, err)
	}
	return &Storage{baseDir: baseDir}, nil
}

func (s *Storage) dailyPath(date string) string {
	return filepath.Join(s.baseDir, dailyMetricsDir, date+".json")
}

// SaveSession appends session to its date's DailyMetrics record, updating
// the running totals, and writes the record back out.
func (s *Storage) SaveSession(session *SessionMetrics) error {
	date := session.Timestamp.Format("2006-01-02")

	daily, err := s.GetDailyMetrics(date)
	if err != nil {
		return err
	}

	daily.Sessions = append(daily.Sessions, *session)
	daily.TotalWords += session.WordCount
	daily.TotalSaved += session.TimeSaved
	daily.SessionCount = len(daily.Sessions)

	return s.writeJSON(s.dailyPath(date), daily)
}

// GetDailyMetrics returns date's record, or an empty one if no sessions
// have been recorded on that date yet.
func (s *Storage) GetDailyMetrics(date string) (*DailyMetrics, error) {
	var daily DailyMetrics
	found, err := s.readJSON(s.dailyPath(date), &daily)
	if err != nil {
		return nil, err
	}
	if !found {
		return &DailyMetrics{Date: date, Sessions: []SessionMetrics{}}, nil
	}
	return &daily, nil
}

// GetRecentDays returns the last `days` calendar days' records, oldest
// first, skipping any that fail to load rather than failing the whole call.
func (s *Storage) GetRecentDays(days int) ([]*DailyMetrics, error) {
	recent := make([]*DailyMetrics, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
		daily, err := s.GetDailyMetrics(date)
		if err != nil {
			continue
		}
		recent = append(recent, daily)
	}
	return recent, nil
}

// GetTotalMetrics walks every daily record on disk and sums them into a
// lifetime total.
func (s *Storage) GetTotalMetrics() (*TotalMetrics, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, dailyMetricsDir))
	if err != nil {
		return &TotalMetrics{}, nil
	}

	total := &TotalMetrics{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		var daily DailyMetrics
		if ok, err := s.readJSON(filepath.Join(s.baseDir, dailyMetricsDir, entry.Name()), &daily); err != nil || !ok {
			continue
		}
		total.TotalWords += daily.TotalWords
		total.TotalSessions += daily.SessionCount
		total.TotalSaved += daily.TotalSaved
	}

	if total.TotalSessions > 0 {
		total.AvgWordsPerSession = total.TotalWords / total.TotalSessions
		total.AvgSavedPerSession = total.TotalSaved / time.Duration(total.TotalSessions)
	}
	return total, nil
}

// ClearAllMetrics removes every daily record, leaving user settings intact.
func (s *Storage) ClearAllMetrics() error {
	dailyDir := filepath.Join(s.baseDir, dailyMetricsDir)
	entries, err := os.ReadDir(dailyDir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(dailyDir, entry.Name())); err != nil {
			return fmt.Errorf("metrics: removing %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *Storage) SaveUserSettings(settings *UserSettings) error {
	return s.writeJSON(filepath.Join(s.baseDir, settingsFileName), settings)
}

func (s *Storage) LoadUserSettings() (*UserSettings, error) {
	var settings UserSettings
	found, err := s.readJSON(filepath.Join(s.baseDir, settingsFileName), &settings)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("metrics: no user settings saved yet")
	}
	return &settings, nil
}

// readJSON unmarshals path into v, reporting found=false (no error) when
// the file simply doesn't exist yet.
func (s *Storage) readJSON(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
