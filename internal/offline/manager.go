// Package offline simulates downloading a country's laws for offline use.
//
// A task moves Idle -> Downloading -> Downloaded and back to Idle when deleted.
// Progress is driven by a per-task interval owned by the manager, so closing
// the manager stops every simulated download.
package offline

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/metrics"
	"github.com/jjenkins/globeguru/internal/model"
	"github.com/jjenkins/globeguru/internal/task"
)

var (
	// ErrOffline is returned when a download is requested without connectivity
	ErrOffline = errors.New("cannot download while offline")
	// ErrBusy is returned when the task is already downloading or downloaded
	ErrBusy = errors.New("download already in progress or complete")
	// ErrNotDownloaded is returned by Update and Delete for a task that has no offline data
	ErrNotDownloaded = errors.New("country is not downloaded")
	// ErrClosed is returned after the manager has been closed
	ErrClosed = errors.New("offline manager closed")
)

// Config tunes the simulated transfer speed
type Config struct {
	TickInterval time.Duration
	Step         int
}

// DefaultConfig returns the default simulation: 10% every 200ms
func DefaultConfig() Config {
	return Config{TickInterval: 200 * time.Millisecond, Step: 10}
}

// seeded is the initial offline list: code and the date it was downloaded, if any
var seeded = []struct {
	code       string
	downloaded string
}{
	{"FR", "2024-01-15"},
	{"JP", ""},
	{"TH", ""},
}

type entry struct {
	task   model.DownloadTask
	handle task.Handle
	// gen invalidates ticks of an interval that was replaced or cancelled
	gen int
}

// Manager holds the offline download state of one visitor
type Manager struct {
	cfg    Config
	group  *task.Group
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	online  bool
	entries []*entry
	notices []model.Notice
	closed  bool
}

// NewManager creates a manager seeded with the default offline list
func NewManager(sched task.Scheduler, cat *catalog.Catalog, cfg Config, logger *zap.Logger) *Manager {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultConfig().Step
	}

	m := &Manager{
		cfg:    cfg,
		group:  task.NewGroup(sched),
		logger: logger,
		now:    time.Now,
		online: true,
	}

	for _, s := range seeded {
		country, err := cat.Country(s.code)
		if err != nil {
			logger.Warn("offline seed country missing from catalog", zap.String("code", s.code))
			continue
		}
		t := model.DownloadTask{
			CountryCode: country.Code,
			Name:        country.Name,
			Flag:        country.Flag,
			Size:        country.OfflineSize,
		}
		if s.downloaded != "" {
			date, _ := time.Parse("2006-01-02", s.downloaded)
			t.IsDownloaded = true
			t.Progress = 100
			t.DownloadDate = &date
		}
		m.entries = append(m.entries, &entry{task: t})
	}

	return m
}

// find must be called with m.mu held
func (m *Manager) find(code string) (*entry, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, e := range m.entries {
		if e.task.CountryCode == code {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownCountry, code)
}

// Start begins a simulated download
func (m *Manager) Start(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	e, err := m.find(code)
	if err != nil {
		return err
	}
	if !m.online {
		metrics.DownloadsTotal.WithLabelValues("rejected").Inc()
		return ErrOffline
	}
	if e.task.IsDownloading || e.task.IsDownloaded {
		return fmt.Errorf("%w: %s", ErrBusy, e.task.CountryCode)
	}

	e.task.IsDownloading = true
	e.task.Progress = 0
	e.gen++
	gen, target := e.gen, e.task.CountryCode
	e.handle = m.group.Every(m.cfg.TickInterval, func() bool {
		return m.tick(target, gen)
	})

	metrics.DownloadsTotal.WithLabelValues("started").Inc()
	metrics.ActiveDownloads.Inc()
	m.logger.Debug("download started", zap.String("country", target))
	return nil
}

// tick advances one download and reports whether its interval should keep running
func (m *Manager) tick(code string, gen int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.find(code)
	if err != nil || m.closed || e.gen != gen || !e.task.IsDownloading {
		return false
	}

	e.task.Progress = min(e.task.Progress+m.cfg.Step, 100)
	if e.task.Progress < 100 {
		return true
	}

	now := m.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	e.task.IsDownloading = false
	e.task.IsDownloaded = true
	e.task.DownloadDate = &today
	e.handle = nil
	m.notify("Download Complete", fmt.Sprintf("%s laws are now available offline.", e.task.Name))

	metrics.DownloadsTotal.WithLabelValues("completed").Inc()
	metrics.ActiveDownloads.Dec()
	m.logger.Info("download complete", zap.String("country", code))
	return false
}

// Delete removes offline data and cancels a download in progress.
// An idle task has nothing to remove.
func (m *Manager) Delete(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	e, err := m.find(code)
	if err != nil {
		return err
	}
	if !e.task.IsDownloading && !e.task.IsDownloaded {
		return fmt.Errorf("%w: %s", ErrNotDownloaded, e.task.CountryCode)
	}

	if e.task.IsDownloading {
		metrics.ActiveDownloads.Dec()
	}
	if e.handle != nil {
		e.handle.Cancel()
		e.handle = nil
	}
	e.gen++
	e.task.IsDownloading = false
	e.task.IsDownloaded = false
	e.task.Progress = 0
	e.task.DownloadDate = nil
	m.notify("Offline Data Removed", "Country data has been removed from offline storage.")

	metrics.DownloadsTotal.WithLabelValues("deleted").Inc()
	return nil
}

// Update checks downloaded data for newer laws. The simulation only reports
// the check; the stored data does not change.
func (m *Manager) Update(code string) (model.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return model.Notice{}, ErrClosed
	}
	e, err := m.find(code)
	if err != nil {
		return model.Notice{}, err
	}
	if !m.online {
		return model.Notice{}, ErrOffline
	}
	if !e.task.IsDownloaded {
		return model.Notice{}, fmt.Errorf("%w: %s", ErrNotDownloaded, e.task.CountryCode)
	}
	return m.notify("Updating...", "Checking for latest legal updates."), nil
}

// SetOnline records the connectivity reported by the client.
// Downloads already running continue when going offline.
func (m *Manager) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = online
}

// Online reports the last known connectivity
func (m *Manager) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Snapshot returns a copy of every task in display order
func (m *Manager) Snapshot() []model.DownloadTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.DownloadTask, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.task
		if e.task.DownloadDate != nil {
			d := *e.task.DownloadDate
			out[i].DownloadDate = &d
		}
	}
	return out
}

// Task returns a copy of one task
func (m *Manager) Task(code string) (model.DownloadTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.find(code)
	if err != nil {
		return model.DownloadTask{}, err
	}
	return e.task, nil
}

// Notices returns the notifications produced so far, oldest first
func (m *Manager) Notices() []model.Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Notice(nil), m.notices...)
}

// notify must be called with m.mu held
func (m *Manager) notify(title, description string) model.Notice {
	n := model.Notice{Title: title, Description: description, CreatedAt: m.now()}
	m.notices = append(m.notices, n)
	return n
}

// Close cancels every running download interval
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for _, e := range m.entries {
		if e.task.IsDownloading {
			metrics.ActiveDownloads.Dec()
		}
	}
	m.mu.Unlock()

	m.group.Close()
}
