package offline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jjenkins/globeguru/internal/catalog"
	"github.com/jjenkins/globeguru/internal/task"
)

func newTestManager(t *testing.T) (*Manager, *task.Manual) {
	t.Helper()
	clock := task.NewManual()
	m := NewManager(clock, catalog.MustDefault(), DefaultConfig(), zap.NewNop())
	m.now = func() time.Time { return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC) }
	t.Cleanup(m.Close)
	return m, clock
}

func TestSeededState(t *testing.T) {
	m, _ := newTestManager(t)
	tasks := m.Snapshot()
	require.Len(t, tasks, 3)

	assert.Equal(t, "FR", tasks[0].CountryCode)
	assert.True(t, tasks[0].IsDownloaded)
	require.NotNil(t, tasks[0].DownloadDate)
	assert.Equal(t, "2024-01-15", tasks[0].DownloadDate.Format("2006-01-02"))
	assert.Equal(t, "2.3 MB", tasks[0].Size)

	for _, idle := range tasks[1:] {
		assert.False(t, idle.IsDownloaded)
		assert.False(t, idle.IsDownloading)
		assert.Zero(t, idle.Progress)
	}
}

func TestDownloadCompletesAfterTenTicks(t *testing.T) {
	m, clock := newTestManager(t)
	require.NoError(t, m.Start("jp"))

	last := 0
	for i := 1; i <= 9; i++ {
		clock.Advance(200 * time.Millisecond)
		jp, err := m.Task("JP")
		require.NoError(t, err)
		assert.True(t, jp.IsDownloading)
		assert.Equal(t, i*10, jp.Progress)
		assert.Greater(t, jp.Progress, last)
		last = jp.Progress
	}

	clock.Advance(200 * time.Millisecond)
	jp, err := m.Task("JP")
	require.NoError(t, err)
	assert.False(t, jp.IsDownloading)
	assert.True(t, jp.IsDownloaded)
	assert.Equal(t, 100, jp.Progress)
	require.NotNil(t, jp.DownloadDate)
	assert.Equal(t, "2025-03-14", jp.DownloadDate.Format("2006-01-02"))

	// interval is gone, progress never exceeds 100
	assert.Equal(t, 0, clock.Pending())
	clock.Advance(time.Second)
	jp, _ = m.Task("JP")
	assert.Equal(t, 100, jp.Progress)

	notices := m.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Download Complete", notices[0].Title)
	assert.Equal(t, "Japan laws are now available offline.", notices[0].Description)
}

func TestProgressIsCappedAtHundred(t *testing.T) {
	clock := task.NewManual()
	m := NewManager(clock, catalog.MustDefault(), Config{TickInterval: time.Second, Step: 30}, zap.NewNop())
	defer m.Close()

	require.NoError(t, m.Start("TH"))
	clock.Advance(3 * time.Second)
	th, _ := m.Task("TH")
	assert.Equal(t, 90, th.Progress)

	clock.Advance(time.Second)
	th, _ = m.Task("TH")
	assert.Equal(t, 100, th.Progress)
	assert.True(t, th.IsDownloaded)
}

func TestStartWhileOfflineLeavesTaskIdle(t *testing.T) {
	m, clock := newTestManager(t)
	m.SetOnline(false)
	assert.False(t, m.Online())

	err := m.Start("JP")
	assert.ErrorIs(t, err, ErrOffline)

	clock.Advance(5 * time.Second)
	jp, _ := m.Task("JP")
	assert.False(t, jp.IsDownloading)
	assert.Zero(t, jp.Progress)
	assert.Equal(t, 0, clock.Pending())
}

func TestStartRejectsBusyAndUnknown(t *testing.T) {
	m, _ := newTestManager(t)

	assert.ErrorIs(t, m.Start("FR"), ErrBusy)

	require.NoError(t, m.Start("JP"))
	assert.ErrorIs(t, m.Start("JP"), ErrBusy)

	assert.ErrorIs(t, m.Start("ZZ"), catalog.ErrUnknownCountry)
}

func TestGoingOfflineDoesNotStopRunningDownload(t *testing.T) {
	m, clock := newTestManager(t)
	require.NoError(t, m.Start("JP"))
	m.SetOnline(false)

	clock.Advance(2 * time.Second)
	jp, _ := m.Task("JP")
	assert.True(t, jp.IsDownloaded)
}

func TestDeleteCancelsRunningDownload(t *testing.T) {
	m, clock := newTestManager(t)
	require.NoError(t, m.Start("TH"))
	clock.Advance(600 * time.Millisecond)

	require.NoError(t, m.Delete("TH"))
	th, _ := m.Task("TH")
	assert.False(t, th.IsDownloading)
	assert.Zero(t, th.Progress)

	clock.Advance(5 * time.Second)
	th, _ = m.Task("TH")
	assert.Zero(t, th.Progress)
	assert.False(t, th.IsDownloaded)
}

func TestDeleteDownloadedResetsToIdle(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Delete("FR"))

	fr, _ := m.Task("FR")
	assert.False(t, fr.IsDownloaded)
	assert.Nil(t, fr.DownloadDate)
	assert.Zero(t, fr.Progress)

	notices := m.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, "Offline Data Removed", notices[len(notices)-1].Title)

	require.NoError(t, m.Start("FR"))
}

func TestDeleteIdleTaskIsRejected(t *testing.T) {
	m, _ := newTestManager(t)
	before := len(m.Notices())

	err := m.Delete("JP")
	assert.ErrorIs(t, err, ErrNotDownloaded)
	assert.Len(t, m.Notices(), before)

	jp, _ := m.Task("JP")
	assert.False(t, jp.IsDownloaded)
	assert.False(t, jp.IsDownloading)
}

func TestIndependentTasks(t *testing.T) {
	m, clock := newTestManager(t)
	require.NoError(t, m.Start("JP"))
	clock.Advance(400 * time.Millisecond)
	require.NoError(t, m.Start("TH"))
	clock.Advance(400 * time.Millisecond)

	jp, _ := m.Task("JP")
	th, _ := m.Task("TH")
	assert.Equal(t, 40, jp.Progress)
	assert.Equal(t, 20, th.Progress)

	require.NoError(t, m.Delete("JP"))
	clock.Advance(200 * time.Millisecond)
	th, _ = m.Task("TH")
	assert.Equal(t, 30, th.Progress)
}

func TestUpdate(t *testing.T) {
	m, _ := newTestManager(t)

	n, err := m.Update("FR")
	require.NoError(t, err)
	assert.Equal(t, "Checking for latest legal updates.", n.Description)

	_, err = m.Update("JP")
	assert.ErrorIs(t, err, ErrNotDownloaded)

	m.SetOnline(false)
	_, err = m.Update("FR")
	assert.ErrorIs(t, err, ErrOffline)
}

func TestCloseStopsEverything(t *testing.T) {
	m, clock := newTestManager(t)
	require.NoError(t, m.Start("JP"))
	require.NoError(t, m.Start("TH"))

	m.Close()
	assert.Equal(t, 0, clock.Pending())
	clock.Advance(time.Minute)

	jp, _ := m.Task("JP")
	assert.Zero(t, jp.Progress)
	assert.ErrorIs(t, m.Start("JP"), ErrClosed)
}

func TestSnapshotIsACopy(t *testing.T) {
	m, _ := newTestManager(t)
	snap := m.Snapshot()
	snap[0].Progress = 7
	*snap[0].DownloadDate = time.Time{}

	fr, _ := m.Task("FR")
	assert.Equal(t, 100, fr.Progress)
	assert.Equal(t, 2024, fr.DownloadDate.Year())
}

func TestRealSchedulerDownload(t *testing.T) {
	m := NewManager(task.Real{}, catalog.MustDefault(), Config{TickInterval: time.Millisecond, Step: 25}, zap.NewNop())
	defer m.Close()

	require.NoError(t, m.Start("JP"))
	assert.Eventually(t, func() bool {
		jp, _ := m.Task("JP")
		return jp.IsDownloaded
	}, 2*time.Second, 5*time.Millisecond)
}
