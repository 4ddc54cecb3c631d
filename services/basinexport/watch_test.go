package basinexport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherDrivesJobsToCompletion(t *testing.T) {
	service, _ := setupService(t, []string{"17040201", "17040202"}, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.ExportRegion(ctx, "upper_snake")
	require.NoError(t, err)

	watcher, err := NewWatcher(service, NewNotifier(EmailConfig{}), time.Millisecond*10)
	require.NoError(t, err)

	watchCtx, stopWatching := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		watcher.Run(watchCtx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		jobs, err := service.ListJobs(ctx)
		require.NoError(t, err)
		for _, job := range jobs {
			if job.State != "COMPLETED" {
				return false
			}
		}
		return len(jobs) == 2
	}, time.Second*3, time.Millisecond*20)

	stopWatching()
	<-done
}

func TestWatcherDefaultInterval(t *testing.T) {
	service, _ := setupService(t, []string{"17040201"}, testConfig())

	watcher, err := NewWatcher(service, NewNotifier(EmailConfig{}), 0)
	require.NoError(t, err)
	require.Equal(t, time.Minute, watcher.interval)
}
