package collect

import (
	"sync/atomic"
	"time"

	"github.com/jyothri/ipodphotos/notification"
)

var counter_processed atomic.Int64
var counter_bytes atomic.Int64
var start time.Time

func resetCounters() {
	counter_processed.Store(0)
	counter_bytes.Store(0)
	start = time.Now()
}

func currentProgress(scanId int, clientKey string) notification.Progress {
	return notification.Progress{
		ProcessedCount: int(counter_processed.Load()),
		BytesTotal:     int(counter_bytes.Load()),
		ScanId:         scanId,
		ClientKey:      clientKey,
		ElapsedInSec:   int(time.Since(start).Seconds()),
	}
}

// logProgress publishes counters on every tick and a final update once done delivers the
// scan result.
func logProgress(scanId int, clientKey string, done <-chan error, ticker *time.Ticker) {
	notificationChannel := notification.GetPublisher(clientKey)
	defer notification.ClosePublisher(notificationChannel)
	for {
		select {
		case err := <-done:
			progress := currentProgress(scanId, clientKey)
			progress.Done = true
			progress.Failed = err != nil
			notificationChannel <- progress
			return
		case <-ticker.C:
			notificationChannel <- currentProgress(scanId, clientKey)
		}
	}
}
