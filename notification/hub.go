package notification

import "sync"

const NOTIFICATION_ALL string = "all"

var (
	mu sync.Mutex
	// Number of open publishers per client key.
	publishers  = make(map[string]int)
	subscribers = make(map[string][]chan Progress)
)

// GetPublisher returns a new channel a scan reports progress on. Scans sharing a client key
// each get their own channel. Release it with ClosePublisher.
func GetPublisher(clientKey string) chan<- Progress {
	mu.Lock()
	defer mu.Unlock()
	publisher := make(chan Progress)
	publishers[clientKey]++
	go processNotifications(clientKey, publisher)
	return publisher
}

// ClosePublisher closes a channel returned by GetPublisher. Subscriptions for its client key
// end after the last open publisher for that key has delivered its pending progress.
func ClosePublisher(publisher chan<- Progress) {
	close(publisher)
}

// GetSubscriber registers a new subscription. Progress for every client key is also
// delivered to NOTIFICATION_ALL subscribers.
func GetSubscriber(clientKey string) <-chan Progress {
	mu.Lock()
	defer mu.Unlock()
	sub := make(chan Progress, 16)
	subscribers[clientKey] = append(subscribers[clientKey], sub)
	return sub
}

// Unsubscribe removes and closes a subscription returned by GetSubscriber.
func Unsubscribe(clientKey string, sub <-chan Progress) {
	mu.Lock()
	defer mu.Unlock()
	subs := subscribers[clientKey]
	for i, s := range subs {
		if s == sub {
			close(s)
			subscribers[clientKey] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subscribers[clientKey]) == 0 {
		delete(subscribers, clientKey)
	}
}

func processNotifications(clientKey string, publisher <-chan Progress) {
	for progress := range publisher {
		mu.Lock()
		pushToSubscribers(subscribers[clientKey], progress)
		if clientKey != NOTIFICATION_ALL {
			pushToSubscribers(subscribers[NOTIFICATION_ALL], progress)
		}
		mu.Unlock()
	}
	mu.Lock()
	defer mu.Unlock()
	publishers[clientKey]--
	if publishers[clientKey] > 0 {
		return
	}
	delete(publishers, clientKey)
	if clientKey != NOTIFICATION_ALL {
		for _, s := range subscribers[clientKey] {
			close(s)
		}
		delete(subscribers, clientKey)
	}
}

// pushToSubscribers drops progress for subscribers that are not keeping up; the next
// update supersedes it.
func pushToSubscribers(subs []chan Progress, progress Progress) {
	for _, s := range subs {
		select {
		case s <- progress:
		default:
		}
	}
}

type Progress struct {
	ClientKey      string `json:"client_key"`
	ScanId         int    `json:"scan_id"`
	ProcessedCount int    `json:"processed_count"`
	BytesTotal     int    `json:"bytes_total"`
	ElapsedInSec   int    `json:"elapsed_in_sec"`
	Done           bool   `json:"done"`
	Failed         bool   `json:"failed"`
}
