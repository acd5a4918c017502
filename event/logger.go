// Package event provides an asynchronous log of key-lifecycle events.
// Writes happen off the caller's path: entries are queued on a buffered
// channel and drained by a single goroutine that emits JSON lines and
// fans out to subscribers.
package event

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry records one key-lifecycle operation.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	TypeURL   string    `json:"type_url,omitempty"`
	KeyID     uint32    `json:"key_id,omitempty"`
	Status    string    `json:"status,omitempty"`
}

// Subscriber receives entries via a buffered channel. Slow subscribers
// miss entries rather than stall the logger.
type Subscriber struct {
	C  chan Entry
	id string
}

// Logger is an async key-event logger.
type Logger struct {
	entries chan Entry
	out     io.Writer

	mu          sync.RWMutex
	subscribers map[string]*Subscriber

	done chan struct{}
}

// NewLogger creates a logger draining into out. out may be nil to keep
// only the subscriber fan-out.
func NewLogger(bufferSize int, out io.Writer) *Logger {
	l := &Logger{
		entries:     make(chan Entry, bufferSize),
		out:         out,
		subscribers: make(map[string]*Subscriber),
		done:        make(chan struct{}),
	}
	go l.processLoop()
	return l
}

// Log queues an entry. Non-blocking: if the buffer is full the entry is
// dropped with a warning.
func (l *Logger) Log(operation, typeURL string, keyID uint32, status string) {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Operation: operation,
		TypeURL:   typeURL,
		KeyID:     keyID,
		Status:    status,
	}

	select {
	case l.entries <- entry:
	default:
		slog.Warn("event log buffer full, dropping entry", "operation", operation)
	}
}

// Subscribe registers a new subscriber.
func (l *Logger) Subscribe() *Subscriber {
	l.mu.Lock()
	defer l.mu.Unlock()

	sub := &Subscriber{
		C:  make(chan Entry, 64),
		id: uuid.NewString(),
	}
	l.subscribers[sub.id] = sub
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
func (l *Logger) Unsubscribe(sub *Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.subscribers, sub.id)
	close(sub.C)
}

// Close stops the processing loop after draining queued entries.
func (l *Logger) Close() {
	close(l.entries)
	<-l.done
}

func (l *Logger) processLoop() {
	defer close(l.done)

	for entry := range l.entries {
		if l.out != nil {
			data, err := json.Marshal(entry)
			if err != nil {
				slog.Error("event marshal", "error", err)
				continue
			}
			fmt.Fprintf(l.out, "%s\n", data)
		}

		l.mu.RLock()
		for _, sub := range l.subscribers {
			select {
			case sub.C <- entry:
			default:
				// subscriber too slow, drop
			}
		}
		l.mu.RUnlock()
	}
}
