package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Level classifies a user-facing message.
type Level int

const (
	// LevelInfo marks an informational message.
	LevelInfo Level = iota
	// LevelError marks a failure report.
	LevelError
)

// Message is a single user-facing notification.
type Message struct {
	// Level classifies the message as info or error.
	Level Level
	// Text is the human-readable message body.
	Text string
}

// Sink receives user-facing notifications. Both methods are fire-and-forget
// and implementations must be safe for concurrent use.
type Sink interface {
	Info(message string)
	Error(message string)
}

// Queue is a mutex-guarded ordered queue of notifications. A UI layer drains
// it periodically; the queue itself never discards messages.
type Queue struct {
	// mu protects concurrent access to the message list.
	mu sync.Mutex
	// messages holds pending notifications in arrival order.
	messages []Message
}

// NewQueue returns an empty notification queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Info enqueues an informational message.
func (q *Queue) Info(message string) {
	q.push(LevelInfo, message)
}

// Error enqueues a failure report.
func (q *Queue) Error(message string) {
	q.push(LevelError, message)
}

// Drain returns all pending messages in arrival order and empties the queue.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := q.messages
	q.messages = nil

	return drained
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.messages)
}

func (q *Queue) push(level Level, text string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.messages = append(q.messages, Message{Level: level, Text: text})
}

// LoggerSink forwards notifications to a zap logger. The CLI uses it as the
// notification destination instead of a widget.
type LoggerSink struct {
	// log is the destination logger.
	log *zap.SugaredLogger
}

// NewLoggerSink returns a sink writing through the provided logger.
func NewLoggerSink(log *zap.SugaredLogger) *LoggerSink {
	return &LoggerSink{log: log}
}

// Info logs the message at the information level.
func (s *LoggerSink) Info(message string) {
	s.log.Info(message)
}

// Error logs the message at the error level.
func (s *LoggerSink) Error(message string) {
	s.log.Error(message)
}
