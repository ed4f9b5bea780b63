// Package notify delivers user-visible success and error messages. Sinks are
// fire-and-forget: they never block the caller and are never queried for
// state.
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Sink interface {
	Notify(ctx context.Context, n Notice)
}

func Success(ctx context.Context, s Sink, message string) {
	s.Notify(ctx, Notice{Level: LevelSuccess, Message: message})
}

func Error(ctx context.Context, s Sink, message string) {
	s.Notify(ctx, Notice{Level: LevelError, Message: message})
}

// Buffer collects the notices raised while serving one request so the HTTP
// layer can return them with the response.
type Buffer struct {
	mu      sync.Mutex
	notices []Notice
}

func (b *Buffer) add(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
}

// Notices returns a copy of the collected notices, never nil.
func (b *Buffer) Notices() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notice, len(b.notices))
	copy(out, b.notices)
	return out
}

type bufferKey struct{}

func WithBuffer(ctx context.Context, b *Buffer) context.Context {
	return context.WithValue(ctx, bufferKey{}, b)
}

func BufferFrom(ctx context.Context) *Buffer {
	b, _ := ctx.Value(bufferKey{}).(*Buffer)
	return b
}

// RequestSink appends notices to the Buffer carried by the context and logs
// them. Without a buffer the notice is only logged.
type RequestSink struct {
	log *zap.Logger
}

func NewRequestSink(log *zap.Logger) *RequestSink {
	return &RequestSink{log: log}
}

func (s *RequestSink) Notify(ctx context.Context, n Notice) {
	if b := BufferFrom(ctx); b != nil {
		b.add(n)
	}
	s.log.Debug("notice",
		zap.String("level", string(n.Level)),
		zap.String("message", n.Message))
}

// Recorder keeps every notice. Used in tests.
type Recorder struct {
	Buffer
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.add(n)
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	notices := r.Notices()
	out := make([]string, 0, len(notices))
	for _, n := range notices {
		out = append(out, n.Message)
	}
	return out
}
