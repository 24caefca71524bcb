// Package forward publishes validation problems to a Redis channel so editors
// and dashboards can subscribe to lint results.
package forward

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chriserin/rfl/internal/validation"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "rfl:problems"

// publisher is the subset of *redis.Client the forwarder needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Message is the JSON payload published once per file.
type Message struct {
	RunID    string               `json:"run_id,omitempty"`
	File     string               `json:"file"`
	Problems []validation.Problem `json:"problems"`
	SentAt   time.Time            `json:"sent_at"`
}

type Forwarder struct {
	pub     publisher
	channel string
	runID   string
	log     *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	pending map[string][]validation.Problem
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithChannel sets the publish channel.
func WithChannel(channel string) Option {
	return func(f *Forwarder) {
		if channel != "" {
			f.channel = channel
		}
	}
}

// WithRunID tags every message with a run id.
func WithRunID(id string) Option {
	return func(f *Forwarder) { f.runID = id }
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *Forwarder) {
		if logger != nil {
			f.log = logger.With(slog.String("component", "forward"))
		}
	}
}

// New creates a Forwarder publishing through pub.
func New(pub publisher, opts ...Option) *Forwarder {
	f := &Forwarder{
		pub:     pub,
		channel: DefaultChannel,
		log:     slog.New(slog.DiscardHandler),
		now:     time.Now,
		pending: make(map[string][]validation.Problem),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dial connects to addr and returns the client together with a Forwarder
// over it. The caller owns the client.
func Dial(ctx context.Context, addr string, opts ...Option) (*redis.Client, *Forwarder, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("PING %s: %w", addr, err)
	}
	return rdb, New(rdb, opts...), nil
}

// Report buffers p until the next Flush.
func (f *Forwarder) Report(p validation.Problem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[p.Region.File] = append(f.pending[p.Region.File], p)
}

// Announce marks file as checked so a clean result is published too.
func (f *Forwarder) Announce(file string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pending[file]; !ok {
		f.pending[file] = nil
	}
}

// Flush publishes one message per buffered file, in path order. Files that
// fail to publish stay buffered for the next attempt.
func (f *Forwarder) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	files := make([]string, 0, len(f.pending))
	for file := range f.pending {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		problems := f.pending[file]
		if problems == nil {
			problems = []validation.Problem{}
		}
		data, err := json.Marshal(Message{RunID: f.runID, File: file, Problems: problems, SentAt: f.now().UTC()})
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		if err := f.pub.Publish(ctx, f.channel, string(data)).Err(); err != nil {
			return fmt.Errorf("PUBLISH %s: %w", f.channel, err)
		}
		delete(f.pending, file)
		f.log.Debug("published", slog.String("file", file), slog.Int("problems", len(problems)))
	}
	return nil
}
