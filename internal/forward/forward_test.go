package forward

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/rfl/internal/validation"
)

type published struct {
	channel string
	payload string
}

type fakePublisher struct {
	sent []published
	fail map[int]error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	call := len(p.sent)
	if err, ok := p.fail[call]; ok {
		delete(p.fail, call)
		return redis.NewIntResult(0, err)
	}
	p.sent = append(p.sent, published{channel: channel, payload: message.(string)})
	return redis.NewIntResult(1, nil)
}

func problemIn(file string) validation.Problem {
	return validation.NewProblem(validation.UnknownSetting, validation.Region{File: file, Line: 2, Column: 1}, "Foo")
}

func decode(t *testing.T, payload string) Message {
	t.Helper()
	var m Message
	require.NoError(t, json.Unmarshal([]byte(payload), &m))
	return m
}

func TestFlush_PublishesOneMessagePerFileInOrder(t *testing.T) {
	pub := &fakePublisher{}
	f := New(pub, WithChannel("lint"), WithRunID("run-1"))
	f.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	f.Report(problemIn("b.robot"))
	f.Report(problemIn("a.robot"))
	f.Report(problemIn("b.robot"))
	f.Announce("c.robot")
	f.Announce("a.robot")

	require.NoError(t, f.Flush(context.Background()))
	require.Len(t, pub.sent, 3)

	a := decode(t, pub.sent[0].payload)
	assert.Equal(t, "lint", pub.sent[0].channel)
	assert.Equal(t, "a.robot", a.File)
	assert.Equal(t, "run-1", a.RunID)
	assert.Len(t, a.Problems, 1)
	assert.Equal(t, "unknown-setting", a.Problems[0].Code)

	assert.Len(t, decode(t, pub.sent[1].payload).Problems, 2)

	c := decode(t, pub.sent[2].payload)
	assert.Equal(t, "c.robot", c.File)
	assert.NotNil(t, c.Problems)
	assert.Empty(t, c.Problems)
	assert.Contains(t, pub.sent[2].payload, `"problems":[]`)
}

func TestFlush_KeepsUnsentFilesOnError(t *testing.T) {
	pub := &fakePublisher{fail: map[int]error{1: errors.New("connection reset")}}
	f := New(pub)

	f.Report(problemIn("a.robot"))
	f.Report(problemIn("b.robot"))

	err := f.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUBLISH rfl:problems")
	require.Len(t, pub.sent, 1)

	require.NoError(t, f.Flush(context.Background()))
	require.Len(t, pub.sent, 2)
	assert.Equal(t, "b.robot", decode(t, pub.sent[1].payload).File)
}

func TestFlush_EmptyIsNoop(t *testing.T) {
	pub := &fakePublisher{}
	require.NoError(t, New(pub).Flush(context.Background()))
	assert.Empty(t, pub.sent)
}

func TestFlush_UnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		ReadTimeout: 100 * time.Millisecond,
	})
	defer rdb.Close()

	f := New(rdb)
	f.Report(problemIn("a.robot"))
	err := f.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUBLISH")
}

func TestDial_UnreachableRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, _, err := Dial(ctx, "127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PING 127.0.0.1:1")
}
