package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialhub/internal/model"
	"github.com/d60-Lab/socialhub/pkg/events"
)

type fakeSink struct {
	mu     sync.Mutex
	got    []events.Message
	failOn string
}

func (f *fakeSink) Publish(_ context.Context, msgs ...events.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		if m.Type == f.failOn {
			return errors.New("broker unavailable")
		}
		f.got = append(f.got, m)
	}
	return nil
}

func (f *fakeSink) Close() error { return nil }

func (f *fakeSink) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.got))
	for i, m := range f.got {
		out[i] = m.Type
	}
	return out
}

func TestRelayPublishesAndRetries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "Ann")
	p, err := env.posts.CreatePost(ctx, u.ID, "hello")
	require.NoError(t, err)
	_, err = env.likes.Toggle(ctx, LikePost, p.ID, u.ID)
	require.NoError(t, err)

	sink := &fakeSink{failOn: EventLikeToggled}
	relay := NewOutboxRelay(env.store.Outbox, sink, 1, 10, time.Hour, time.Minute)

	n, err := relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{EventPostCreated}, sink.types())
	assert.Equal(t, p.ID, sink.got[0].Key)

	var failed model.OutboxEvent
	require.NoError(t, env.db.Where("type = ?", EventLikeToggled).First(&failed).Error)
	assert.Equal(t, model.OutboxPending, failed.Status)
	assert.Equal(t, 1, failed.Attempts)

	sink.failOn = ""
	n, err = relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{EventPostCreated, EventLikeToggled}, sink.types())

	pending, err := env.store.Outbox.CountByStatus(ctx, model.OutboxPending)
	require.NoError(t, err)
	assert.Zero(t, pending)
	done, err := env.store.Outbox.CountByStatus(ctx, model.OutboxDone)
	require.NoError(t, err)
	assert.EqualValues(t, 2, done)
}

func TestRelayStartStop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "Ann")
	_, err := env.posts.CreatePost(ctx, u.ID, "hello")
	require.NoError(t, err)

	sink := &fakeSink{}
	stop := NewOutboxRelay(env.store.Outbox, sink, 2, 10, 10*time.Millisecond, time.Minute).Start()
	assert.Eventually(t, func() bool { return len(sink.types()) == 1 }, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, stop(stopCtx))
}

// cancelSink 投递第一条后取消 relay 的 ctx，模拟停机发生在批次中途
type cancelSink struct {
	fakeSink
	cancel context.CancelFunc
}

func (c *cancelSink) Publish(ctx context.Context, msgs ...events.Message) error {
	err := c.fakeSink.Publish(ctx, msgs...)
	c.cancel()
	return err
}

func TestRelayShutdownMidBatchKeepsEventsDeliverable(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "Ann")
	p, err := env.posts.CreatePost(context.Background(), u.ID, "hello")
	require.NoError(t, err)
	_, err = env.likes.Toggle(context.Background(), LikePost, p.ID, u.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	sink := &cancelSink{cancel: cancel}
	relay := NewOutboxRelay(env.store.Outbox, sink, 1, 10, time.Hour, time.Minute)

	n, err := relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{EventPostCreated}, sink.types())

	// 已投递的落地为 done，未尝试的回到 pending 且不计尝试次数
	processing, err := env.store.Outbox.CountByStatus(context.Background(), model.OutboxProcessing)
	require.NoError(t, err)
	assert.Zero(t, processing)
	var created, toggled model.OutboxEvent
	require.NoError(t, env.db.Where("type = ?", EventPostCreated).First(&created).Error)
	assert.Equal(t, model.OutboxDone, created.Status)
	require.NoError(t, env.db.Where("type = ?", EventLikeToggled).First(&toggled).Error)
	assert.Equal(t, model.OutboxPending, toggled.Status)
	assert.Zero(t, toggled.Attempts)

	next := &fakeSink{}
	n, err = NewOutboxRelay(env.store.Outbox, next, 1, 10, time.Hour, time.Minute).ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{EventLikeToggled}, next.types())
}

func TestRelayReclaimsExpiredLease(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "Ann")
	_, err := env.posts.CreatePost(ctx, u.ID, "hello")
	require.NoError(t, err)

	// 上一个进程领取后崩溃
	start := time.Now()
	_, err = env.store.Outbox.ClaimPending(ctx, 10, start, time.Minute)
	require.NoError(t, err)

	sink := &fakeSink{}
	relay := NewOutboxRelay(env.store.Outbox, sink, 1, 10, time.Hour, time.Minute)
	relay.now = func() time.Time { return start.Add(30 * time.Second) }
	n, err := relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "lease still held")

	relay.now = func() time.Time { return start.Add(2 * time.Minute) }
	n, err = relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{EventPostCreated}, sink.types())
}
