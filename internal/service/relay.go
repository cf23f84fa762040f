package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialhub/internal/metrics"
	"github.com/d60-Lab/socialhub/internal/repository"
	"github.com/d60-Lab/socialhub/pkg/events"
	"github.com/d60-Lab/socialhub/pkg/logger"
)

// OutboxRelay 轮询 outbox，把已提交的领域事件投递到 Sink
type OutboxRelay struct {
	outbox       repository.OutboxRepository
	sink         events.Sink
	workers      int
	batchSize    int
	pollInterval time.Duration
	lease        time.Duration
	now          func() time.Time
}

// bookkeepingTimeout 停机时落地投递结果的最长等待
const bookkeepingTimeout = 5 * time.Second

func NewOutboxRelay(outbox repository.OutboxRepository, sink events.Sink, workers, batchSize int, pollInterval, lease time.Duration) *OutboxRelay {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if lease <= 0 {
		lease = 5 * time.Minute
	}
	return &OutboxRelay{
		outbox:       outbox,
		sink:         sink,
		workers:      workers,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		lease:        lease,
		now:          time.Now,
	}
}

// Start 启动若干 worker；返回的停止函数等待所有 worker 退出或 ctx 到期
func (r *OutboxRelay) Start() func(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.loop(ctx)
		}()
	}
	return func(stopCtx context.Context) error {
		cancel()
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-stopCtx.Done():
			return stopCtx.Err()
		}
	}
}

func (r *OutboxRelay) loop(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("outbox relay iteration failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce 领取一批事件逐条投递，返回成功投递的条数。
// 投递失败的事件放回 pending 等待下一轮；ctx 取消后剩余未投递的事件原样放回。
// 投递结果的落地不受 ctx 取消影响，已发出的事件不会停留在 processing。
func (r *OutboxRelay) ProcessOnce(ctx context.Context) (int, error) {
	batch, err := r.outbox.ClaimPending(ctx, r.batchSize, r.now(), r.lease)
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}

	bookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()

	done := make([]string, 0, len(batch))
	var skipped []string
	for _, e := range batch {
		if ctx.Err() != nil {
			skipped = append(skipped, e.ID)
			continue
		}
		msg := events.Message{Key: e.AggregateID, Type: e.Type, Payload: []byte(e.Payload), Time: e.CreatedAt}
		if err := r.sink.Publish(ctx, msg); err != nil {
			metrics.OutboxFailed.Inc()
			logger.Warn("outbox publish failed",
				zap.String("event", e.ID),
				zap.String("type", e.Type),
				zap.Int("attempts", e.Attempts+1),
				zap.Error(err),
			)
			if rerr := r.outbox.Release(bookCtx, e.ID); rerr != nil {
				logger.Error("outbox release failed", zap.String("event", e.ID), zap.Error(rerr))
			}
			continue
		}
		done = append(done, e.ID)
	}

	if err := r.outbox.Unclaim(bookCtx, skipped); err != nil {
		logger.Error("outbox unclaim failed", zap.Strings("events", skipped), zap.Error(err))
	}
	if err := r.outbox.MarkDone(bookCtx, done, r.now()); err != nil {
		logger.Error("outbox mark done failed", zap.Strings("events", done), zap.Error(err))
		return 0, err
	}
	metrics.OutboxPublished.Add(float64(len(done)))
	return len(done), nil
}
