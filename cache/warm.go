package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/datagate/observe"
)

// ProducerFunc generates fresh data for a warmed key.
type ProducerFunc func(ctx context.Context) ([]byte, error)

// warmTask is one background refresh loop. Exactly one task may exist per
// key; starting a new one cancels its predecessor.
type warmTask struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Warm starts a background task that refreshes key every interval by calling
// producer and storing the result with the given TTL. A failed refresh is
// logged and retried after the configured cooldown rather than the interval,
// so a transient upstream failure does not leave the key stale for a whole
// cycle. If a warm task already exists for key it is cancelled first.
//
// The task runs until StopWarm(key) or Close is called.
func (m *Manager) Warm(key string, producer ProducerFunc, ttl, interval time.Duration) {
	m.warmMu.Lock()
	defer m.warmMu.Unlock()

	if m.closed {
		return
	}
	if prev, ok := m.warmTasks[key]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &warmTask{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.warmTasks[key] = task

	go m.runWarm(ctx, task, key, producer, ttl, interval)
}

// StopWarm cancels the warm task for key, if any.
func (m *Manager) StopWarm(key string) {
	m.warmMu.Lock()
	defer m.warmMu.Unlock()

	if task, ok := m.warmTasks[key]; ok {
		task.cancel()
		delete(m.warmTasks, key)
	}
}

// ActiveWarmTasks returns the number of running warm tasks.
func (m *Manager) ActiveWarmTasks() int {
	m.warmMu.Lock()
	defer m.warmMu.Unlock()
	return len(m.warmTasks)
}

// Close cancels all warm tasks and waits for them to exit, then closes the
// remote store if one is configured.
func (m *Manager) Close() error {
	m.warmMu.Lock()
	m.closed = true
	tasks := make([]*warmTask, 0, len(m.warmTasks))
	for key, task := range m.warmTasks {
		task.cancel()
		tasks = append(tasks, task)
		delete(m.warmTasks, key)
	}
	m.warmMu.Unlock()

	for _, task := range tasks {
		<-task.done
	}

	if m.remote != nil {
		return m.remote.Close()
	}
	return nil
}

func (m *Manager) runWarm(ctx context.Context, task *warmTask, key string, producer ProducerFunc, ttl, interval time.Duration) {
	defer close(task.done)

	logger := m.logger
	for {
		value, err := producer(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn(ctx, "cache warming failed",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "task_id", Value: task.id},
				observe.Field{Key: "error", Value: err.Error()})
			if !sleep(ctx, m.config.WarmRetryCooldown) {
				return
			}
			continue
		}

		if err := m.Set(ctx, key, value, ttl); err != nil {
			logger.Warn(ctx, "cache warming store failed",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "task_id", Value: task.id},
				observe.Field{Key: "error", Value: err.Error()})
		} else {
			m.warmHits.Add(1)
			logger.Debug(ctx, "cache warmed",
				observe.Field{Key: "key", Value: key},
				observe.Field{Key: "task_id", Value: task.id})
		}

		if !sleep(ctx, interval) {
			return
		}
	}
}

// sleep waits for d or until ctx is cancelled. Returns false on cancel.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
