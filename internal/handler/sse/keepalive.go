package sse

import (
	"log/slog"
	"sync"
	"time"
)

// KeepAliveWriter abstracts the mechanism for writing keep-alive messages
type KeepAliveWriter interface {
	WriteKeepAlive() error
}

// KeepAlive writes keep-alive comments on a fixed interval until stopped or
// until a write fails (connection dropped).
type KeepAlive struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartKeepAlive starts the ticker. A non-positive interval returns a
// KeepAlive that never writes.
func StartKeepAlive(interval time.Duration, writer KeepAliveWriter, logger *slog.Logger) *KeepAlive {
	k := &KeepAlive{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	if interval <= 0 {
		close(k.done)
		return k
	}

	go func() {
		defer close(k.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := writer.WriteKeepAlive(); err != nil {
					logger.Debug("keep-alive write failed, stopping", "error", err)
					return
				}
			case <-k.stop:
				return
			}
		}
	}()

	return k
}

// Stop terminates the ticker and waits for it to exit.
// Safe to call multiple times.
func (k *KeepAlive) Stop() {
	k.stopOnce.Do(func() { close(k.stop) })
	<-k.done
}
