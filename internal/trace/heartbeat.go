package trace

import (
	"context"
	"strconv"
	"time"
)

// Heartbeat periodically emits liveness events. Heartbeats without span ends
// point at a rule that hangs.
type Heartbeat struct {
	stop context.CancelFunc
	done chan struct{}
}

// StartHeartbeat emits a heartbeat every interval until Stop.
// It returns nil when tracing is off.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || tracer.Level() == LevelOff || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{stop: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for n := 1; ; n++ {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				tracer.Emit(&Event{
					Time:   now,
					Seq:    nextSeq(),
					Kind:   KindHeartbeat,
					Scope:  ScopeRun,
					Name:   "heartbeat",
					Detail: "#" + strconv.Itoa(n),
				})
			}
		}
	}()
	return h
}

// Stop ends the heartbeat goroutine and waits for it. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.stop()
	<-h.done
}
