package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/normen/obs-hui/gohui"
	"go.uber.org/zap"
)

// Host is the DAW end of any number of HUI connections. It pings every bank
// once per interval so that the surfaces know the host is alive.
type Host struct {
	logger   *zap.Logger
	interval time.Duration

	mu    sync.RWMutex
	banks map[uuid.UUID]*Bank
	order []uuid.UUID

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewHost starts a host and its ping ticker.
func NewHost(opts ...HostOption) *Host {
	o := hostOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.pingInterval <= 0 {
		o.pingInterval = DefaultPingInterval
	}
	h := &Host{
		logger:   o.logger,
		interval: o.pingInterval,
		banks:    make(map[uuid.UUID]*Bank),
		done:     make(chan struct{}),
	}
	h.wg.Add(1)
	go h.pingLoop()
	return h
}

func (h *Host) pingLoop() {
	defer h.wg.Done()
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			h.ping()
		case <-h.done:
			return
		}
	}
}

func (h *Host) ping() {
	ping := gohui.PingMessage(gohui.RoleSurface)
	for _, b := range h.Banks() {
		if err := b.sendRaw(ping); err != nil {
			h.logger.Debug("ping failed", zap.Stringer("bank", b.ID()), zap.Error(err))
		}
	}
}

// AddBank creates a host role bank sending to send and adds it to the host.
func (h *Host) AddBank(send Sender, opts ...Option) *Bank {
	opts = append([]Option{WithLogger(h.logger)}, opts...)
	b := NewBank(gohui.RoleHost, send, opts...)

	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.banks[b.ID()]; ok {
		old.Close()
	} else {
		h.order = append(h.order, b.ID())
	}
	h.banks[b.ID()] = b
	h.logger.Info("bank added", zap.Stringer("bank", b.ID()))
	return b
}

// RemoveBank closes and removes a bank. It reports whether the bank existed.
func (h *Host) RemoveBank(id uuid.UUID) bool {
	h.mu.Lock()
	b, ok := h.banks[id]
	if ok {
		delete(h.banks, id)
		for i, o := range h.order {
			if o == id {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
	}
	h.mu.Unlock()
	if ok {
		b.Close()
		h.logger.Info("bank removed", zap.Stringer("bank", id))
	}
	return ok
}

// Bank returns the bank with the given id.
func (h *Host) Bank(id uuid.UUID) (*Bank, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.banks[id]
	return b, ok
}

// Banks returns all banks in the order they were added.
func (h *Host) Banks() []*Bank {
	h.mu.RLock()
	defer h.mu.RUnlock()
	banks := make([]*Bank, 0, len(h.order))
	for _, id := range h.order {
		banks = append(banks, h.banks[id])
	}
	return banks
}

// Close stops the ping and closes all banks.
func (h *Host) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
		h.mu.Lock()
		for _, b := range h.banks {
			b.Close()
		}
		h.banks = make(map[uuid.UUID]*Bank)
		h.order = nil
		h.mu.Unlock()
	})
	return nil
}
