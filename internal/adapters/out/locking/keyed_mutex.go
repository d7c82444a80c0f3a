// Package locking provides the in-process per-invoice lock used when the
// service runs as a single replica.
package locking

import (
	"context"
	"sync"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
)

// KeyedMutex implements ports.InvoiceLocker with one buffered channel per
// invoice. Entries are dropped once no caller holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[kernel.UUID]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[kernel.UUID]*slot)}
}

// Lock blocks until the invoice's lock is free or ctx is done.
func (m *KeyedMutex) Lock(ctx context.Context, invoiceID kernel.UUID) (func(), error) {
	if err := invoiceID.Validate(); err != nil {
		return nil, err
	}

	s := m.acquireSlot(invoiceID)
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		m.releaseSlot(invoiceID, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			m.releaseSlot(invoiceID, s)
		})
	}, nil
}

// Len is the number of invoices currently locked or waited on.
func (m *KeyedMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

func (m *KeyedMutex) acquireSlot(id kernel.UUID) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[id] = s
	}
	s.refs++
	return s
}

func (m *KeyedMutex) releaseSlot(id kernel.UUID, s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(m.slots, id)
	}
}
