package session

import "context"

// Subscribe returns a channel that receives every status transition, including
// logouts caused by a failed background refresh. A slow reader only sees the
// latest status. Call the returned function to unsubscribe.
func (m *Manager) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 1)

	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subsMu.Unlock()

	var once bool
	return ch, func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		if once {
			return
		}
		once = true
		delete(m.subs, id)
		close(ch)
	}
}

// publish delivers status to every subscriber without blocking. m.mu is held by
// the caller, so deliveries keep transition order.
func (m *Manager) publish(status Status) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- status:
			continue
		default:
		}
		// drop the stale status and keep the latest
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- status:
		default:
		}
	}
}

// Ready is closed once Bootstrap has resolved the session.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// WaitReady blocks until Bootstrap has resolved the session or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) markReady() {
	m.readyOnce.Do(func() {
		close(m.ready)
	})
}
