package widget

import "github.com/ecomap/wastemap/internal/adapter"

// Subscribe returns a channel that receives a snapshot after every handled
// command, starting with the current one. A slow reader only sees the
// latest snapshot.
func (w *Widget) Subscribe() <-chan adapter.State {
	ch := make(chan adapter.State, 1)

	w.mu.Lock()
	defer w.mu.Unlock()
	ch <- w.state
	w.subs[ch] = ch
	return ch
}

// Unsubscribe stops delivery to ch and closes it.
func (w *Widget) Unsubscribe(ch <-chan adapter.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.subs[ch]; ok {
		delete(w.subs, ch)
		close(c)
	}
}

// publish runs on the event loop only.
func (w *Widget) publish(s adapter.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = s
	for _, ch := range w.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// replace the stale snapshot
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
