package device

import "sync"

// notifier is a level-triggered broadcast of "something about this
// device's view changed", built on the close-and-replace channel
// idiom rather than a buffered channel, so that any number of watchers
// can each wait for the next change without missing one or blocking
// the notifier.
type notifier struct {
	mu sync.Mutex
	ch chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{})}
}

// watch returns the channel that closes at the next notify call made
// after watch returns. Callers loop: wait on the channel, then call
// watch again to get the next one.
func (n *notifier) watch() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}

func (n *notifier) notify() {
	n.mu.Lock()
	close(n.ch)
	n.ch = make(chan struct{})
	n.mu.Unlock()
}
