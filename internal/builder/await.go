package builder

import (
	"sync"
	"time"
)

// waitTable tracks the modal and select-menu forms currently open for one
// session. Each wait carries its own deadline, shorter than the session
// window; an expired or canceled wait resolves to a typed failure and the
// draft stays untouched.
type waitTable struct {
	mu    sync.Mutex
	waits map[string]*pendingWait
}

type pendingWait struct {
	action   Action
	payload  string
	timer    *time.Timer
	openedAt time.Time
}

func newWaitTable() *waitTable {
	return &waitTable{waits: make(map[string]*pendingWait)}
}

// Open registers a pending sub-editor. The payload is opaque context the
// claimer gets back, such as a template name mid-confirmation. When the
// timeout elapses before the wait is claimed, onExpire runs once and the
// wait is discarded.
func (t *waitTable) Open(id string, action Action, payload string, timeout time.Duration, onExpire func(Action)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	wait := &pendingWait{action: action, payload: payload, openedAt: time.Now()}
	wait.timer = time.AfterFunc(timeout, func() {
		t.mu.Lock()
		current, ok := t.waits[id]
		if ok && current == wait {
			delete(t.waits, id)
		}
		t.mu.Unlock()
		if ok && current == wait && onExpire != nil {
			onExpire(action)
		}
	})
	t.waits[id] = wait
}

// Claim resolves a pending wait. A claim against an expired, canceled, or
// never-opened ID fails with ErrTimeout: from the user's side all three are
// the same stale form.
func (t *waitTable) Claim(id string) (Action, string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	wait, ok := t.waits[id]
	if !ok {
		return ActionUnknown, "", ErrTimeout
	}
	delete(t.waits, id)
	wait.timer.Stop()
	return wait.action, wait.payload, nil
}

func (t *waitTable) Cancel(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if wait, ok := t.waits[id]; ok {
		wait.timer.Stop()
		delete(t.waits, id)
	}
}

// CancelAll silently drops every pending wait. Used on session teardown so
// a superseded session can never mutate the new one's draft.
func (t *waitTable) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, wait := range t.waits {
		wait.timer.Stop()
		delete(t.waits, id)
	}
}

func (t *waitTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waits)
}
