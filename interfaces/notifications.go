package interfaces

import "sync"

// Severity of a user-visible notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a single message shown on the next page render.
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Notifications collects the messages produced while handling one request.
// The zero value is ready to use. A nil *Notifications discards messages.
type Notifications struct {
	mu    sync.Mutex
	items []Notification
}

func (n *Notifications) Add(severity Severity, message string) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, Notification{Severity: severity, Message: message})
}

func (n *Notifications) Success(message string) { n.Add(SeveritySuccess, message) }
func (n *Notifications) Error(message string)   { n.Add(SeverityError, message) }
func (n *Notifications) Info(message string)    { n.Add(SeverityInfo, message) }

// Extend appends a batch of previously collected notifications in order.
func (n *Notifications) Extend(items []Notification) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, items...)
}

// All returns a copy of the collected notifications in insertion order.
func (n *Notifications) All() []Notification {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.items))
	copy(out, n.items)
	return out
}

func (n *Notifications) Len() int {
	if n == nil {
		return 0
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}
