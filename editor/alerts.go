package editor

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

type (
	// Alerts is the feedback channel of the session: every recoverable
	// failure and every notable success becomes an alert, shown by the front
	// end until its duration runs out.
	Alerts struct {
		alerts          []Alert
		defaultDuration time.Duration
	}

	Alert struct {
		Name     string
		Priority AlertPriority
		Message  string
		Duration time.Duration
	}

	AlertPriority int
)

const (
	None AlertPriority = iota
	Info
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

func (p AlertPriority) String() string {
	switch p {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "none"
}

// Add shows a one-off alert. It gets a random name so it never replaces
// another alert.
func (m *Alerts) Add(message string, priority AlertPriority) {
	m.AddNamed(uuid.NewString(), message, priority)
}

// AddNamed shows an alert, replacing any earlier alert with the same name.
func (m *Alerts) AddNamed(name, message string, priority AlertPriority) {
	d := m.defaultDuration
	if d <= 0 {
		d = defaultAlertDuration
	}
	m.AddAlert(Alert{Name: name, Priority: priority, Message: message, Duration: d})
}

func (m *Alerts) AddAlert(a Alert) {
	m.ClearNamed(a.Name)
	m.alerts = append(m.alerts, a)
}

func (m *Alerts) ClearNamed(name string) {
	m.alerts = slices.DeleteFunc(m.alerts, func(a Alert) bool { return a.Name == name })
}

// Update advances time by d and drops the alerts that have expired. It
// reports whether any alert is still showing.
func (m *Alerts) Update(d time.Duration) bool {
	for i := range m.alerts {
		m.alerts[i].Duration -= d
	}
	m.alerts = slices.DeleteFunc(m.alerts, func(a Alert) bool { return a.Duration <= 0 })
	return len(m.alerts) > 0
}

func (m *Alerts) Len() int { return len(m.alerts) }

// Iterate yields the showing alerts, highest priority first and oldest first
// within a priority.
func (m *Alerts) Iterate(yield func(int, Alert) bool) {
	sorted := slices.Clone(m.alerts)
	slices.SortStableFunc(sorted, func(a, b Alert) int { return int(b.Priority) - int(a.Priority) })
	for i, a := range sorted {
		if !yield(i, a) {
			return
		}
	}
}

// Latest returns the most recently added alert that is still showing.
func (m *Alerts) Latest() (Alert, bool) {
	if len(m.alerts) == 0 {
		return Alert{}, false
	}
	return m.alerts[len(m.alerts)-1], true
}
