package tui

import "sync"

// maxTabContent caps the message ring kept per tab; older entries are evicted.
const maxTabContent = 100

// Message is one displayed line with its severity.
type Message struct {
	Severity Severity
	Text     string
}

// Tab is the display model for one supervised command.
type Tab struct {
	Title   string
	Content []Message
}

func newTab(title string) Tab {
	return Tab{Title: title}
}

func (t *Tab) addMessage(sev Severity, text string) {
	t.Content = append(t.Content, Message{Severity: sev, Text: text})
	if len(t.Content) > maxTabContent {
		t.Content = t.Content[len(t.Content)-maxTabContent:]
	}
}

// State is the dashboard model. One consumer goroutine folds pipeline events
// into it under the write lock; renderers take read-only snapshots on their
// tick. State never feeds back into supervision decisions.
type State struct {
	mu    sync.RWMutex
	tabs  []Tab
	index int
	wake  chan struct{}
}

func NewState() *State { return &State{wake: make(chan struct{}, 1)} }

// Wake signals once per burst of applied events so renderers can redraw
// before their next tick.
func (s *State) Wake() <-chan struct{} { return s.wake }

// Snapshot is a read-only copy handed to renderers and the status API.
type Snapshot struct {
	Tabs  []Tab
	Index int
}

// Snapshot copies the current tabs and selection under the read lock.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tabs := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		tabs[i] = Tab{Title: t.Title, Content: append([]Message(nil), t.Content...)}
	}
	return Snapshot{Tabs: tabs, Index: s.index}
}

// Run consumes the pipeline until it is closed, folding every event into the
// state. It is the only writer.
func (s *State) Run(events <-chan Event) {
	for ev := range events {
		s.Apply(ev)
	}
}

// Apply folds a single event under the write lock.
func (s *State) Apply(ev Event) {
	defer s.notify()
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev := ev.(type) {
	case TabListChanged:
		s.tabs = make([]Tab, len(ev.Titles))
		for i, title := range ev.Titles {
			s.tabs[i] = newTab(title)
		}
		s.index = 0
	case CommandStarted:
		s.addMessage(ev.ID, SeveritySystem, "Command Started")
	case CommandEnded:
		s.addMessage(ev.ID, SeveritySystem, "Command ended")
	case NewStdoutMessage:
		s.addMessage(ev.ID, SeverityInfo, ev.Line)
	case NewStderrMessage:
		s.addMessage(ev.ID, SeverityError, ev.Line)
	case System:
		s.addMessage(ev.ID, SeveritySystem, ev.Text)
	case Input:
		switch ev.Key {
		case "right", "tab":
			s.next()
		case "left", "shift+tab":
			s.previous()
		}
	}
}

func (s *State) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *State) addMessage(id int, sev Severity, text string) {
	if id < 0 || id >= len(s.tabs) {
		return
	}
	s.tabs[id].addMessage(sev, text)
}

func (s *State) next() {
	if len(s.tabs) == 0 {
		return
	}
	s.index = (s.index + 1) % len(s.tabs)
}

func (s *State) previous() {
	if len(s.tabs) == 0 {
		return
	}
	if s.index > 0 {
		s.index--
	} else {
		s.index = len(s.tabs) - 1
	}
}
