package team

import "slices"

func (m *Manager) Current() *Team {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyTeam(m.current)
}

func (m *Manager) Teams() []Team {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.teams)
}

func (m *Manager) ViewMode() ViewMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// CurrentSectID reads the in-memory selection only.
func (m *Manager) CurrentSectID() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0, false
	}
	return m.current.SectID, true
}

func (m *Manager) CurrentCharID() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0, false
	}
	return m.current.CharID, true
}

func (m *Manager) IsGlobalMode() bool {
	return m.ViewMode() == ViewGlobal
}

// TotalUnreadCount sums unread counters over every loaded team, whatever
// the view mode.
func (m *Manager) TotalUnreadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.teams {
		n += t.UnreadCount
	}
	return n
}

func (m *Manager) TotalTodoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.teams {
		n += t.TodoTaskCount
	}
	return n
}

// Snapshot returns the current observable values.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Subscribe delivers the latest State on the returned channel, starting with
// the present one. A slow reader only sees the newest state; intermediate
// ones are dropped. cancel closes the channel.
func (m *Manager) Subscribe() (<-chan State, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan State, 1)
	ch <- m.stateLocked()
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (m *Manager) stateLocked() State {
	return State{
		Current:  copyTeam(m.current),
		Teams:    slices.Clone(m.teams),
		ViewMode: m.mode,
	}
}

// publishLocked replaces whatever is pending on each subscriber channel
// with the present state. Callers hold m.mu.
func (m *Manager) publishLocked() {
	st := m.stateLocked()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

func copyTeam(t *Team) *Team {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
