package history

// BeginGroup starts a snapshot group. Only the first Record inside the group
// captures state; the entry is labelled with name.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}

	h.grouping = true
	h.groupName = name
	h.groupCapture = false
}

// EndGroup finishes a snapshot group.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupCapture = false
}

// IsGrouping returns true if currently in a group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// GroupScope provides a convenient way to group mutations using defer.
// Usage:
//
//	func runScript(h *History) {
//	    defer h.GroupScope("script").End()
//	    // ... multiple edits ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Transaction executes fn within a grouped undo context. The group is closed
// whether or not fn fails; mutations made before the failure stay undoable
// as one entry.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)
	defer h.EndGroup()
	return fn()
}
