package engine

// Registry maps each display name to the one connection holding it.
type Registry struct {
	owners map[string]ConnID
	names  map[ConnID]string
}

func NewRegistry() *Registry {
	return &Registry{
		owners: map[string]ConnID{},
		names:  map[ConnID]string{},
	}
}

// Claim hands name to conn. If another connection held it, that connection
// loses the name and is returned as evicted. Any other name conn held before
// is released.
func (r *Registry) Claim(conn ConnID, name string) (evicted ConnID, ok bool) {
	if prev, held := r.owners[name]; held && prev != conn {
		evicted, ok = prev, true
		delete(r.names, prev)
	}
	if old, had := r.names[conn]; had && old != name {
		r.Release(conn)
	}
	r.owners[name] = conn
	r.names[conn] = name
	return evicted, ok
}

// Release drops conn's name. The name entry is only removed while it still
// points at conn, so a newer holder keeps it after a takeover.
func (r *Registry) Release(conn ConnID) {
	name, ok := r.names[conn]
	if !ok {
		return
	}
	delete(r.names, conn)
	if r.owners[name] == conn {
		delete(r.owners, name)
	}
}

func (r *Registry) NameOf(conn ConnID) (string, bool) {
	name, ok := r.names[conn]
	return name, ok
}

func (r *Registry) Owner(name string) (ConnID, bool) {
	conn, ok := r.owners[name]
	return conn, ok
}

func (r *Registry) Len() int { return len(r.owners) }

func (r *Registry) Reset() {
	clear(r.owners)
	clear(r.names)
}
