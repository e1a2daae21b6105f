package engine

// Fingerprint-keyed map whose entries expire after a number of searches.
// An entry stored for a search of depth D survives D+1 calls to age().
type lifetimeCache[V any] struct {
	entries map[string]*lifetimeEntryT[V]
}

type lifetimeEntryT[V any] struct {
	value    V
	lifetime int
}

func newLifetimeCache[V any]() lifetimeCache[V] {
	return lifetimeCache[V]{entries: make(map[string]*lifetimeEntryT[V])}
}

func (lc *lifetimeCache[V]) get(fingerprint string) (V, bool) {
	entry, ok := lc.entries[fingerprint]
	if !ok {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Overwrites any existing entry and resets its lifetime.
func (lc *lifetimeCache[V]) put(fingerprint string, value V, depthToGo int) {
	lc.entries[fingerprint] = &lifetimeEntryT[V]{value: value, lifetime: depthToGo + 1}
}

func (lc *lifetimeCache[V]) age() {
	for fingerprint, entry := range lc.entries {
		entry.lifetime--
		if entry.lifetime <= 0 {
			delete(lc.entries, fingerprint)
		}
	}
}

func (lc *lifetimeCache[V]) lifetime(fingerprint string) (int, bool) {
	entry, ok := lc.entries[fingerprint]
	if !ok {
		return 0, false
	}
	return entry.lifetime, true
}

func (lc *lifetimeCache[V]) len() int { return len(lc.entries) }

func (lc *lifetimeCache[V]) clear() {
	lc.entries = make(map[string]*lifetimeEntryT[V])
}
