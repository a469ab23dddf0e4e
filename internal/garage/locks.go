package garage

import "sync"

// vehicleLocks serializes updates per vehicle so that concurrent record
// writes do not overwrite each other.
type vehicleLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newVehicleLocks() *vehicleLocks {
	return &vehicleLocks{locks: make(map[string]*lockEntry)}
}

// Lock blocks until the vehicle is free and returns the unlock function.
func (l *vehicleLocks) Lock(vehicleID string) func() {
	l.mu.Lock()
	e, ok := l.locks[vehicleID]
	if !ok {
		e = &lockEntry{}
		l.locks[vehicleID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, vehicleID)
		}
		l.mu.Unlock()
	}
}
