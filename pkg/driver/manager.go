package driver

import (
	"sort"
	"sync"
)

// FilterFn is being used to decide if a driver should be included in the
// query result.
type FilterFn func(Driver) bool

// FilterVideoRecorder returns a filter function to get video recorders
func FilterVideoRecorder() FilterFn {
	return func(d Driver) bool {
		_, ok := d.(VideoRecorder)
		return ok
	}
}

// FilterDeviceType returns a filter function to match specified DeviceType
func FilterDeviceType(t DeviceType) FilterFn {
	return func(d Driver) bool {
		return d.Info().DeviceType == t
	}
}

// FilterPosition returns a filter function to match specified Position
func FilterPosition(p Position) FilterFn {
	return func(d Driver) bool {
		return d.Info().Position == p
	}
}

// FilterID returns a filter function to match specified ID
func FilterID(id string) FilterFn {
	return func(d Driver) bool {
		return d.ID() == id
	}
}

// FilterAnd returns a filter function to take logical conjunction of given filters.
func FilterAnd(filters ...FilterFn) FilterFn {
	return func(d Driver) bool {
		for _, f := range filters {
			if !f(d) {
				return false
			}
		}
		return true
	}
}

// FilterNot returns a filter function to take logical inverse of given filter.
func FilterNot(filter FilterFn) FilterFn {
	return func(d Driver) bool {
		return !filter(d)
	}
}

// Manager is a singleton to manage multiple drivers and their states
type Manager struct {
	mu      sync.RWMutex
	drivers map[string]Driver
	order   []string
}

var manager = &Manager{
	drivers: make(map[string]Driver),
}

// GetManager gets manager singleton instance
func GetManager() *Manager {
	return manager
}

// Register registers adapter to be discoverable by Query
func (m *Manager) Register(a Adapter, info Info) error {
	d, err := wrapAdapter(a, info)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID()] = d
	m.order = append(m.order, d.ID())
	return nil
}

// Unregister removes the driver with id. Unknown ids are ignored.
func (m *Manager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drivers[id]; !ok {
		return
	}
	delete(m.drivers, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Query queries by using f to filter drivers, and simply return the filtered results.
// Drivers are returned by descending priority, then in registration order.
func (m *Manager) Query(f FilterFn) []Driver {
	m.mu.RLock()
	results := make([]Driver, 0, len(m.order))
	for _, id := range m.order {
		d := m.drivers[id]
		if f == nil || f(d) {
			results = append(results, d)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Info().Priority > results[j].Info().Priority
	})
	return results
}
