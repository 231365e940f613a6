package counters

import "sort"

// Counter is a named, coloured counter owned by a player (life, poison, mana).
// Unlike card counters these are not clamped; a life total may go negative.
type Counter struct {
	ID    int
	Name  string
	Color string
	Value int
}

// Copy creates a copy of the counter
func (c *Counter) Copy() *Counter {
	return &Counter{
		ID:    c.ID,
		Name:  c.Name,
		Color: c.Color,
		Value: c.Value,
	}
}

// Pool manages the counters of one player, keyed by server-assigned id
type Pool struct {
	counters map[int]*Counter
}

// NewPool creates an empty pool
func NewPool() *Pool {
	return &Pool{
		counters: make(map[int]*Counter),
	}
}

// Add registers a counter. An existing counter with the same id is replaced,
// so a repeated add_counter event converges on the last value.
func (p *Pool) Add(counter *Counter) {
	if counter == nil {
		return
	}
	p.counters[counter.ID] = counter.Copy()
}

// Set changes the value of counter id.
// Returns false if no such counter exists.
func (p *Pool) Set(id, value int) bool {
	counter, ok := p.counters[id]
	if !ok {
		return false
	}
	counter.Value = value
	return true
}

// Remove deletes counter id. Returns false if no such counter exists
func (p *Pool) Remove(id int) bool {
	if _, ok := p.counters[id]; !ok {
		return false
	}
	delete(p.counters, id)
	return true
}

// Get returns a copy of counter id
func (p *Pool) Get(id int) (*Counter, bool) {
	counter, ok := p.counters[id]
	if !ok {
		return nil, false
	}
	return counter.Copy(), true
}

// FindByName returns a copy of the first counter with the given name
func (p *Pool) FindByName(name string) (*Counter, bool) {
	for _, counter := range p.All() {
		if counter.Name == name {
			return counter, true
		}
	}
	return nil, false
}

// Len returns the number of counters in the pool
func (p *Pool) Len() int {
	return len(p.counters)
}

// Clear removes every counter
func (p *Pool) Clear() {
	p.counters = make(map[int]*Counter)
}

// All returns copies of every counter ordered by id
func (p *Pool) All() []*Counter {
	result := make([]*Counter, 0, len(p.counters))
	for _, counter := range p.counters {
		result = append(result, counter.Copy())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Copy creates a deep copy of the pool
func (p *Pool) Copy() *Pool {
	clone := NewPool()
	for id, counter := range p.counters {
		clone.counters[id] = counter.Copy()
	}
	return clone
}
