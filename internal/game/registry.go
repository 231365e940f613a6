package game

// PlayerRegistry holds the seated players of a session keyed by id.
// Iteration follows join order.
type PlayerRegistry struct {
	byID  map[int]*Player
	order []int
}

// NewPlayerRegistry creates an empty registry
func NewPlayerRegistry() *PlayerRegistry {
	return &PlayerRegistry{byID: make(map[int]*Player)}
}

// Add registers p. Ids are unique for the lifetime of the session
func (r *PlayerRegistry) Add(p *Player) error {
	if _, exists := r.byID[p.ID()]; exists {
		return errDuplicateRef("player", p.ID())
	}
	r.byID[p.ID()] = p
	r.order = append(r.order, p.ID())
	return nil
}

// Find looks up a player by id
func (r *PlayerRegistry) Find(id int) (*Player, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// Len returns the number of registered players
func (r *PlayerRegistry) Len() int {
	return len(r.order)
}

// All returns the players in join order
func (r *PlayerRegistry) All() []*Player {
	result := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.byID[id])
	}
	return result
}

// SetActive makes id the only active player. It returns false and changes
// nothing when id is not registered.
func (r *PlayerRegistry) SetActive(id int) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	for _, p := range r.byID {
		p.setActive(p.ID() == id)
	}
	return true
}

// Active returns the active player, if any
func (r *PlayerRegistry) Active() (*Player, bool) {
	for _, id := range r.order {
		if p := r.byID[id]; p.Active() {
			return p, true
		}
	}
	return nil, false
}

// Local returns the player controlled by this client, if known
func (r *PlayerRegistry) Local() (*Player, bool) {
	for _, id := range r.order {
		if p := r.byID[id]; p.Local() {
			return p, true
		}
	}
	return nil, false
}

// SpectatorRegistry holds spectator display names in join order
type SpectatorRegistry struct {
	names []string
}

// NewSpectatorRegistry creates an empty registry
func NewSpectatorRegistry() *SpectatorRegistry {
	return &SpectatorRegistry{}
}

// Add registers name. Returns false if it is already present
func (r *SpectatorRegistry) Add(name string) bool {
	if r.Contains(name) {
		return false
	}
	r.names = append(r.names, name)
	return true
}

// Remove drops name. Returns false if it was not present
func (r *SpectatorRegistry) Remove(name string) bool {
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether name is a spectator
func (r *SpectatorRegistry) Contains(name string) bool {
	for _, n := range r.names {
		if n == name {
			return true
		}
	}
	return false
}

// Len returns the number of spectators
func (r *SpectatorRegistry) Len() int {
	return len(r.names)
}

// Names returns a copy of the spectator names in join order
func (r *SpectatorRegistry) Names() []string {
	return append([]string(nil), r.names...)
}
