package game

// Session is the client's view of one running game. All mutation goes through
// a Router; a Session obtained from Router.Snapshot is a detached copy.
type Session struct {
	started      bool
	currentPhase Phase
	players      *PlayerRegistry
	spectators   *SpectatorRegistry
}

// NewSession creates an unstarted session with no phase.
func NewSession() *Session {
	return &Session{
		currentPhase: NoPhase,
		players:      NewPlayerRegistry(),
		spectators:   NewSpectatorRegistry(),
	}
}

func (s *Session) Started() bool                  { return s.started }
func (s *Session) CurrentPhase() Phase            { return s.currentPhase }
func (s *Session) Players() *PlayerRegistry       { return s.players }
func (s *Session) Spectators() *SpectatorRegistry { return s.spectators }

// Copy creates a deep copy of the session.
func (s *Session) Copy() *Session {
	clone := &Session{
		started:      s.started,
		currentPhase: s.currentPhase,
		players:      NewPlayerRegistry(),
		spectators:   NewSpectatorRegistry(),
	}
	for _, p := range s.players.All() {
		_ = clone.players.Add(p.Copy())
	}
	for _, name := range s.spectators.Names() {
		clone.spectators.Add(name)
	}
	return clone
}
