package game

import (
	"fmt"
	"sync"
)

// Registry manages game registration and lookup by command.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Game
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Game)}
}

// Register adds a game, replacing any previous game with the same command.
func (r *Registry) Register(g Game) error {
	if g == nil {
		return fmt.Errorf("cannot register nil game")
	}
	if g.Command() == "" {
		return fmt.Errorf("game command cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[g.Command()] = g
	return nil
}

// Get retrieves a game by command.
func (r *Registry) Get(command string) (Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[command]
	return g, ok
}

// Commands returns all registered game commands.
func (r *Registry) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]string, 0, len(r.games))
	for cmd := range r.games {
		commands = append(commands, cmd)
	}
	return commands
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
