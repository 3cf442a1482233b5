package detectors

import "sync"

// Store — состояние всех детекторов, ключ — id инстанса. Живёт от старта
// процесса до выхода; потеря кулдаунов на рестарте допустима.
type Store interface {
	Get(id string) State
	Set(id string, st State)
}

type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]State)}
}

func (s *MemoryStore) Get(id string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[id]
}

func (s *MemoryStore) Set(id string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = st
}
