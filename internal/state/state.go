package state

import "sync"

type Phase int

const (
	BOOTING Phase = iota
	READY
	COLORING
	EXPORTING
	ERROR
)

func (p Phase) String() string {
	switch p {
	case BOOTING:
		return "booting"
	case READY:
		return "ready"
	case COLORING:
		return "coloring"
	case EXPORTING:
		return "exporting"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

type PageInfo struct {
	Name   string
	Width  int
	Height int
}

type SessionInfo struct {
	SelectedName string
	SelectedHex  string
	Fills        int
	Version      uint64
	Err          string
}

type ExportInfo struct {
	Target string
	Status string
	Err    string
}

type NetworkInfo struct {
	IP  string
	URL string
}

type State struct {
	Phase   Phase
	Page    PageInfo
	Session SessionInfo
	Export  ExportInfo
	Network NetworkInfo
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: BOOTING}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

func (store *Store) UpdatePage(page PageInfo) {
	store.mu.Lock()
	store.state.Page = page
	store.mu.Unlock()
}

func (store *Store) UpdateSession(session SessionInfo) {
	store.mu.Lock()
	store.state.Session = session
	store.mu.Unlock()
}

func (store *Store) UpdateExport(export ExportInfo) {
	store.mu.Lock()
	store.state.Export = export
	store.mu.Unlock()
}

func (store *Store) UpdateNetwork(network NetworkInfo) {
	store.mu.Lock()
	store.state.Network = network
	store.mu.Unlock()
}
