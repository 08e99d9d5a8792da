package state

import (
	"sync"
	"testing"
)

func TestStore(t *testing.T) {
	store := NewStore()
	if got := store.Snapshot().Phase; got != BOOTING {
		t.Fatalf("initial phase = %v, want booting", got)
	}

	store.SetPhase(COLORING)
	store.UpdatePage(PageInfo{Name: "pharaoh", Width: 800, Height: 600})
	store.UpdateSession(SessionInfo{SelectedHex: "#FFD700", Fills: 3})

	snap := store.Snapshot()
	if snap.Phase != COLORING || snap.Page.Width != 800 || snap.Session.Fills != 3 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Phase.String() != "coloring" {
		t.Errorf("phase string = %q", snap.Phase.String())
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			store.UpdateSession(SessionInfo{Fills: n})
		}(i)
		go func() {
			defer wg.Done()
			_ = store.Snapshot()
		}()
	}
	wg.Wait()
}
