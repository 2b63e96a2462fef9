// pkg/engine/race_condition_test.go
package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-asteroids/pkg/entity"
)

// TestEngineRaceCondition drives ticks while actors join, steer and leave.
// Run with -race to catch unsynchronised access.
func TestEngineRaceCondition(t *testing.T) {
	cfg := testConfig()
	cfg.Fighters.Enabled = true
	cfg.Fighters.SpawnRarity = 1
	cfg.Rocks.SpawnIntervalMs = 20
	e := newTestEngine(t, cfg)

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("player-%d", i)
		e.RegisterActor(id)
		e.InitCraft(id, id)
	}

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				e.AdvanceOneTick()
				time.Sleep(time.Millisecond)
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			id := fmt.Sprintf("temp-%d", i)
			e.RegisterActor(id)
			e.InitCraft(id, "temp")
			e.SetIntent(id, Intent{Turn: 1, Thrust: true, Fire: true})
			e.UnregisterActor(id)
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.SetIntent("player-0", Intent{Fire: i%2 == 0, Thrust: true})
			snap := e.Snapshot()
			for _, v := range snap.Views {
				if len(v.Points) == 0 {
					t.Errorf("view %v has no points", v.Kind)
				}
			}
			time.Sleep(2 * time.Millisecond)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	close(done)
	wg.Wait()

	if got := e.Stats().Actors; got != 5 {
		t.Errorf("expected 5 actors after churn, got %d", got)
	}
}

// TestUnregisterBetweenTicks checks that removing an actor leaves no craft
// or intent behind.
func TestUnregisterBetweenTicks(t *testing.T) {
	e := newTestEngine(t, testConfig())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			e.AdvanceOneTick()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			id := fmt.Sprintf("a-%d", i)
			e.RegisterActor(id)
			e.InitCraft(id, "")
			e.UnregisterActor(id)
		}
	}()
	wg.Wait()

	stats := e.Stats()
	if stats.Actors != 0 || stats.LiveCraft != 0 {
		t.Errorf("expected empty roster, got %+v", stats)
	}
	for _, v := range e.Snapshot().Views {
		if v.Kind == entity.KindCraft {
			t.Errorf("removed actor still rendered: %+v", v)
		}
	}
}
