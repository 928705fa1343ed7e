package compositor

import (
	"math/rand"
	"testing"

	"github.com/1broseidon/cyclewm/internal/platform"
)

// TestInvariants_RandomEventStream drives the server with a seeded stream of
// interleaved lifecycle and input events and checks the cross-references
// after every step.
func TestInvariants_RandomEventStream(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1234} {
		rng := rand.New(rand.NewSource(seed))
		s, scene := newTestServer(t)
		s.OnNewInput(1, platform.DeviceKeyboard)
		s.OnNewInput(2, platform.DevicePointer)

		for id := platform.WindowID(1); id <= 6; id++ {
			scene.add(id, platform.Rect{X: int(id) * 50, Y: int(id) * 30, Width: 120, Height: 90})
		}

		for step := 0; step < 2000; step++ {
			id := platform.WindowID(rng.Intn(6) + 1)
			switch rng.Intn(12) {
			case 0:
				s.OnCreate(id)
				s.OnCommit(id, Commit{Initial: true, Geometry: platform.Rect{Width: 120, Height: 90}})
			case 1:
				s.OnMap(id, platform.Rect{X: int(id) * 50, Y: int(id) * 30, Width: 120, Height: 90})
			case 2:
				s.OnUnmap(id)
			case 3:
				s.OnDestroy(id)
			case 4:
				s.OnModifiers(1, platform.ModAlt)
				s.OnKey(1, KeyEvent{Keycode: 23, State: platform.KeyPressed, Syms: []platform.Keysym{platform.KeyTab}})
			case 5:
				s.OnModifiers(1, 0)
				s.OnKey(1, KeyEvent{Keycode: 64, State: platform.KeyReleased, Syms: []platform.Keysym{platform.KeyAltL}})
			case 6:
				s.OnMotion(uint32(step), rng.Float64()*500, rng.Float64()*300)
			case 7:
				s.OnButton(uint32(step), 272, platform.ButtonPressed)
			case 8:
				s.OnButton(uint32(step), 272, platform.ButtonReleased)
			case 9:
				s.OnRequestMove(id)
			case 10:
				s.OnRequestResize(id, platform.Edges(rng.Intn(16)))
			case 11:
				s.OnRequestMaximize(id, platform.Rect{Width: 1280, Height: 720})
			}

			if err := s.CheckInvariants(); err != nil {
				t.Fatalf("seed %d step %d: %v", seed, step, err)
			}

			mapped := 0
			for _, w := range s.Snapshot().Windows {
				if w.Mapped {
					mapped++
					if !contains(s.MRU(), w.ID) {
						t.Fatalf("seed %d step %d: mapped window %d missing from MRU", seed, step, w.ID)
					}
				}
			}
			if mapped != len(s.MRU()) {
				t.Fatalf("seed %d step %d: %d mapped, MRU has %d", seed, step, mapped, len(s.MRU()))
			}
			if s.Mode() != CursorPassthrough && !s.IsMapped(s.Grabbed()) {
				t.Fatalf("seed %d step %d: grab on unmapped window %d", seed, step, s.Grabbed())
			}
		}
	}
}

func TestCheckInvariants_DetectsDrift(t *testing.T) {
	s, _ := newTestServer(t)
	mapABC(t, s)
	s.mru.Remove(winB)

	if err := s.CheckInvariants(); err == nil {
		t.Fatalf("CheckInvariants() = nil with B missing from focus registry")
	}
}

func contains(ids []platform.WindowID, id platform.WindowID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
