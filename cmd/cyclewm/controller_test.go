package main

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/cyclewm/internal/compositor"
	"github.com/1broseidon/cyclewm/internal/ipc"
	"github.com/1broseidon/cyclewm/internal/platform"
)

type fakeDisplay struct {
	srv     *compositor.Server
	titles  map[platform.WindowID]string
	applied []compositor.Effect
}

func (d *fakeDisplay) Apply(fx compositor.Effects) {
	d.applied = append(d.applied, fx...)
}

func (d *fakeDisplay) Title(id platform.WindowID) string {
	return d.titles[id]
}

func (d *fakeDisplay) Forget(id platform.WindowID) {
	d.Apply(d.srv.OnDestroy(id))
}

// newTestController maps windows 1, 2 and 3 (MRU [3 2 1]) and runs the
// queue on its own goroutine until the test ends.
func newTestController(t *testing.T) (*controller, *fakeDisplay) {
	t.Helper()
	srv := compositor.New(compositor.Options{KeyboardLayout: "us"})
	for i, id := range []platform.WindowID{1, 2, 3} {
		srv.OnCreate(id)
		srv.OnCommit(id, compositor.Commit{Initial: true, Geometry: platform.Rect{Width: 100, Height: 80}})
		srv.OnMap(id, platform.Rect{X: i * 200, Width: 100, Height: 80})
	}

	disp := &fakeDisplay{srv: srv, titles: map[platform.WindowID]string{1: "shell", 2: "editor", 3: "browser"}}
	queue := compositor.NewQueue(4)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case fn := <-queue.C():
				fn()
			case <-done:
				queue.Close()
				return
			}
		}
	}()
	t.Cleanup(func() {
		close(done)
		wg.Wait()
	})

	return &controller{srv: srv, queue: queue, display: disp}, disp
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestController_StatusAndWindows(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := testContext(t)

	status, err := ctrl.Status(ctx)
	if err != nil {
		t.Fatalf("Status(): %v", err)
	}
	want := ipc.StatusData{WindowCount: 3, FocusedWindow: 3, CursorMode: "passthrough", KeyboardLayout: "us"}
	if status != want {
		t.Fatalf("Status() = %+v, want %+v", status, want)
	}

	windows, err := ctrl.Windows(ctx)
	if err != nil {
		t.Fatalf("Windows(): %v", err)
	}
	var ids []uint32
	for _, w := range windows {
		ids = append(ids, w.ID)
	}
	if !reflect.DeepEqual(ids, []uint32{3, 2, 1}) {
		t.Fatalf("window order = %v, want [3 2 1]", ids)
	}
	if first := windows[0]; first.Title != "browser" || !first.Focused || first.X != 400 || first.Width != 100 {
		t.Fatalf("first window = %+v", first)
	}
}

func TestController_FocusAndCycle(t *testing.T) {
	ctrl, disp := newTestController(t)
	ctx := testContext(t)

	if err := ctrl.Focus(ctx, 1); err != nil {
		t.Fatalf("Focus(1): %v", err)
	}
	managed, err := ctrl.Managed(ctx)
	if err != nil {
		t.Fatalf("Managed(): %v", err)
	}
	if !reflect.DeepEqual(managed, []uint32{1, 3, 2}) {
		t.Fatalf("MRU after focus = %v, want [1 3 2]", managed)
	}

	focused, err := ctrl.Cycle(ctx)
	if err != nil {
		t.Fatalf("Cycle(): %v", err)
	}
	if focused != 3 {
		t.Fatalf("Cycle() = %d, want 3", focused)
	}
	managed, _ = ctrl.Managed(ctx)
	if !reflect.DeepEqual(managed, []uint32{3, 1, 2}) {
		t.Fatalf("MRU after cycle = %v, want [3 1 2]", managed)
	}

	err = ctrl.Focus(ctx, 42)
	if err == nil || !strings.Contains(err.Error(), "not mapped") {
		t.Fatalf("Focus(42) error = %v, want not mapped", err)
	}

	var raised int
	for _, e := range disp.applied {
		if _, ok := e.(compositor.RaiseToTop); ok {
			raised++
		}
	}
	if raised != 2 {
		t.Fatalf("applied %d raises, want 2", raised)
	}
}

func TestController_ForgetAndInvariants(t *testing.T) {
	ctrl, _ := newTestController(t)
	ctx := testContext(t)

	if err := ctrl.Forget(ctx, 3); err != nil {
		t.Fatalf("Forget(3): %v", err)
	}
	managed, _ := ctrl.Managed(ctx)
	if !reflect.DeepEqual(managed, []uint32{2, 1}) {
		t.Fatalf("managed = %v, want [2 1]", managed)
	}
	if err := ctrl.CheckInvariants(ctx); err != nil {
		t.Fatalf("CheckInvariants(): %v", err)
	}

	status, _ := ctrl.Status(ctx)
	if status.FocusedWindow != 0 {
		t.Fatalf("focus after forgetting the focused window = %d, want none", status.FocusedWindow)
	}
}

func TestController_ReloadShutdownLayout(t *testing.T) {
	ctrl, disp := newTestController(t)
	ctx := testContext(t)

	if err := ctrl.Reload(ctx); err == nil {
		t.Fatalf("Reload() without a reload func returned nil")
	}
	reloads := 0
	ctrl.reload = func() error { reloads++; return nil }
	if err := ctrl.Reload(ctx); err != nil || reloads != 1 {
		t.Fatalf("Reload() = %v, reloads = %d", err, reloads)
	}

	if err := ctrl.setKeyboardLayout(ctx, "de"); err != nil {
		t.Fatalf("setKeyboardLayout(): %v", err)
	}
	if status, _ := ctrl.Status(ctx); status.KeyboardLayout != "de" {
		t.Fatalf("layout = %q, want de", status.KeyboardLayout)
	}

	if err := ctrl.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown(): %v", err)
	}
	last := disp.applied[len(disp.applied)-1]
	if _, ok := last.(compositor.Terminate); !ok {
		t.Fatalf("last effect = %#v, want Terminate", last)
	}
}

func TestController_QueueClosed(t *testing.T) {
	srv := compositor.New(compositor.Options{})
	queue := compositor.NewQueue(0)
	queue.Close()
	ctrl := &controller{srv: srv, queue: queue, display: &fakeDisplay{srv: srv}}

	_, err := ctrl.Status(context.Background())
	if !errors.Is(err, compositor.ErrQueueClosed) {
		t.Fatalf("Status() error = %v, want ErrQueueClosed", err)
	}
}

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"42", 42, false},
		{"0x2a00003", 0x2a00003, false},
		{"0", 0, true},
		{"abc", 0, true},
		{"-1", 0, true},
		{"0x1ffffffff", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("parseWindowID(%q) = (%d, %v), want (%d, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestWriteWindowTable(t *testing.T) {
	var b strings.Builder
	writeWindowTable(&b, []ipc.WindowData{
		{ID: 0x400003, Title: "editor", X: 10, Y: 20, Width: 640, Height: 480, Focused: true},
		{ID: 0x600001, Title: "shell", Width: 800, Height: 600, Maximized: true},
	})
	out := b.String()
	for _, want := range []string{"ID", "0x400003", "640x480+10+20", "focused", "0x600001", "maximized", "shell"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}
