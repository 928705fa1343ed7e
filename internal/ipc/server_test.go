package ipc

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
)

type fakeController struct {
	mu       sync.Mutex
	windows  []WindowData
	focused  uint32
	reloads  int
	shutdown bool
	focusErr error
}

func (f *fakeController) Status(ctx context.Context) (StatusData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return StatusData{WindowCount: len(f.windows), FocusedWindow: f.focused, CursorMode: "passthrough"}, nil
}

func (f *fakeController) Windows(ctx context.Context) ([]WindowData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]WindowData(nil), f.windows...), nil
}

func (f *fakeController) Focus(ctx context.Context, id uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.focusErr != nil {
		return f.focusErr
	}
	f.focused = id
	return nil
}

func (f *fakeController) Cycle(ctx context.Context) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.windows) > 1 {
		f.focused = f.windows[1].ID
	}
	return f.focused, nil
}

func (f *fakeController) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeController) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown = true
	return nil
}

func (f *fakeController) state() (focused uint32, reloads int, shutdown bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused, f.reloads, f.shutdown
}

func startServer(t *testing.T, ctrl Controller) *Client {
	t.Helper()
	dir, err := os.MkdirTemp("", "cwm")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	srv := NewServerAt(filepath.Join(dir, "s.sock"), ctrl)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start(): %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(srv.SocketPath())
}

func TestServer_StatusAndWindows(t *testing.T) {
	ctrl := &fakeController{
		windows: []WindowData{
			{ID: 3, Title: "editor", Width: 100, Height: 100, Focused: true},
			{ID: 1, Title: "shell", X: 200, Width: 100, Height: 100},
		},
		focused: 3,
	}
	client := startServer(t, ctrl)

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus(): %v", err)
	}
	if !status.DaemonRunning || status.WindowCount != 2 || status.FocusedWindow != 3 {
		t.Fatalf("status = %+v", status)
	}

	windows, err := client.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows(): %v", err)
	}
	if !reflect.DeepEqual(windows, ctrl.windows) {
		t.Fatalf("windows = %+v, want %+v", windows, ctrl.windows)
	}
}

func TestServer_FocusCycleReloadShutdown(t *testing.T) {
	ctrl := &fakeController{windows: []WindowData{{ID: 3}, {ID: 1}}, focused: 3}
	client := startServer(t, ctrl)

	if err := client.FocusWindow(1); err != nil {
		t.Fatalf("FocusWindow(): %v", err)
	}
	if focused, _, _ := ctrl.state(); focused != 1 {
		t.Fatalf("focused = %d, want 1", focused)
	}

	got, err := client.Cycle()
	if err != nil {
		t.Fatalf("Cycle(): %v", err)
	}
	if got != 1 {
		t.Fatalf("Cycle() = %d, want 1", got)
	}

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload(): %v", err)
	}
	if err := client.Shutdown(); err != nil {
		t.Fatalf("Shutdown(): %v", err)
	}
	if _, reloads, shutdown := ctrl.state(); reloads != 1 || !shutdown {
		t.Fatalf("reloads=%d shutdown=%v", reloads, shutdown)
	}
}

func TestServer_Errors(t *testing.T) {
	ctrl := &fakeController{focusErr: errors.New("window 9 is not mapped")}
	client := startServer(t, ctrl)

	err := client.FocusWindow(9)
	if err == nil || !strings.Contains(err.Error(), "not mapped") {
		t.Fatalf("FocusWindow(9) error = %v, want not mapped", err)
	}
	if err := client.FocusWindow(0); err == nil {
		t.Fatalf("FocusWindow(0) returned nil error")
	}

	tests := []struct {
		name string
		line string
		want string
	}{
		{"garbage", "not json\n", "Invalid request"},
		{"missing command", "{}\n", "Invalid request"},
		{"unknown command", `{"command":"TILE"}` + "\n", "Unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := net.Dial("unix", client.socketPath)
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer conn.Close()
			if _, err := conn.Write([]byte(tt.line)); err != nil {
				t.Fatalf("write: %v", err)
			}
			line, err := bufio.NewReader(conn).ReadString('\n')
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !strings.Contains(line, `"status":"ERROR"`) || !strings.Contains(line, tt.want) {
				t.Fatalf("response = %s, want error containing %q", line, tt.want)
			}
		})
	}
}

func TestClient_NoDaemon(t *testing.T) {
	client := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := client.Ping(); err == nil {
		t.Fatalf("Ping() without daemon returned nil error")
	}
}
