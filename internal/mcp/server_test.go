package mcp

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/cyclewm/internal/ipc"
)

type fakeDaemon struct {
	windows []ipc.WindowData
	focused []uint32
	cycles  int
	err     error
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{WindowCount: len(f.windows), CursorMode: "passthrough", DaemonRunning: true}, nil
}

func (f *fakeDaemon) ListWindows() ([]ipc.WindowData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.windows, nil
}

func (f *fakeDaemon) FocusWindow(id uint32) error {
	if f.err != nil {
		return f.err
	}
	f.focused = append(f.focused, id)
	return nil
}

func (f *fakeDaemon) Cycle() (uint32, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.cycles++
	return f.windows[f.cycles%len(f.windows)].ID, nil
}

func testWindows() []ipc.WindowData {
	return []ipc.WindowData{
		{ID: 30, Title: "Terminal", Focused: true},
		{ID: 20, Title: "Firefox - Docs"},
		{ID: 10, Title: "Firefox - Mail"},
	}
}

func TestNewServer_RegistersTools(t *testing.T) {
	if s := NewServer(&fakeDaemon{}); s.mcpServer == nil {
		t.Fatalf("NewServer() left mcpServer nil")
	}
}

func TestHandleGetStatus(t *testing.T) {
	s := &Server{daemon: &fakeDaemon{windows: testWindows()}}
	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("handleGetStatus: %v", err)
	}
	if out.WindowCount != 3 || out.CursorMode != "passthrough" {
		t.Fatalf("status = %+v", out)
	}

	s = &Server{daemon: &fakeDaemon{err: errors.New("no daemon")}}
	if _, _, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{}); err == nil {
		t.Fatalf("expected error when daemon is down")
	}
}

func TestHandleListWindows(t *testing.T) {
	s := &Server{daemon: &fakeDaemon{windows: testWindows()}}

	tests := []struct {
		name    string
		limit   int
		wantIDs []uint32
		wantErr bool
	}{
		{"all", 0, []uint32{30, 20, 10}, false},
		{"limited", 2, []uint32{30, 20}, false},
		{"limit above count", 9, []uint32{30, 20, 10}, false},
		{"negative", -1, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{Limit: tt.limit})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			var ids []uint32
			for _, w := range out.Windows {
				ids = append(ids, w.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestHandleFocusWindow(t *testing.T) {
	tests := []struct {
		name    string
		input   FocusWindowInput
		wantID  uint32
		wantErr string
	}{
		{"by id", FocusWindowInput{WindowID: 20}, 20, ""},
		{"exact title", FocusWindowInput{Title: "terminal"}, 30, ""},
		{"unique substring", FocusWindowInput{Title: "mail"}, 10, ""},
		{"ambiguous substring", FocusWindowInput{Title: "firefox"}, 0, "ambiguous"},
		{"no match", FocusWindowInput{Title: "xterm"}, 0, "no window"},
		{"nothing given", FocusWindowInput{}, 0, "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDaemon{windows: testWindows()}
			s := &Server{daemon: d}
			_, out, err := s.handleFocusWindow(context.Background(), nil, tt.input)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				if len(d.focused) != 0 {
					t.Fatalf("focused %v on error", d.focused)
				}
				return
			}
			if err != nil {
				t.Fatalf("handleFocusWindow: %v", err)
			}
			if out.WindowID != tt.wantID || !reflect.DeepEqual(d.focused, []uint32{tt.wantID}) {
				t.Fatalf("out = %+v focused = %v, want %d", out, d.focused, tt.wantID)
			}
		})
	}
}

func TestHandleCycleWindows(t *testing.T) {
	d := &fakeDaemon{windows: testWindows()}
	s := &Server{daemon: d}

	_, out, err := s.handleCycleWindows(context.Background(), nil, CycleWindowsInput{})
	if err != nil {
		t.Fatalf("handleCycleWindows: %v", err)
	}
	if d.cycles != 1 || out.FocusedWindow != 20 {
		t.Fatalf("cycles=%d out=%+v, want one cycle to 20", d.cycles, out)
	}

	_, out, err = s.handleCycleWindows(context.Background(), nil, CycleWindowsInput{Steps: 2})
	if err != nil {
		t.Fatalf("handleCycleWindows: %v", err)
	}
	if d.cycles != 3 || out.FocusedWindow != 30 {
		t.Fatalf("cycles=%d out=%+v, want three cycles ending at 30", d.cycles, out)
	}

	for _, steps := range []int{-1, maxCycleSteps + 1} {
		if _, _, err := s.handleCycleWindows(context.Background(), nil, CycleWindowsInput{Steps: steps}); err == nil {
			t.Errorf("steps=%d returned nil error", steps)
		}
	}
}
