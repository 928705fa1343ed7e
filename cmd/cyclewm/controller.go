package main

import (
	"context"
	"fmt"

	"github.com/1broseidon/cyclewm/internal/compositor"
	"github.com/1broseidon/cyclewm/internal/ipc"
	"github.com/1broseidon/cyclewm/internal/platform"
)

// display is the part of the backend the controller needs. Its methods are
// only called on the goroutine that owns the Server.
type display interface {
	Apply(fx compositor.Effects)
	Title(id platform.WindowID) string
	Forget(id platform.WindowID)
}

// controller serves IPC requests and reconciler checks by running them on
// the Server's goroutine through the queue.
type controller struct {
	srv     *compositor.Server
	queue   *compositor.Queue
	display display
	reload  func() error
}

func (c *controller) do(ctx context.Context, fn func()) error {
	if err := c.queue.Do(ctx, fn); err != nil {
		return fmt.Errorf("compositor unavailable: %w", err)
	}
	return nil
}

func (c *controller) Status(ctx context.Context) (ipc.StatusData, error) {
	var status ipc.StatusData
	err := c.do(ctx, func() {
		snap := c.srv.Snapshot()
		status = ipc.StatusData{
			WindowCount:    len(snap.MRU),
			FocusedWindow:  uint32(snap.Focused),
			CursorMode:     snap.CursorMode,
			Cycling:        snap.CycleTarget != platform.NoWindow,
			Keyboards:      snap.Keyboards,
			Pointers:       snap.Pointers,
			KeyboardLayout: snap.Layout,
		}
	})
	return status, err
}

func (c *controller) Windows(ctx context.Context) ([]ipc.WindowData, error) {
	var windows []ipc.WindowData
	err := c.do(ctx, func() {
		for _, w := range c.srv.Snapshot().Windows {
			if !w.Mapped {
				continue
			}
			windows = append(windows, ipc.WindowData{
				ID:        uint32(w.ID),
				Title:     c.display.Title(w.ID),
				X:         w.Box.X,
				Y:         w.Box.Y,
				Width:     w.Box.Width,
				Height:    w.Box.Height,
				Focused:   w.Focused,
				Maximized: w.Maximized,
			})
		}
	})
	return windows, err
}

func (c *controller) Focus(ctx context.Context, id uint32) error {
	var focusErr error
	err := c.do(ctx, func() {
		fx, err := c.srv.Focus(platform.WindowID(id))
		if err != nil {
			focusErr = err
			return
		}
		c.display.Apply(fx)
	})
	if err != nil {
		return err
	}
	return focusErr
}

func (c *controller) Cycle(ctx context.Context) (uint32, error) {
	var focused platform.WindowID
	err := c.do(ctx, func() {
		c.display.Apply(c.srv.Cycle())
		focused = c.srv.Focused()
	})
	return uint32(focused), err
}

func (c *controller) Reload(ctx context.Context) error {
	if c.reload == nil {
		return fmt.Errorf("reload is not available")
	}
	return c.reload()
}

func (c *controller) Shutdown(ctx context.Context) error {
	return c.do(ctx, func() {
		c.display.Apply(c.srv.Terminate())
	})
}

// Managed returns the mapped windows in MRU order.
func (c *controller) Managed(ctx context.Context) ([]uint32, error) {
	var ids []uint32
	err := c.do(ctx, func() {
		for _, id := range c.srv.MRU() {
			ids = append(ids, uint32(id))
		}
	})
	return ids, err
}

func (c *controller) Forget(ctx context.Context, id uint32) error {
	return c.do(ctx, func() {
		c.display.Forget(platform.WindowID(id))
	})
}

func (c *controller) CheckInvariants(ctx context.Context) error {
	var check error
	if err := c.do(ctx, func() { check = c.srv.CheckInvariants() }); err != nil {
		return err
	}
	return check
}

// setKeyboardLayout applies a new layout to every attached keyboard.
func (c *controller) setKeyboardLayout(ctx context.Context, layout string) error {
	return c.do(ctx, func() {
		c.display.Apply(c.srv.SetKeyboardLayout(layout))
	})
}
