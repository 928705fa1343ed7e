package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/1broseidon/cyclewm/internal/compositor"
	"github.com/1broseidon/cyclewm/internal/config"
	"github.com/1broseidon/cyclewm/internal/daemon"
	"github.com/1broseidon/cyclewm/internal/ipc"
	"github.com/1broseidon/cyclewm/internal/x11"
)

const queueSize = 16

func runCompositor(args []string) int {
	fs := newCommandFlags("run", "cyclewm run [-s command] [-config path]",
		"Take over window management of $DISPLAY and run in the foreground.")
	startup := fs.String("s", "", "Command to run through /bin/sh -c once the window manager is up (overrides startup_command)")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/cyclewm/config.yaml)")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}

	var level slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		log.Printf("Failed to resolve config path: %v", err)
		return 1
	}
	watcher, err := config.NewWatcher(path, logger.With("component", "config"))
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := watcher.Config()
	level.Set(cfg.SlogLevel())
	if err := cfg.ApplyKeyboardLayout(); err != nil {
		log.Printf("Warning: %v", err)
	}

	conn, err := x11.NewConnection()
	if err != nil {
		log.Printf("Failed to connect to display: %v", err)
		return 1
	}
	defer conn.Close()

	srv := compositor.New(compositor.Options{
		Logger:         logger.With("component", "compositor"),
		KeyboardLayout: cfg.KeyboardLayout,
		RepeatRate:     cfg.RepeatRate,
		RepeatDelay:    cfg.RepeatDelay,
	})
	queue := compositor.NewQueue(queueSize)
	backend := x11.NewBackend(conn, srv, queue, logger.With("component", "x11"))
	if err := backend.Start(); err != nil {
		log.Printf("Failed to start window manager: %v", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := &controller{srv: srv, queue: queue, display: backend, reload: watcher.Reload}

	watcher.OnChange(func(prev, next *config.Config) {
		level.Set(next.SlogLevel())
		if prev.KeyboardLayout == next.KeyboardLayout {
			return
		}
		if err := next.ApplyKeyboardLayout(); err != nil {
			logger.Warn("keyboard layout not exported", "error", err)
		}
		if err := ctrl.setKeyboardLayout(ctx, next.KeyboardLayout); err != nil {
			logger.Warn("keyboard layout not applied", "layout", next.KeyboardLayout, "error", err)
		}
	})
	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Warn("config hot reload disabled", "error", err)
		}
	}()

	ipcServer, err := ipc.NewServer(ctrl)
	if err != nil {
		log.Printf("Failed to create IPC server: %v", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		log.Printf("Failed to start IPC server: %v", err)
		return 1
	}
	defer ipcServer.Stop()

	if interval := cfg.ReconcileInterval(); interval > 0 {
		reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval:       interval,
			ForgetOrphaned: true,
			Logger:         logger.With("component", "reconciler"),
		}, ctrl, backend.ListWindows)
		go reconciler.Run(ctx)
	}

	command := cfg.StartupCommand
	if *startup != "" {
		command = *startup
	}
	if command != "" {
		if err := startCommand(command, cfg.CursorThemeSize); err != nil {
			log.Printf("Warning: startup command failed: %v", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					log.Println("Received SIGHUP, reloading config...")
					if err := watcher.Reload(); err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					log.Println("Config reloaded successfully")
					continue
				}
				log.Println("Shutting down cyclewm...")
				cancel()
				return
			}
		}
	}()

	log.Printf("cyclewm started (socket: %s)", ipcServer.SocketPath())
	err = backend.Run(ctx)

	cancel()
	queue.Close()
	if err != nil {
		log.Printf("Event loop failed: %v", err)
		return 1
	}
	return 0
}

// startCommand runs command through the shell without waiting for it.
func startCommand(command string, cursorSize int) error {
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Env = append(os.Environ(), "XCURSOR_SIZE="+strconv.Itoa(cursorSize))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", command, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("Startup command exited: %v", err)
		}
	}()
	return nil
}
