package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/1broseidon/cyclewm/internal/ipc"
	"github.com/1broseidon/cyclewm/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runCompositor(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "cycle":
		os.Exit(runCycle(os.Args[2:]))
	case "reload":
		os.Exit(runSimple("reload", "Reload the configuration file.", os.Args[2:], func(c *ipc.Client) error { return c.Reload() }))
	case "quit":
		os.Exit(runSimple("quit", "Ask the running compositor to shut down.", os.Args[2:], func(c *ipc.Client) error { return c.Shutdown() }))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: cyclewm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the window manager (foreground)")
	fmt.Fprintln(w, "  status              Show compositor status")
	fmt.Fprintln(w, "  windows             List mapped windows, most recently used first")
	fmt.Fprintln(w, "  focus <id>          Focus a window")
	fmt.Fprintln(w, "  cycle               Switch to the next window, like one Alt+Tab")
	fmt.Fprintln(w, "  reload              Reload configuration")
	fmt.Fprintln(w, "  quit                Shut down the window manager")
	fmt.Fprintln(w, "  tui                 Open the interactive window switcher")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write a default configuration file")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'cyclewm <command> --help' for command-specific options.")
}

// newCommandFlags builds a flag set whose usage prints line and description.
func newCommandFlags(name, line, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+line)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parseFlags returns -1 to continue, or the exit code to stop with.
func parseFlags(fs *flag.FlagSet, args []string, wantArgs int) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != wantArgs {
		if wantArgs == 0 {
			fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		} else {
			fmt.Fprintf(os.Stderr, "%s requires %d argument(s)\n", fs.Name(), wantArgs)
		}
		fs.Usage()
		return 2
	}
	return -1
}

// useJSON picks JSON output when asked to, or when stdout is not a terminal.
func useJSON(flagged bool) bool {
	return flagged || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := newCommandFlags("status", "cyclewm status [--json]", "Show compositor status via IPC.")
	jsonOut := fs.Bool("json", false, "Output JSON")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if useJSON(*jsonOut) {
		return printJSON(status)
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("window_count:    %d\n", status.WindowCount)
	fmt.Printf("focused_window:  %s\n", formatWindowID(status.FocusedWindow))
	fmt.Printf("cursor_mode:     %s\n", status.CursorMode)
	fmt.Printf("cycling:         %v\n", status.Cycling)
	fmt.Printf("keyboards:       %d\n", status.Keyboards)
	fmt.Printf("pointers:        %d\n", status.Pointers)
	if status.KeyboardLayout != "" {
		fmt.Printf("keyboard_layout: %s\n", status.KeyboardLayout)
	}
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func runWindows(args []string) int {
	fs := newCommandFlags("windows", "cyclewm windows [--json]", "List mapped windows, most recently used first.")
	jsonOut := fs.Bool("json", false, "Output JSON")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}

	windows, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if useJSON(*jsonOut) {
		return printJSON(ipc.WindowsData{Windows: windows})
	}
	writeWindowTable(os.Stdout, windows)
	return 0
}

func writeWindowTable(w io.Writer, windows []ipc.WindowData) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGEOMETRY\tSTATE\tTITLE")
	for _, win := range windows {
		state := "-"
		switch {
		case win.Focused && win.Maximized:
			state = "focused,maximized"
		case win.Focused:
			state = "focused"
		case win.Maximized:
			state = "maximized"
		}
		fmt.Fprintf(tw, "%s\t%dx%d+%d+%d\t%s\t%s\n",
			formatWindowID(win.ID), win.Width, win.Height, win.X, win.Y, state, win.Title)
	}
	tw.Flush()
}

func formatWindowID(id uint32) string {
	if id == 0 {
		return "none"
	}
	return fmt.Sprintf("0x%x", id)
}

// parseWindowID accepts decimal or 0x-prefixed hex IDs, as printed by
// "cyclewm windows".
func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	if id == 0 {
		return 0, fmt.Errorf("window id must be non-zero")
	}
	return uint32(id), nil
}

func runFocus(args []string) int {
	fs := newCommandFlags("focus", "cyclewm focus <id>", "Focus a window and move it to the front of the switch order.")
	if code := parseFlags(fs, args, 1); code >= 0 {
		return code
	}
	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := ipc.NewClient().FocusWindow(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runCycle(args []string) int {
	fs := newCommandFlags("cycle", "cyclewm cycle", "Switch to the next window, as one Alt+Tab press and release.")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	focused, err := ipc.NewClient().Cycle()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(formatWindowID(focused))
	return 0
}

func runSimple(name, description string, args []string, call func(*ipc.Client) error) int {
	fs := newCommandFlags(name, "cyclewm "+name, description)
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	if err := call(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runTUI(args []string) int {
	fs := newCommandFlags("tui", "cyclewm tui [--close]",
		"Browse mapped windows, most recently used first. Enter focuses, c cycles, q quits.")
	closeOnFocus := fs.Bool("close", false, "Exit after focusing a window")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	if err := tui.Run(ipc.NewClient(), tui.Options{CloseOnFocus: *closeOnFocus}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
