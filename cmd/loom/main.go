// Command loom is the execution host of §6.4: it connects to a compiled
// emulation over the simulation transport, services DPI calls, and
// exposes the run/stop/step/status/dump/reset/exit command surface either
// interactively or from a script.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/tebeka/atexit"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/loom/runtime/dpi"
	"github.com/sarchlab/loom/runtime/shell"
	"github.com/sarchlab/loom/runtime/transport"
)

func main() {
	work := flag.String("work", "", "directory holding the compiled artifacts (required)")
	svLib := flag.String("sv_lib", "", "shared library of user DPI callback implementations (unimplemented: see DESIGN.md)")
	simBinary := flag.String("sim", "", "simulation binary to launch")
	script := flag.String("f", "", "script file of shell commands to run non-interactively")
	sockPath := flag.String("s", "", "UNIX socket path (default: WORK/loom.sock)")
	noSim := flag.Bool("no-sim", false, "do not launch a simulation binary; connect to one already running")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *work == "" {
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *svLib != "" {
		slog.Warn("loom: -sv_lib dynamic C callback loading is not implemented in this build; only builtin print/display functions are serviced", "sv_lib", *svLib)
	}

	sock := *sockPath
	if sock == "" {
		sock = filepath.Join(*work, "loom.sock")
	}

	if !*noSim && *simBinary != "" {
		cmd := exec.Command(*simBinary)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "loom: launching simulation: %v\n", err)
			os.Exit(1)
		}
		atexit.Register(func() { _ = cmd.Process.Kill() })
	}

	table, err := dpi.LoadDispatchTable(filepath.Join(*work, "dpi_metadata.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loom: %v\n", err)
		os.Exit(1)
	}

	callbacks := dpi.NewCallbacks()
	for _, f := range table.Funcs {
		if f.Builtin {
			callbacks.RegisterPrint(f.Name, f.Format)
		}
	}

	t, err := transport.DialUnixSocket(sock, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loom: %v\n", err)
		os.Exit(1)
	}
	atexit.Register(func() { _ = t.Close() })

	loop := dpi.NewServiceLoop(t, table, callbacks, slog.Default())
	scanBits := scanChainLength(filepath.Join(*work, "scan_map.yaml"))
	sh := shell.NewShell(t, loop, scanBits)

	var runErr error
	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loom: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		runErr = sh.RunScript(f)
	} else {
		runErr = sh.RunInteractive()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "loom: %v\n", runErr)
		atexit.Exit(1)
	}

	// Give the transport a moment to deliver a pending shutdown message
	// before teardown runs.
	time.Sleep(10 * time.Millisecond)
	atexit.Exit(0)
}

func scanChainLength(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var doc struct {
		ChainLength int `yaml:"chain_length"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0
	}
	return doc.ChainLength
}
