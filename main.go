package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/shazow/wifictl/shell"
	"github.com/shazow/wifictl/wifi"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

// main is the entry point of the application
func main() {
	var (
		rootFlagSet = flag.NewFlagSet("wifictl", flag.ExitOnError)
		configPath  = rootFlagSet.String("config", "", "path to config toml file (env: WIFICTL_CONFIG)")
		verbose     = rootFlagSet.Bool("verbose", false, "log each OS command with its output and timing")
		version     = rootFlagSet.Bool("version", false, "display version")
	)

	var m *wifi.Manager

	listFlagSet := flag.NewFlagSet("list", flag.ExitOnError)
	listJSON := listFlagSet.Bool("json", false, "output in JSON format")
	listCmd := &ffcli.Command{
		Name:      "list",
		ShortHelp: "Scan and list visible wifi networks",
		FlagSet:   listFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			return runList(ctx, os.Stdout, *listJSON, m)
		},
	}

	statusFlagSet := flag.NewFlagSet("status", flag.ExitOnError)
	statusJSON := statusFlagSet.Bool("json", false, "output in JSON format")
	statusCmd := &ffcli.Command{
		Name:      "status",
		ShortHelp: "Show radio, network and internet status",
		FlagSet:   statusFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			return runStatus(ctx, os.Stdout, *statusJSON, m)
		},
	}

	connectCmd := &ffcli.Command{
		Name:       "connect",
		ShortUsage: "wifictl connect <ssid> [password]",
		ShortHelp:  "Connect to a wifi network",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("connect requires an ssid")
			}
			password := ""
			if len(args) > 1 {
				password = args[1]
			}
			return runConnect(ctx, os.Stdout, m, args[0], password)
		},
	}

	disconnectCmd := &ffcli.Command{
		Name:      "disconnect",
		ShortHelp: "Disconnect from the current network",
		Exec: func(ctx context.Context, args []string) error {
			return m.Disconnect(ctx)
		},
	}

	cycleCmd := &ffcli.Command{
		Name:      "cycle",
		ShortHelp: "Power-cycle the wifi radio",
		Exec: func(ctx context.Context, args []string) error {
			return m.CycleNetwork(ctx)
		},
	}

	onCmd := &ffcli.Command{
		Name:      "on",
		ShortHelp: "Turn the wifi radio on",
		Exec: func(ctx context.Context, args []string) error {
			return m.WifiOn(ctx)
		},
	}

	offCmd := &ffcli.Command{
		Name:      "off",
		ShortHelp: "Turn the wifi radio off",
		Exec: func(ctx context.Context, args []string) error {
			return m.WifiOff(ctx)
		},
	}

	tillFlagSet := flag.NewFlagSet("till", flag.ExitOnError)
	tillTimeout := tillFlagSet.Duration("timeout", 0, "give up after this long (0 means wait forever)")
	tillInterval := tillFlagSet.Duration("interval", wifi.DefaultPollInterval, "poll interval")
	tillCmd := &ffcli.Command{
		Name:       "till",
		ShortUsage: "wifictl till [flags] <on|off|connected|disconnected>",
		ShortHelp:  "Wait until the given status is reached",
		FlagSet:    tillFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("till requires a target status")
			}
			return m.Till(ctx, wifi.Status(args[0]), *tillTimeout, *tillInterval)
		},
	}

	passwordCmd := &ffcli.Command{
		Name:       "password",
		ShortUsage: "wifictl password <ssid>",
		ShortHelp:  "Show the stored password for a preferred network",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("password requires an ssid")
			}
			return runPassword(ctx, os.Stdout, m, args[0])
		},
	}

	forgetCmd := &ffcli.Command{
		Name:       "forget",
		ShortUsage: "wifictl forget <ssid> [<ssid> ...]",
		ShortHelp:  "Remove preferred networks",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("forget requires at least one ssid")
			}
			return runForget(ctx, os.Stdout, m, args...)
		},
	}

	qrCmd := &ffcli.Command{
		Name:       "qr",
		ShortUsage: "wifictl qr [ssid]",
		ShortHelp:  "Print a join QR code for a network (default: the current one)",
		Exec: func(ctx context.Context, args []string) error {
			ssid := ""
			if len(args) > 0 {
				ssid = args[0]
			}
			return runQR(ctx, os.Stdout, m, ssid)
		},
	}

	root := &ffcli.Command{
		ShortUsage: "wifictl [flags] <subcommand> [args...]",
		FlagSet:    rootFlagSet,
		Subcommands: []*ffcli.Command{
			listCmd, statusCmd, connectCmd, disconnectCmd, cycleCmd,
			onCmd, offCmd, tillCmd, passwordCmd, forgetCmd, qrCmd,
		},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}

	// Parse the root flags first so the config file and verbosity are known
	// before the backend is constructed. ParseAndRun parses them again,
	// which is fine.
	err := ff.Parse(rootFlagSet, os.Args[1:],
		ff.WithEnvVarPrefix("WIFICTL"),
		ff.WithIgnoreUndefined(true), // Ignore subcommand flags for now
	)
	if err != nil {
		if err == flag.ErrHelp {
			root.FlagSet.Usage()
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *version {
		fmt.Println(Version)
		os.Exit(0)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Verbose != nil && *cfg.Verbose {
		*verbose = true
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	runner := shell.NewLocalRunner(logger, *verbose)
	b, err := GetBackend(runner, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	opts := []wifi.Option{wifi.WithLogger(logger)}
	if timeout, ok := cfg.RadioTimeoutDuration(); ok {
		opts = append(opts, wifi.WithRadioTimeout(timeout))
	}
	m = wifi.New(b, opts...)

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
