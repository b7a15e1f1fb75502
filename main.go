// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"tuner/cmd"
	"tuner/internal/audio"
	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/transport/udp"
	"tuner/internal/tui"
	"tuner/internal/tuning"
	"tuner/pkg/build"
)

// main is the entry point for the tuner.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Parse command line arguments and configuration
//   - Execute one-off commands if requested
//   - Initialize the capture backend
//
// 2. Concurrent Phase (Hot Path):
//   - Start the tuning engine on the audio source
//   - Start consumers (TUI or log, WebSocket, UDP)
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop consumers, then the source
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil && !errors.Is(err, build.ErrMissingFlags) {
		applog.Fatalf("%v", err)
	}

	// One thread for the capture callback, one for consumers and I/O.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if opts == nil {
		return // --help or --version
	}
	configureLogging(opts.Config)

	if err := executeCommand(opts); err != nil {
		applog.Fatalf("%v", err)
	}
}

func configureLogging(cfg *config.Config) {
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}
}

// executeCommand dispatches the parsed command.
func executeCommand(opts *cmd.Options) error {
	switch opts.Command {
	case cmd.CommandProfiles:
		return cmd.RunProfiles(os.Stdout, opts.Config)
	case cmd.CommandAnalyze:
		return cmd.RunAnalyze(os.Stdout, opts)
	case cmd.CommandList:
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
		return cmd.RunList(os.Stdout, opts.Interactive)
	default:
		return run(opts)
	}
}

// run is the live tuner.
func run(opts *cmd.Options) error {
	cfg := opts.Config

	if cfg.Audio.Backend == config.BackendPortAudio {
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
	}

	ec, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	engine, err := tuning.NewEngine(ec)
	if err != nil {
		return err
	}
	source, err := audio.NewCaptureSource(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	// The first block may arrive before Start returns.
	if err := engine.Start(source); err != nil {
		return err
	}
	defer func() {
		if err := engine.Stop(); err != nil {
			applog.Errorf("Error stopping engine: %v", err)
		}
	}()

	var remote []transport.Transport
	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
		if err := ws.Start(); err != nil {
			ws.Close()
			return err
		}
		defer ws.Close()
		remote = append(remote, ws)
	}
	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return err
		}
		publisher, err := udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, engine)
		if err != nil {
			sender.Close()
			return err
		}
		publisher.Start()
		defer publisher.Close()
	}

	polled := remote
	if opts.Headless || cfg.Transport.LogStatus {
		polled = append(polled, transport.NewLoggingTransport())
	}
	poller := transport.NewPoller(engine, cfg.Transport.PollInterval, polled...)
	go poller.Run(ctx)

	if opts.Headless {
		engine.OnEvent(transport.EventHandler(remote...))
		applog.Infof("Tuner running headless, Ctrl+C to stop")
		<-ctx.Done()
	} else {
		logPath := filepath.Join(os.TempDir(), "tuner.log")
		logFile, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		applog.SetOutput(logFile)
		defer func() {
			applog.SetOutput(os.Stderr)
			logFile.Close()
			fmt.Printf("Log written to %s\n", logPath)
		}()

		if err := tui.RunTuner(ctx, engine, cfg.AllProfiles(), transport.EventHandler(remote...)); err != nil {
			return err
		}
		stop()
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================
	// Deferred calls stop consumers before the source.
	applog.Infof("Shutting down")
	return nil
}
