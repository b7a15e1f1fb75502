// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"strings"

	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/pkg/build"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TUNER_TUNING_PROFILE.
const EnvPrefix = "TUNER"

// Command names.
const (
	CommandRun      = "run"
	CommandList     = "list"
	CommandProfiles = "profiles"
	CommandAnalyze  = "analyze"
)

// Options is the parsed command line.
type Options struct {
	Command     string
	Config      *config.Config
	ConfigPath  string
	Headless    bool   // run: log instead of the TUI
	Interactive bool   // list: device picker
	File        string // analyze: WAV file
	Realtime    bool   // analyze: pace blocks at the file's sample rate
}

// override copies one viper key into the loaded configuration.
type override struct {
	key   string // viper key, also the env name after the prefix
	flag  string
	apply func(v *viper.Viper, c *config.Config)
}

var overrides = []override{
	{"debug", "debug", func(v *viper.Viper, c *config.Config) { c.Debug = v.GetBool("debug") }},
	{"log_level", "log-level", func(v *viper.Viper, c *config.Config) { c.LogLevel = v.GetString("log_level") }},
	{"audio.backend", "backend", func(v *viper.Viper, c *config.Config) { c.Audio.Backend = v.GetString("audio.backend") }},
	{"audio.input_device", "device", func(v *viper.Viper, c *config.Config) { c.Audio.InputDevice = v.GetInt("audio.input_device") }},
	{"audio.sample_rate", "sample-rate", func(v *viper.Viper, c *config.Config) { c.Audio.SampleRate = v.GetFloat64("audio.sample_rate") }},
	{"audio.block_size", "block-size", func(v *viper.Viper, c *config.Config) { c.Audio.BlockSize = v.GetInt("audio.block_size") }},
	{"audio.input_channels", "channels", func(v *viper.Viper, c *config.Config) { c.Audio.InputChannels = v.GetInt("audio.input_channels") }},
	{"audio.low_latency", "low-latency", func(v *viper.Viper, c *config.Config) { c.Audio.LowLatency = v.GetBool("audio.low_latency") }},
	{"audio.gate_threshold", "gate", func(v *viper.Viper, c *config.Config) {
		c.Audio.GateThreshold = v.GetFloat64("audio.gate_threshold")
		c.Audio.GateEnabled = true
	}},
	{"analysis.window_size", "window-size", func(v *viper.Viper, c *config.Config) { c.Analysis.WindowSize = v.GetInt("analysis.window_size") }},
	{"tuning.profile", "profile", func(v *viper.Viper, c *config.Config) { c.Tuning.Profile = v.GetString("tuning.profile") }},
	{"tuning.tolerance_cents", "tolerance", func(v *viper.Viper, c *config.Config) {
		c.Tuning.ToleranceCents = v.GetFloat64("tuning.tolerance_cents")
	}},
	{"transport.websocket_enabled", "websocket", func(v *viper.Viper, c *config.Config) {
		c.Transport.WebSocketEnabled = v.GetBool("transport.websocket_enabled")
	}},
	{"transport.websocket_addr", "websocket-addr", func(v *viper.Viper, c *config.Config) {
		c.Transport.WebSocketAddr = v.GetString("transport.websocket_addr")
	}},
	{"transport.udp_enabled", "udp", func(v *viper.Viper, c *config.Config) { c.Transport.UDPEnabled = v.GetBool("transport.udp_enabled") }},
	{"transport.udp_target_address", "udp-target", func(v *viper.Viper, c *config.Config) {
		c.Transport.UDPTargetAddress = v.GetString("transport.udp_target_address")
	}},
}

// ParseArgs parses args (without the program name), loads the config file
// and layers environment and flag overrides on top, in that order.
func ParseArgs(args []string, stdout io.Writer) (*Options, error) {
	buildInfo := build.Get()
	opts := &Options{Command: CommandRun}
	defaults := config.NewConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Long:          "Listens to an instrument, detects the pitch of the plucked string and reports how far it is from the nearest note of the selected profile.",
		Version:       buildInfo.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandRun
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stdout)
	rootCmd.SetArgs(args)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetVersionTemplate(buildInfo.String() + "\n")

	runCmd := &cobra.Command{
		Use:   CommandRun,
		Short: "Run the live tuner (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandRun
			return nil
		},
	}
	listCmd := &cobra.Command{
		Use:   CommandList,
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandList
			return nil
		},
	}
	profilesCmd := &cobra.Command{
		Use:   CommandProfiles,
		Short: "List instrument profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandProfiles
			return nil
		},
	}
	analyzeCmd := &cobra.Command{
		Use:   CommandAnalyze + " <file.wav>",
		Short: "Run the tuner over a WAV file and print every reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = CommandAnalyze
			opts.File = args[0]
			return nil
		},
	}
	rootCmd.AddCommand(runCmd, listCmd, profilesCmd, analyzeCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "f", "",
		"Configuration file (default: tuner.yaml or config.yaml if present)")

	// Audio
	flags.StringP("backend", "B", defaults.Audio.Backend, "Capture backend: portaudio or malgo")
	flags.IntP("device", "d", defaults.Audio.InputDevice,
		"Specify input device ID. Use 'list' command to see available devices.")
	flags.IntP("channels", "c", defaults.Audio.InputChannels, "Number of input channels to open; the first is analysed")
	flags.Float64P("sample-rate", "s", defaults.Audio.SampleRate, "Sample rate, measured in Hertz (Hz)")
	flags.IntP("block-size", "b", defaults.Audio.BlockSize, "Samples per processing block")
	flags.BoolP("low-latency", "l", defaults.Audio.LowLatency, "Use low latency mode for real-time processing")
	flags.Float64("gate", defaults.Audio.GateThreshold, "Enable the input gate with this peak threshold (0-1)")

	// Analysis and tuning
	flags.IntP("window-size", "w", defaults.Analysis.WindowSize, "Analysis window in samples (power of two)")
	flags.StringP("profile", "p", defaults.Tuning.Profile, "Instrument profile. Use 'profiles' command to see them.")
	flags.Float64P("tolerance", "t", defaults.Tuning.ToleranceCents, "In-tune tolerance in cents")

	// Transport
	flags.Bool("websocket", defaults.Transport.WebSocketEnabled, "Serve snapshots and events over WebSocket")
	flags.String("websocket-addr", defaults.Transport.WebSocketAddr, "WebSocket listen address")
	flags.Bool("udp", defaults.Transport.UDPEnabled, "Publish snapshots as UDP packets")
	flags.String("udp-target", defaults.Transport.UDPTargetAddress, "UDP target host:port")

	// Debug Configuration
	flags.BoolP("debug", "D", defaults.Debug, "Enable debug diagnostics")
	flags.String("log-level", defaults.LogLevel, "Log level: debug, info, warn, error")

	runCmd.Flags().BoolVar(&opts.Headless, "headless", false, "Log readings instead of showing the TUI")
	rootCmd.Flags().AddFlag(runCmd.Flags().Lookup("headless"))
	listCmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Pick an input device interactively")
	analyzeCmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "Replay the file at its real speed")

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	executed, err := rootCmd.ExecuteC()
	if err != nil {
		return nil, err
	}
	// --help and --version run no command.
	if opts.Config == nil {
		return nil, nil
	}
	applog.Debugf("CLI: %s command from %s", opts.Command, executed.CommandPath())
	return opts, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, o := range overrides {
		if err := v.BindPFlag(o.key, flags.Lookup(o.flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", o.flag, err)
		}
		if err := v.BindEnv(o.key); err != nil {
			return fmt.Errorf("bind env %s: %w", o.key, err)
		}
	}
	return nil
}

// loadConfig reads the file and applies every override that viper has a
// value for from a changed flag or the environment.
func loadConfig(v *viper.Viper, path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		if v.IsSet(o.key) {
			o.apply(v, cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
