package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pingtrend/internal/models"
	"pingtrend/internal/targets"
)

// EnvPrefix is the prefix of environment variables overriding config keys.
const EnvPrefix = "PINGTREND"

// RegisterFlags adds the configuration flags to a flag set
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "config file (yaml, toml or json)")
	fs.DurationP("interval", "i", 60*time.Second, "probe interval")
	fs.DurationP("timeout", "t", 2*time.Second, "timeout for a single echo request")
	fs.IntP("window", "n", 100, "number of samples per target kept for the trend (0 keeps all)")
	fs.Duration("report-interval", 0, "log per-target statistics at this interval (0 disables)")
	fs.Bool("default-targets", true, "add the default gateway and google.com when no targets are given")

	fs.Bool("csv", false, "write samples to a csv file per run")
	fs.String("csv-dir", ".", "directory for csv files")
	fs.String("csv-layout", "long", "csv layout: long (row per sample) or wide (row per tick)")

	fs.String("prober", ProberExec, "echo primitive: exec (system ping) or icmp (sockets)")
	fs.Bool("privileged", false, "use raw icmp sockets instead of unprivileged datagram sockets")
	fs.String("bind4", "0.0.0.0", "IPv4 bind address for the icmp prober (empty disables)")
	fs.String("bind6", "::", "IPv6 bind address for the icmp prober (empty disables)")
	fs.Int("size", 56, "icmp payload size in bytes")

	fs.String("ui", UITerminal, "front end: tui (live dashboard) or plain (line output)")
	fs.String("listen", "", "serve the live chart over http on this address, e.g. :8080")
	fs.String("chart-style", "default", "chart style: default or dark")
	fs.String("chart-out", "", "write the trend chart as png to this path when a run stops")

	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")
}

// Load merges defaults, the optional config file, environment and flags.
// Positional args are targets in the form "address" or "name=address".
func Load(fs *pflag.FlagSet, args []string) (Config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config file not found: %s", path)
			}
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Config{
		DefaultTargets: v.GetBool("default-targets"),
		Interval:       v.GetDuration("interval"),
		Timeout:        v.GetDuration("timeout"),
		Window:         v.GetInt("window"),
		ReportInterval: v.GetDuration("report-interval"),
		CSV:            v.GetBool("csv"),
		CSVDir:         v.GetString("csv-dir"),
		CSVLayout:      v.GetString("csv-layout"),
		Prober:         v.GetString("prober"),
		Privileged:     v.GetBool("privileged"),
		Bind4:          v.GetString("bind4"),
		Bind6:          v.GetString("bind6"),
		PayloadSize:    v.GetInt("size"),
		UI:             v.GetString("ui"),
		Listen:         v.GetString("listen"),
		ChartStyle:     v.GetString("chart-style"),
		ChartOut:       v.GetString("chart-out"),
		LogLevel:       v.GetString("log-level"),
		LogFormat:      v.GetString("log-format"),
	}

	var fileTargets []models.Target
	if err := v.UnmarshalKey("targets", &fileTargets); err != nil {
		return Config{}, fmt.Errorf("invalid targets in config file: %w", err)
	}
	for _, t := range fileTargets {
		nt, err := targets.Normalize(t.Name, t.Address)
		if err != nil {
			return Config{}, fmt.Errorf("invalid target in config file: %w", err)
		}
		cfg.Targets = append(cfg.Targets, nt)
	}

	for _, arg := range args {
		t, err := targets.Parse(arg)
		if err != nil {
			return Config{}, fmt.Errorf("invalid target %q: %w", arg, err)
		}
		cfg.Targets = append(cfg.Targets, t)
	}

	return cfg, nil
}
