package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type LevelList []logrus.Level

func (a LevelList) MarshalText() ([]byte, error) {
	if len(a) == 0 {
		return []byte("-"), nil
	}

	var s string

	for i, e := range a {
		if i != 0 {
			s += ","
		}

		s += e.String()
	}

	return []byte(s), nil
}

func (a *LevelList) UnmarshalText(d []byte) error {
	if string(d) == "" || string(d) == "-" {
		*a = LevelList{}
		return nil
	}

	var aa LevelList

	for _, e := range strings.Split(string(d), ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}

		l, err := logrus.ParseLevel(e)
		if err != nil {
			return fmt.Errorf("config.LevelList.UnmarshalText: could not parse value as logrus level: %w", err)
		}

		aa = append(aa, l)
	}

	*a = aa

	return nil
}

type LogQueries struct {
	Enabled    bool
	SlowerThan time.Duration
}

func (l LogQueries) String() string {
	if l.Enabled {
		if l.SlowerThan != 0 {
			return ">" + l.SlowerThan.String()
		}

		return "all"
	}

	return "none"
}

func (l LogQueries) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *LogQueries) UnmarshalText(d []byte) error {
	s := string(d)

	switch s {
	case "all":
		l.Enabled = true
		l.SlowerThan = 0
		return nil
	case "", "none":
		l.Enabled = false
		l.SlowerThan = 0
		return nil
	default:
		if s[0] == '>' && len(s) > 1 {
			d, err := time.ParseDuration(s[1:])
			if err != nil {
				return fmt.Errorf("config.LogQueries.UnmarshalText: could not parse value as duration: %w", err)
			}
			l.Enabled = true
			l.SlowerThan = d
			return nil
		}

		return fmt.Errorf("config.LogQueries.UnmarshalText: unrecognised input %q; valid options are none, all, or >x where x is a duration", s)
	}
}

func (l *LogQueries) IsZero() bool {
	return !l.Enabled && l.SlowerThan == 0
}

// Duration is a time.Duration that reads and writes as "200ms", "1s", etc.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("config.Duration.UnmarshalText: %w", err)
	}

	if v <= 0 {
		return fmt.Errorf("config.Duration.UnmarshalText: duration must be positive; was %s", v)
	}

	*d = Duration(v)

	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

type StoreDriver string

const (
	StoreDriverBBolt  = StoreDriver("bbolt")
	StoreDriverSQLite = StoreDriver("sqlite")
	StoreDriverMemory = StoreDriver("memory")
)

func (s StoreDriver) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

func (s *StoreDriver) UnmarshalText(d []byte) error {
	switch v := StoreDriver(strings.ToLower(strings.TrimSpace(string(d)))); v {
	case StoreDriverBBolt, StoreDriverSQLite, StoreDriverMemory:
		*s = v
		return nil
	default:
		return fmt.Errorf("config.StoreDriver.UnmarshalText: unrecognised driver %q; valid options are bbolt, sqlite, or memory", string(d))
	}
}

type Config struct {
	Config            string       `name:"config" toml:"config" yaml:"config" help:"Config file location."`
	LogLevel          logrus.Level `name:"log_level" toml:"log_level" yaml:"log_level" help:"Global log level."`
	LogDebugLevels    LevelList    `name:"log_debug_levels" toml:"log_debug_levels" yaml:"log_debug_levels" help:"Which log levels to include stack data on."`
	LogQueries        LogQueries   `name:"log_queries" toml:"log_queries" yaml:"log_queries" help:"Log SQL queries made by the sqlite store."`
	LogSORM           bool         `name:"log_sorm" toml:"log_sorm" yaml:"log_sorm" help:"Log every query built by sorm."`
	StoreDriver       StoreDriver  `name:"store_driver" toml:"store_driver" yaml:"store_driver" help:"Key-value store backend: bbolt, sqlite, or memory."`
	StorePath         string       `name:"store_path" toml:"store_path" yaml:"store_path" help:"Location of the key-value store file."`
	ApplicationAddr   string       `name:"application_addr" toml:"application_addr" yaml:"application_addr" help:"Address to listen on for application server."`
	ApplicationMinify bool         `name:"application_minify" toml:"application_minify" yaml:"application_minify" help:"Minify JSON output."`
	TickInterval      Duration     `name:"tick_interval" toml:"tick_interval" yaml:"tick_interval" help:"How often a simulated download advances."`
	RandomSeed        int          `name:"random_seed" toml:"random_seed" yaml:"random_seed" help:"Seed for simulated progress; 0 picks one from the clock."`
}
