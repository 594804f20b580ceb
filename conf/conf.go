// Configuration Specification and Management
//
// Copyright (c) 2024, 2025  The go-gomocup authors
//
// This file is part of go-gomocup.
//
// go-gomocup is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-gomocup is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-gomocup. If not, see
// <http://www.gnu.org/licenses/>

// Package conf loads the arbiter configuration from an optional TOML
// file with command line overrides, plus one TOML file per player
// describing its transport.
package conf

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defconf = "gomocup.toml"

type GameConf struct {
	Size  uint8         `toml:"size"`
	Turn  time.Duration `toml:"turn"`
	Match time.Duration `toml:"match"`
	Mode  string        `toml:"mode"`
}

type DockerConf struct {
	CPUs   int64         `toml:"cpus"`
	Memory int64         `toml:"memory"`
	Warmup time.Duration `toml:"warmup"`
}

// Conf is the arbiter configuration
type Conf struct {
	LogLevel string     `toml:"log-level"`
	Game     GameConf   `toml:"game"`
	Docker   DockerConf `toml:"docker"`

	// Paths to the per-player configuration files, set on the
	// command line
	Black string `toml:"-"`
	White string `toml:"-"`
}

// Configuration object used by default
var defaultConfig = Conf{
	LogLevel: "info",
	Game: GameConf{
		Size:  20,
		Turn:  30 * time.Second,
		Match: 180 * time.Second,
		Mode:  "single",
	},
	Docker: DockerConf{
		Warmup: 30 * time.Second,
	},
}

var (
	cfile    = defconf
	turnSec  uint
	matchSec uint
)

func init() {
	def := &defaultConfig

	flag.StringVar(&def.Black, "black", def.Black,
		"Path to the black player configuration file")
	flag.StringVar(&def.White, "white", def.White,
		"Path to the white player configuration file")
	flag.UintVar(&turnSec, "turn", uint(def.Game.Turn/time.Second),
		"Time budget for a single turn in seconds")
	flag.UintVar(&matchSec, "match", uint(def.Game.Match/time.Second),
		"Cumulative time budget for the match in seconds")
	flag.Func("size", "Side length of the board", func(s string) error {
		_, err := fmt.Sscanf(s, "%d", &def.Game.Size)
		return err
	})
	flag.StringVar(&def.Game.Mode, "mode", def.Game.Mode,
		"What to do after a game ends (single|loop)")
	flag.StringVar(&def.LogLevel, "log-level", def.LogLevel,
		"Log level (debug|info|warn|error)")
	flag.StringVar(&cfile, "conf", cfile, "Path to configuration file")
}

// Load assembles the configuration from the defaults, the optional
// configuration file and the command line.  Values given on the
// command line win.
func Load() (*Conf, error) {
	c := defaultConfig

	file, err := os.Open(cfile)
	switch {
	case err == nil:
		_, err = toml.NewDecoder(file).Decode(&c)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", cfile, err)
		}
	case !os.IsNotExist(err) || cfile != defconf:
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "turn":
			c.Game.Turn = time.Duration(turnSec) * time.Second
		case "match":
			c.Game.Match = time.Duration(matchSec) * time.Second
		case "size":
			c.Game.Size = defaultConfig.Game.Size
		case "mode":
			c.Game.Mode = defaultConfig.Game.Mode
		case "log-level":
			c.LogLevel = defaultConfig.LogLevel
		}
	})

	switch c.Game.Mode {
	case "single", "loop":
	default:
		return nil, fmt.Errorf("invalid mode %q", c.Game.Mode)
	}
	if c.Game.Size < 5 {
		return nil, fmt.Errorf("board size %d is below the minimum of 5", c.Game.Size)
	}
	if c.Black == "" || c.White == "" {
		return nil, fmt.Errorf("both player configuration files are required")
	}

	return &c, nil
}

// Dump serialises the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	return toml.NewEncoder(wr).Encode(c)
}

// NewLogger builds the process logger for a textual level
func NewLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
