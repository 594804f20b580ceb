// Player Configuration
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

package conf

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Transport protocols a player file may select
const (
	ProtocolStdio  = "stdio"
	ProtocolTCP    = "tcp"
	ProtocolWS     = "ws"
	ProtocolDocker = "docker"
)

type StdioConf struct {
	Binary string   `toml:"binary"`
	Args   []string `toml:"args"`
}

type TCPConf struct {
	Address string `toml:"address"`
	// Passive waits for the player to connect instead of dialing
	// out to it
	Passive bool `toml:"passive"`
}

type WSConf struct {
	Address string `toml:"address"`
}

type DockerPlayerConf struct {
	Image string `toml:"image"`
}

// PlayerConf describes how to reach one player
type PlayerConf struct {
	Protocol string           `toml:"protocol"`
	Stdio    StdioConf        `toml:"stdio"`
	TCP      TCPConf          `toml:"tcp"`
	WS       WSConf           `toml:"ws"`
	Docker   DockerPlayerConf `toml:"docker"`
}

// LoadPlayer reads and validates one player configuration file
func LoadPlayer(path string) (*PlayerConf, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var c PlayerConf
	if _, err := toml.NewDecoder(file).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	switch c.Protocol {
	case ProtocolStdio:
		if c.Stdio.Binary == "" {
			return nil, fmt.Errorf("%s: stdio player without a binary", path)
		}
	case ProtocolTCP:
		if c.TCP.Address == "" {
			return nil, fmt.Errorf("%s: tcp player without an address", path)
		}
	case ProtocolWS:
		if c.WS.Address == "" {
			return nil, fmt.Errorf("%s: websocket player without an address", path)
		}
	case ProtocolDocker:
		if c.Docker.Image == "" {
			return nil, fmt.Errorf("%s: docker player without an image", path)
		}
	default:
		return nil, fmt.Errorf("%s: unknown protocol %q", path, c.Protocol)
	}

	return &c, nil
}
