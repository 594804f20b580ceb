// Player Record
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

package coord

import (
	gomocup "go-gomocup"
)

// player is the coordinator's record of one side.  It is only ever
// touched from the coordinator's own goroutine; the listener task
// shares nothing but the interface, whose two halves are serialised
// by the implementation.
type player struct {
	color gomocup.Color

	// ready is set when the player acknowledges the game start.
	// Once set it stays set for the lifetime of the coordinator,
	// restarts included.
	ready bool

	// metadata is the last ABOUT reply, nil until one arrives
	metadata map[string]string

	iface gomocup.Interface
}

func newPlayer(color gomocup.Color, iface gomocup.Interface) *player {
	return &player{color: color, iface: iface}
}
