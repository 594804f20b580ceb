// Binary Protocol Definition
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

package tcp

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Version of the binary protocol.  A connecting player announces its
// own version and is rejected on anything but an exact match.
const Version = "0.2.0"

// Action identifiers.  Multi-byte integers on the wire are
// big-endian; strings are a u32 length followed by UTF-8 bytes.
const (
	// Arbiter to player
	idProtocolCompatible byte = 0x00
	idStart              byte = 0x01
	idRestart            byte = 0x02
	idTurn               byte = 0x03
	idBegin              byte = 0x04
	idBoard              byte = 0x05
	idInfo               byte = 0x06
	idResult             byte = 0x07
	idEnd                byte = 0x08
	idAbout              byte = 0x09
	idUnknown            byte = 0x0A
	idError              byte = 0x0B

	// Player to arbiter
	idPlayerProtocolVersion byte = 0x0C
	idPlayerReady           byte = 0x0D
	idPlayerPlay            byte = 0x0E
	idPlayerMetadata        byte = 0x0F
	idPlayerUnknown         byte = 0x10
	idPlayerError           byte = 0x11
	idPlayerMessage         byte = 0x12
	idPlayerDebug           byte = 0x13
	idPlayerSuggestion      byte = 0x14
)

// appendString appends a length-prefixed UTF-8 string
func appendString(frame []byte, s string) []byte {
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(s)))
	return append(frame, s...)
}

// readString reads a length-prefixed UTF-8 string
func readString(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	if length > maxPayload {
		return "", fmt.Errorf("refusing %d byte payload", length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// maxPayload bounds string payloads so a hostile peer cannot make
// the arbiter allocate arbitrary amounts of memory
const maxPayload = 1 << 20
