// Gomocup Protocol Parsing
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

package proto

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gomocup "go-gomocup"
)

var (
	// Regular expressions to recognise inbound lines
	rePlay     = regexp.MustCompile(`^(\d{1,3}),(\d{1,3})$`)
	reSuggest  = regexp.MustCompile(`^SUGGEST\s+(\d{1,3}),(\d{1,3})$`)
	reMetadata = regexp.MustCompile(`([\w-]+)="([^"]*)"`)

	// ErrUnknownCommand is returned for a line that matches no
	// known inbound form
	ErrUnknownCommand = errors.New("unknown command")
)

// parsePosition converts two decimal captures into a position
func parsePosition(xs, ys string) (gomocup.Position, error) {
	x, err := strconv.ParseUint(xs, 10, 8)
	if err != nil {
		return gomocup.Position{}, fmt.Errorf("invalid coordinate %q: %w", xs, err)
	}
	y, err := strconv.ParseUint(ys, 10, 8)
	if err != nil {
		return gomocup.Position{}, fmt.Errorf("invalid coordinate %q: %w", ys, err)
	}
	return gomocup.Position{X: uint8(x), Y: uint8(y)}, nil
}

// content strips a directive keyword and the separating space off a
// line, keeping the rest verbatim
func content(line, keyword string) string {
	rest := strings.TrimPrefix(line, keyword)
	return strings.TrimPrefix(rest, " ")
}

// ParseAction interprets one line sent by a player.  Lines that match
// no inbound form of the protocol yield ErrUnknownCommand.
func ParseAction(line string) (gomocup.Action, error) {
	line = strings.TrimSpace(line)

	switch {
	case line == "OK":
		return gomocup.Ready{}, nil

	case rePlay.MatchString(line):
		caps := rePlay.FindStringSubmatch(line)
		pos, err := parsePosition(caps[1], caps[2])
		if err != nil {
			return nil, err
		}
		return gomocup.Play{Position: pos}, nil

	case reSuggest.MatchString(line):
		caps := reSuggest.FindStringSubmatch(line)
		pos, err := parsePosition(caps[1], caps[2])
		if err != nil {
			return nil, err
		}
		return gomocup.Suggestion{Position: pos}, nil

	case strings.HasPrefix(line, "UNKNOWN"):
		return gomocup.Unknown{Content: content(line, "UNKNOWN")}, nil

	case strings.HasPrefix(line, "ERROR"):
		return gomocup.ErrorMessage{Content: content(line, "ERROR")}, nil

	case strings.HasPrefix(line, "MESSAGE"):
		return gomocup.Message{Content: content(line, "MESSAGE")}, nil

	case strings.HasPrefix(line, "DEBUG"):
		return gomocup.Debug{Content: content(line, "DEBUG")}, nil

	case reMetadata.MatchString(line):
		return gomocup.Metadata{Fields: ParseMetadata(line)}, nil

	default:
		return nil, ErrUnknownCommand
	}
}

// ParseMetadata extracts the KEY="VALUE" pairs of an ABOUT reply.
// Text outside the pairs is ignored.
func ParseMetadata(s string) map[string]string {
	fields := make(map[string]string)
	for _, caps := range reMetadata.FindAllStringSubmatch(s, -1) {
		fields[caps[1]] = caps[2]
	}
	return fields
}
