// Common Types and Interfaces
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

package gomocup

import (
	"context"
	"fmt"
)

// Color identifies one of the two sides of a game
type Color bool

const (
	// Black moves first
	Black Color = false
	// White moves second
	White Color = true
)

// Other returns the opposing color
func (c Color) Other() Color {
	return !c
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// Cell returns the cell status a stone of this color produces
func (c Color) Cell() Cell {
	if c == Black {
		return CellBlack
	}
	return CellWhite
}

// Cell is the status of a single board cell
type Cell uint8

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

// Position is a 2D coordinate on the board
type Position struct {
	X, Y uint8
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// BoardSize is the 2D dimension of a board
type BoardSize struct {
	W, H uint8
}

func (s BoardSize) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Outcome is the final result of a match.  Construct outcomes via Win
// or use Drawn.
type Outcome struct {
	Winner Color
	Draw   bool
}

// Drawn is the outcome of a game that filled the board without a win
var Drawn = Outcome{Draw: true}

// Win returns the outcome of a game won by C
func Win(c Color) Outcome {
	return Outcome{Winner: c}
}

func (o Outcome) String() string {
	if o.Draw {
		return "draw"
	}
	return fmt.Sprintf("%s wins", o.Winner)
}

// Relative translates an outcome into the perspective of one player
func (o Outcome) Relative(c Color) RelativeOutcome {
	switch {
	case o.Draw:
		return RelativeDraw
	case o.Winner == c:
		return RelativeWin
	default:
		return RelativeLoss
	}
}

// RelativeOutcome is a game result from the perspective of the player
// it is sent to.  The values coincide with the result codes of the
// Gomocup protocol.
type RelativeOutcome uint8

const (
	RelativeDraw RelativeOutcome = iota
	RelativeWin
	RelativeLoss
)

func (r RelativeOutcome) String() string {
	switch r {
	case RelativeDraw:
		return "draw"
	case RelativeWin:
		return "win"
	case RelativeLoss:
		return "loss"
	default:
		panic(fmt.Sprintf("illegal relative outcome: %d", uint8(r)))
	}
}

// RelativeField is the owner of a stone from the perspective of the
// player a board replay is sent to.  The values coincide with the
// field codes of the Gomocup BOARD directive.
type RelativeField uint8

const (
	OwnStone      RelativeField = 1
	OpponentStone RelativeField = 2
)

// RelativeTurn is one entry of a board replay
type RelativeTurn struct {
	Position Position
	Field    RelativeField
}

func (t RelativeTurn) String() string {
	return fmt.Sprintf("%s,%d", t.Position, t.Field)
}

// An Action is a message a player sent to the arbiter.  Actions
// originate from untrusted peers and may be nonsensical; the
// coordinator decides what each one means in the current state.
type Action interface{ action() }

type (
	// Ready declares that the player is prepared to play
	Ready struct{}

	// Play places a stone at a position
	Play struct{ Position Position }

	// Metadata carries key-value information about the player
	Metadata struct{ Fields map[string]string }

	// Unknown reports that the player did not recognise the last
	// directive it received
	Unknown struct{ Content string }

	// ErrorMessage reports that the player considered the last
	// directive invalid
	ErrorMessage struct{ Content string }

	// Message is a free-form message from the player
	Message struct{ Content string }

	// Debug is development output from the player
	Debug struct{ Content string }

	// Suggestion proposes a move without playing it
	Suggestion struct{ Position Position }
)

func (Ready) action()        {}
func (Play) action()         {}
func (Metadata) action()     {}
func (Unknown) action()      {}
func (ErrorMessage) action() {}
func (Message) action()      {}
func (Debug) action()        {}
func (Suggestion) action()   {}

// Event pairs an action with the color of the player that sent it
type Event struct {
	Color  Color
	Action Action
}

// Information is a configuration hint sent to a player via the INFO
// directive.  Each variant renders into its wire form.
type Information interface {
	fmt.Stringer
	information()
}

type (
	// TimeoutTurn is the time limit for a single turn in milliseconds
	TimeoutTurn uint64
	// TimeoutMatch is the time limit for the whole match in milliseconds
	TimeoutMatch uint64
	// MaxMemory is the memory limit for the player in bytes
	MaxMemory uint64
	// TimeLeft is the remaining match time in milliseconds
	TimeLeft uint64
	// GameType is the game type identifier
	GameType uint8
	// Rule is the rule identifier (0 is freestyle gomoku)
	Rule uint8
	// Evaluate is a cell the player should evaluate
	Evaluate struct{ X, Y int32 }
	// Folder is a directory the player may use for persistent files
	Folder string
)

func (TimeoutTurn) information()  {}
func (TimeoutMatch) information() {}
func (MaxMemory) information()    {}
func (TimeLeft) information()     {}
func (GameType) information()     {}
func (Rule) information()         {}
func (Evaluate) information()     {}
func (Folder) information()       {}

func (t TimeoutTurn) String() string  { return fmt.Sprintf("timeout_turn %d", uint64(t)) }
func (t TimeoutMatch) String() string { return fmt.Sprintf("timeout_match %d", uint64(t)) }
func (m MaxMemory) String() string    { return fmt.Sprintf("max_memory %d", uint64(m)) }
func (t TimeLeft) String() string     { return fmt.Sprintf("time_left %d", uint64(t)) }
func (t GameType) String() string     { return fmt.Sprintf("game_type %d", uint8(t)) }
func (r Rule) String() string         { return fmt.Sprintf("rule %d", uint8(r)) }
func (e Evaluate) String() string     { return fmt.Sprintf("evaluate %d,%d", e.X, e.Y) }
func (f Folder) String() string       { return fmt.Sprintf("folder %s", string(f)) }

// Interface is the contract between the coordinator and one player,
// whatever the transport behind it.  The listening half and the
// notifying half are used from different goroutines; implementations
// must serialise each half internally.
type Interface interface {
	// Listen reads actions from the peer and forwards them to SINK
	// as (color, action) pairs in the order they were received.  It
	// returns nil on a clean disconnect and an error otherwise.
	// Cancelling CTX stops the listener without an error.
	Listen(ctx context.Context, color Color, sink chan<- Event) error

	NotifyStart(size uint8) error
	NotifyRestart() error
	NotifyTurn(pos Position) error
	NotifyBegin() error
	NotifyBoard(turns []RelativeTurn) error
	NotifyInfo(info Information) error
	NotifyResult(result RelativeOutcome) error
	NotifyEnd() error
	NotifyAbout() error
	NotifyUnknown(content string) error
	NotifyError(content string) error

	// Close releases the transport.  For subprocess transports this
	// terminates the child process.
	Close() error
}
