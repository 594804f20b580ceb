// Game Engine
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

// Package game composes a board with one dual timer per player and
// adjudicates moves into match outcomes.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomocup "go-gomocup"
)

// NotYourTurnError reports a move by the player whose clock is not
// running
type NotYourTurnError struct {
	Color gomocup.Color
}

func (e *NotYourTurnError) Error() string {
	return fmt.Sprintf("it is not %s's turn", e.Color)
}

// ErrGameOver reports a move on a game that has already been decided
var ErrGameOver = fmt.Errorf("the game is already decided")

// Engine drives a single gomoku game: it owns the board, decides the
// outcome of every move, and keeps the two clocks.  Exactly one side
// owns the turn between moves; black owns it after construction and
// after every reset.
//
// RegisterMove and Reset are meant to be called from one goroutine
// (the coordinator); RunTimers may be awaited from another.
type Engine struct {
	mu    sync.Mutex
	board *gomocup.Board
	turn  gomocup.Color
	done  bool

	turnBudget time.Duration
	black      *gomocup.Timer
	white      *gomocup.Timer
}

// New creates an engine over an empty board with both timers paused
func New(size gomocup.BoardSize, turn, match time.Duration) *Engine {
	return &Engine{
		board:      gomocup.NewBoard(size),
		turn:       gomocup.Black,
		turnBudget: turn,
		black:      gomocup.NewTimer(turn, match),
		white:      gomocup.NewTimer(turn, match),
	}
}

// TurnBudget returns the per-turn time allowance both players share
func (e *Engine) TurnBudget() time.Duration {
	return e.turnBudget
}

// BoardSize returns the dimensions of the board
func (e *Engine) BoardSize() gomocup.BoardSize {
	return e.board.Size()
}

// Turn returns the color that owns the current turn
func (e *Engine) Turn() gomocup.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turn
}

func (e *Engine) timer(c gomocup.Color) *gomocup.Timer {
	if c == gomocup.Black {
		return e.black
	}
	return e.white
}

// Resume starts the clock of the given player.  The coordinator calls
// this after a turn notification has been delivered, so the player is
// not charged for notification latency.
func (e *Engine) Resume(c gomocup.Color) {
	e.timer(c).Resume()
}

// Remaining returns the unused match budget of the given player
func (e *Engine) Remaining(c gomocup.Color) time.Duration {
	return e.timer(c).Remaining()
}

// RegisterMove applies a move by COLOR at POS.  It returns nil when
// the game continues, the final outcome when the move wins the game
// or fills the board, and an error when the move is illegal.  A
// failed move leaves the board and the turn owner unchanged.
//
// On a continuing move the engine pauses the mover's clock and flips
// the turn owner; resuming the opponent's clock is left to the
// caller.
func (e *Engine) RegisterMove(color gomocup.Color, pos gomocup.Position) (*gomocup.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return nil, ErrGameOver
	}
	if color != e.turn {
		return nil, &NotYourTurnError{Color: color}
	}
	if err := e.board.SetCell(pos, color.Cell()); err != nil {
		return nil, err
	}

	if e.board.CheckWin(pos) {
		e.finish()
		out := gomocup.Win(color)
		return &out, nil
	}
	if e.board.Full() {
		e.finish()
		out := gomocup.Drawn
		return &out, nil
	}

	e.timer(color).Pause()
	e.turn = color.Other()
	return nil, nil
}

// finish marks the game as decided and stops both clocks.  Caller
// must hold e.mu.
func (e *Engine) finish() {
	e.done = true
	e.black.Pause()
	e.white.Pause()
}

// RunTimers blocks until one of the two clocks runs out and returns
// the win of the opponent.  It returns an error only when CTX is
// cancelled first.
func (e *Engine) RunTimers(ctx context.Context) (gomocup.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	expired := make(chan gomocup.Color, 2)
	for _, c := range []gomocup.Color{gomocup.Black, gomocup.White} {
		go func(c gomocup.Color) {
			if e.timer(c).Run(ctx) {
				expired <- c
			}
		}(c)
	}

	select {
	case c := <-expired:
		e.mu.Lock()
		e.done = true
		e.mu.Unlock()
		return gomocup.Win(c.Other()), nil
	case <-ctx.Done():
		return gomocup.Outcome{}, ctx.Err()
	}
}

// Reset empties the board, hands the turn back to black and returns
// both timers to their initial paused state
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.board.Reset()
	e.turn = gomocup.Black
	e.done = false
	e.black.Reset()
	e.white.Reset()
}

// Replay returns the moves currently on the board from the
// perspective of the given player, for the BOARD directive.  The
// scan order is positional, not chronological; the directive carries
// no ordering requirement beyond the stones themselves.
func (e *Engine) Replay(c gomocup.Color) []gomocup.RelativeTurn {
	e.mu.Lock()
	defer e.mu.Unlock()

	var turns []gomocup.RelativeTurn
	size := e.board.Size()
	for y := uint8(0); y < size.H; y++ {
		for x := uint8(0); x < size.W; x++ {
			pos := gomocup.Position{X: x, Y: y}
			cell := e.board.Cell(pos)
			if cell == gomocup.CellEmpty {
				continue
			}
			field := gomocup.OpponentStone
			if cell == c.Cell() {
				field = gomocup.OwnStone
			}
			turns = append(turns, gomocup.RelativeTurn{Position: pos, Field: field})
		}
	}
	return turns
}
