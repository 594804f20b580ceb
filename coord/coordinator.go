// Match Coordinator
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

// Package coord runs a match between two player interfaces end to
// end: it multiplexes the action streams of both peers, drives the
// game engine, accounts the clocks, and sequences every notification.
package coord

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	gomocup "go-gomocup"
	"go-gomocup/game"
)

// Mode decides what happens after a game concludes
type Mode uint8

const (
	// SingleGame ends the match after the first outcome
	SingleGame Mode = iota
	// Loop restarts the game after every outcome
	Loop
)

func (m Mode) String() string {
	if m == Loop {
		return "loop"
	}
	return "single"
}

// Size of the internal action channel.  Bounded so that a flooding
// peer blocks its own listener instead of growing the heap.
const actionBacklog = 128

// Coordinator drives a match between two players.  All game state is
// owned by the coordinator's goroutine; the two listener tasks only
// feed the action channel.
type Coordinator struct {
	id    uuid.UUID
	game  *game.Engine
	black *player
	white *player
	mode  Mode
	log   *zap.SugaredLogger
}

// listenExit is the terminal report of one listener task
type listenExit struct {
	color gomocup.Color
	err   error
}

// New creates a coordinator for one match.  The engine must be
// freshly constructed or reset.
func New(engine *game.Engine, black, white gomocup.Interface, mode Mode, log *zap.SugaredLogger) *Coordinator {
	id := uuid.New()
	return &Coordinator{
		id:    id,
		game:  engine,
		black: newPlayer(gomocup.Black, black),
		white: newPlayer(gomocup.White, white),
		mode:  mode,
		log:   log.With("match", id),
	}
}

func (c *Coordinator) player(color gomocup.Color) *player {
	if color == gomocup.Black {
		return c.black
	}
	return c.white
}

func (c *Coordinator) opponent(color gomocup.Color) *player {
	return c.player(color.Other())
}

// notify wraps a notification result into the fatal error carrying
// the peer's color
func notify(p *player, err error) error {
	if err != nil {
		return &NotifyError{Color: p.color, Err: err}
	}
	return nil
}

// Run plays the match to its end and returns the outcome.  It
// returns on the first terminal outcome or the first fatal error,
// whichever comes first; secondary event sources are torn down
// through the shared context.
func (c *Coordinator) Run(ctx context.Context) (gomocup.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	actions := make(chan gomocup.Event, actionBacklog)
	listeners := make(chan listenExit, 2)

	for _, p := range []*player{c.black, c.white} {
		go func(p *player) {
			err := p.iface.Listen(ctx, p.color, actions)
			if ctx.Err() == nil {
				listeners <- listenExit{color: p.color, err: err}
			}
		}(p)
	}

	if err := c.startGame(); err != nil {
		return gomocup.Outcome{}, err
	}

	// A single timer watcher spans the whole match: resets in loop
	// mode return the timers to their paused state without ending
	// this goroutine.
	timeout := make(chan gomocup.Outcome, 1)
	go func() {
		out, err := c.game.RunTimers(ctx)
		if err == nil {
			timeout <- out
		}
	}()

	for {
		select {
		case ev, ok := <-actions:
			if !ok {
				return gomocup.Outcome{}, ErrChannelClosed
			}
			c.log.Debugw("received action",
				"color", ev.Color, "action", ev.Action)

			out, err := c.handle(ev)
			if err != nil {
				return gomocup.Outcome{}, err
			}
			if out != nil {
				return *out, nil
			}

		case out := <-timeout:
			// The turn owner ran out of time.  The engine is
			// terminal already; no further board updates are sent.
			c.log.Infow("timer expired",
				"loser", out.Winner.Other())
			c.endGame()
			return out, nil

		case exit := <-listeners:
			// Listener tasks run for the whole match; any earlier
			// return is a transport failure.
			return gomocup.Outcome{}, &ListenError{
				Color: exit.color, Err: exit.err,
			}

		case <-ctx.Done():
			return gomocup.Outcome{}, ctx.Err()
		}
	}
}

// startGame announces the board and budgets to both players and
// hands the first move to black
func (c *Coordinator) startGame() error {
	size := c.game.BoardSize()

	for _, p := range []*player{c.black, c.white} {
		if err := notify(p, p.iface.NotifyStart(size.W)); err != nil {
			return err
		}
		for _, info := range []gomocup.Information{
			gomocup.TimeoutTurn(c.turnBudget() / time.Millisecond),
			gomocup.TimeoutMatch(c.game.Remaining(p.color) / time.Millisecond),
			gomocup.Rule(0),
		} {
			if err := notify(p, p.iface.NotifyInfo(info)); err != nil {
				return err
			}
		}
		if err := notify(p, p.iface.NotifyAbout()); err != nil {
			return err
		}
	}

	if err := notify(c.black, c.black.iface.NotifyBegin()); err != nil {
		return err
	}
	c.game.Resume(gomocup.Black)

	c.log.Infow("match started", "board", size, "mode", c.mode)
	return nil
}

// restartGame resets the engine and sets up the next game in loop
// mode.  Readiness survives the restart.
func (c *Coordinator) restartGame() error {
	c.game.Reset()

	for _, p := range []*player{c.black, c.white} {
		if err := notify(p, p.iface.NotifyRestart()); err != nil {
			return err
		}
	}
	if err := notify(c.black, c.black.iface.NotifyBegin()); err != nil {
		return err
	}
	c.game.Resume(gomocup.Black)

	c.log.Infow("match restarted")
	return nil
}

// endGame tells both peers that the match is over.  The outcome is
// already decided at this point, so failures are only logged.
func (c *Coordinator) endGame() {
	for _, p := range []*player{c.black, c.white} {
		if err := p.iface.NotifyEnd(); err != nil {
			c.log.Warnw("failed to send end", "color", p.color, "error", err)
		}
	}
}

// turnBudget recovers the per-turn budget for the INFO announcement.
// Both players carry the same budgets.
func (c *Coordinator) turnBudget() time.Duration {
	return c.game.TurnBudget()
}
