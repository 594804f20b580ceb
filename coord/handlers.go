// Coordinator Action Handlers
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
	"errors"
	"fmt"
	"time"

	gomocup "go-gomocup"
	"go-gomocup/game"
)

// handle dispatches one inbound action.  Handlers run strictly
// serially on the coordinator's goroutine, so no two actions are ever
// processed concurrently.  A non-nil outcome ends the match; a
// non-nil error is fatal.
func (c *Coordinator) handle(ev gomocup.Event) (*gomocup.Outcome, error) {
	p := c.player(ev.Color)

	switch act := ev.Action.(type) {
	case gomocup.Ready:
		return nil, c.handleReady(p)
	case gomocup.Play:
		return c.handlePlay(p, act.Position)
	case gomocup.Metadata:
		p.metadata = act.Fields
		c.log.Debugw("stored metadata", "color", p.color, "fields", len(act.Fields))
		return nil, nil
	case gomocup.Unknown:
		c.log.Errorw("player did not recognise a directive",
			"color", p.color, "content", act.Content)
		return nil, nil
	case gomocup.ErrorMessage:
		c.log.Errorw("player reported an error",
			"color", p.color, "content", act.Content)
		return nil, nil
	case gomocup.Message:
		c.log.Infow("player message",
			"color", p.color, "content", act.Content)
		return nil, nil
	case gomocup.Debug:
		c.log.Debugw("player debug output",
			"color", p.color, "content", act.Content)
		return nil, nil
	case gomocup.Suggestion:
		// informational only, never applied to the board
		c.log.Infow("player suggested a move",
			"color", p.color, "position", act.Position)
		return nil, nil
	default:
		return nil, fmt.Errorf("unhandled action %T from %s", ev.Action, p.color)
	}
}

// handleReady records readiness.  A repeated READY is answered with a
// protocol error but does not end the match.
func (c *Coordinator) handleReady(p *player) error {
	if p.ready {
		return notify(p, p.iface.NotifyError("player has already declared to be ready"))
	}
	p.ready = true
	return nil
}

// handlePlay adjudicates a move.  Board-rule violations disqualify
// the mover: the engine error is reported to the peer and then
// surfaced as the fatal match error.
func (c *Coordinator) handlePlay(p *player, pos gomocup.Position) (*gomocup.Outcome, error) {
	if !p.ready {
		return nil, notify(p, p.iface.NotifyError("player has not declared to be ready"))
	}

	out, err := c.game.RegisterMove(p.color, pos)
	if err != nil {
		// A move on a decided game is only a protocol violation;
		// the outcome the timers produced still stands.
		if errors.Is(err, game.ErrGameOver) {
			return nil, notify(p, p.iface.NotifyError(err.Error()))
		}
		if nerr := notify(p, p.iface.NotifyError(err.Error())); nerr != nil {
			return nil, nerr
		}
		return nil, err
	}

	opp := c.opponent(p.color)
	if out != nil {
		return c.concludeGame(p, opp, *out)
	}

	if err := notify(opp, opp.iface.NotifyTurn(pos)); err != nil {
		return nil, err
	}
	if err := notify(p, p.iface.NotifyInfo(
		gomocup.TimeLeft(c.game.Remaining(p.color) / time.Millisecond))); err != nil {
		return nil, err
	}
	// Resume after the turn notification so the opponent is not
	// charged for the coordinator's write latency.
	c.game.Resume(opp.color)

	return nil, nil
}

// concludeGame distributes the per-perspective results and either
// terminates the match or, in loop mode, starts the next game
func (c *Coordinator) concludeGame(p, opp *player, out gomocup.Outcome) (*gomocup.Outcome, error) {
	c.log.Infow("game concluded", "outcome", out)

	if err := notify(p, p.iface.NotifyResult(out.Relative(p.color))); err != nil {
		return nil, err
	}
	if err := notify(opp, opp.iface.NotifyResult(out.Relative(opp.color))); err != nil {
		return nil, err
	}

	if c.mode == Loop {
		if err := c.restartGame(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	c.endGame()
	return &out, nil
}
