// Game Engine Tests
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

package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gomocup "go-gomocup"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(gomocup.BoardSize{W: 15, H: 15}, time.Minute, 10*time.Minute)
}

// play registers an alternating sequence of moves, black first, and
// requires every move but possibly the last to continue the game
func play(t *testing.T, e *Engine, moves ...gomocup.Position) *gomocup.Outcome {
	t.Helper()

	color := gomocup.Black
	for i, pos := range moves {
		out, err := e.RegisterMove(color, pos)
		require.NoErrorf(t, err, "move %d (%s at %s)", i, color, pos)
		if out != nil {
			require.Equalf(t, len(moves)-1, i, "game ended early on move %d", i)
			return out
		}
		color = color.Other()
	}
	return nil
}

func TestTurnAlternation(t *testing.T) {
	engine := newEngine(t)
	require.Equal(t, gomocup.Black, engine.Turn())

	moves := []gomocup.Position{
		{X: 7, Y: 7}, {X: 0, Y: 0}, {X: 7, Y: 8}, {X: 0, Y: 1},
	}
	for k, pos := range moves {
		// after k registered moves black owns the turn iff k is even
		want := gomocup.Black
		if k%2 == 1 {
			want = gomocup.White
		}
		require.Equal(t, want, engine.Turn(), "before move %d", k)

		out, err := engine.RegisterMove(engine.Turn(), pos)
		require.NoError(t, err)
		require.Nil(t, out)
	}
	assert.Equal(t, gomocup.Black, engine.Turn())
}

func TestNotYourTurn(t *testing.T) {
	engine := newEngine(t)

	_, err := engine.RegisterMove(gomocup.White, gomocup.Position{X: 7, Y: 7})
	var nyt *NotYourTurnError
	require.ErrorAs(t, err, &nyt)
	assert.Equal(t, gomocup.White, nyt.Color)

	// the failed move must not have flipped the turn
	assert.Equal(t, gomocup.Black, engine.Turn())
}

func TestBoardErrorsPropagate(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.RegisterMove(gomocup.Black, gomocup.Position{X: 7, Y: 7})
	require.NoError(t, err)
	require.Nil(t, out)

	_, err = engine.RegisterMove(gomocup.White, gomocup.Position{X: 7, Y: 7})
	var unav *gomocup.UnavailableError
	require.ErrorAs(t, err, &unav)

	_, err = engine.RegisterMove(gomocup.White, gomocup.Position{X: 200, Y: 200})
	var oob *gomocup.OutOfBoundsError
	require.ErrorAs(t, err, &oob)

	// white still owns the turn after two failed attempts
	assert.Equal(t, gomocup.White, engine.Turn())
}

func TestCornerMoves(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.RegisterMove(gomocup.Black, gomocup.Position{X: 0, Y: 0})
	require.NoError(t, err)
	require.Nil(t, out)

	out, err = engine.RegisterMove(gomocup.White, gomocup.Position{X: 14, Y: 14})
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestWinOnClosingMove(t *testing.T) {
	engine := newEngine(t)

	out := play(t, engine,
		gomocup.Position{X: 7, Y: 7}, gomocup.Position{X: 0, Y: 0},
		gomocup.Position{X: 7, Y: 8}, gomocup.Position{X: 0, Y: 1},
		gomocup.Position{X: 7, Y: 9}, gomocup.Position{X: 0, Y: 2},
		gomocup.Position{X: 7, Y: 10}, gomocup.Position{X: 0, Y: 3},
		gomocup.Position{X: 7, Y: 11},
	)
	require.NotNil(t, out)
	assert.Equal(t, gomocup.Win(gomocup.Black), *out)
}

// A filled 5x5 board with no run of five for either color.  Rows are
// listed top to bottom; B is black, W is white; black holds 13 cells
// so the position is reachable by strict alternation.
var drawGrid = [5]string{
	"BBWWB",
	"BWWBB",
	"WWWBW",
	"WBBWB",
	"BBWWB",
}

func TestDrawOnFullBoard(t *testing.T) {
	engine := New(gomocup.BoardSize{W: 5, H: 5}, time.Minute, 10*time.Minute)

	var black, white []gomocup.Position
	for y, row := range drawGrid {
		for x, c := range row {
			pos := gomocup.Position{X: uint8(x), Y: uint8(y)}
			if c == 'B' {
				black = append(black, pos)
			} else {
				white = append(white, pos)
			}
		}
	}
	require.Len(t, black, 13)
	require.Len(t, white, 12)

	var moves []gomocup.Position
	for i := range white {
		moves = append(moves, black[i], white[i])
	}
	moves = append(moves, black[len(black)-1])

	out := play(t, engine, moves...)
	require.NotNil(t, out)
	assert.Equal(t, gomocup.Drawn, *out)
}

func TestMoveAfterGameOver(t *testing.T) {
	engine := newEngine(t)

	play(t, engine,
		gomocup.Position{X: 7, Y: 7}, gomocup.Position{X: 0, Y: 0},
		gomocup.Position{X: 7, Y: 8}, gomocup.Position{X: 0, Y: 1},
		gomocup.Position{X: 7, Y: 9}, gomocup.Position{X: 0, Y: 2},
		gomocup.Position{X: 7, Y: 10}, gomocup.Position{X: 0, Y: 3},
		gomocup.Position{X: 7, Y: 11},
	)

	_, err := engine.RegisterMove(gomocup.White, gomocup.Position{X: 1, Y: 1})
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestRunTimersReturnsOpponentWin(t *testing.T) {
	engine := New(gomocup.BoardSize{W: 15, H: 15}, 50*time.Millisecond, time.Minute)

	done := make(chan gomocup.Outcome, 1)
	go func() {
		out, err := engine.RunTimers(context.Background())
		if err == nil {
			done <- out
		}
	}()

	// white's clock runs and expires; black wins
	engine.Resume(gomocup.White)

	select {
	case out := <-done:
		assert.Equal(t, gomocup.Win(gomocup.Black), out)
	case <-time.After(5 * time.Second):
		t.Fatal("RunTimers did not return")
	}

	// the expired game rejects further moves
	_, err := engine.RegisterMove(gomocup.Black, gomocup.Position{X: 7, Y: 7})
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestReset(t *testing.T) {
	engine := newEngine(t)

	play(t, engine,
		gomocup.Position{X: 7, Y: 7}, gomocup.Position{X: 0, Y: 0},
		gomocup.Position{X: 7, Y: 8}, gomocup.Position{X: 0, Y: 1},
		gomocup.Position{X: 7, Y: 9}, gomocup.Position{X: 0, Y: 2},
		gomocup.Position{X: 7, Y: 10}, gomocup.Position{X: 0, Y: 3},
		gomocup.Position{X: 7, Y: 11},
	)

	engine.Reset()
	require.Equal(t, gomocup.Black, engine.Turn())
	assert.Empty(t, engine.Replay(gomocup.Black))

	out, err := engine.RegisterMove(gomocup.Black, gomocup.Position{X: 7, Y: 7})
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestReplayPerspective(t *testing.T) {
	engine := newEngine(t)

	play(t, engine,
		gomocup.Position{X: 7, Y: 7}, gomocup.Position{X: 0, Y: 0},
		gomocup.Position{X: 7, Y: 8},
	)

	for _, test := range []struct {
		color gomocup.Color
		own   int
		opp   int
	}{
		{gomocup.Black, 2, 1},
		{gomocup.White, 1, 2},
	} {
		turns := engine.Replay(test.color)
		require.Len(t, turns, 3)

		var own, opp int
		for _, turn := range turns {
			switch turn.Field {
			case gomocup.OwnStone:
				own++
			case gomocup.OpponentStone:
				opp++
			}
		}
		assert.Equal(t, test.own, own, "own stones for %s", test.color)
		assert.Equal(t, test.opp, opp, "opponent stones for %s", test.color)
	}
}
