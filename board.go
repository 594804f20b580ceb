// Gomoku Board Implementation
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
	"bytes"
	"fmt"
)

// MinBoardSide is the smallest accepted board dimension.  A board
// smaller than the winning run length cannot decide a game.
const MinBoardSide = 5

// OutOfBoundsError reports a position outside the board
type OutOfBoundsError struct {
	Position Position
	Size     BoardSize
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("position %s out of bounds %s", e.Position, e.Size)
}

// UnavailableError reports a cell that already holds a stone
type UnavailableError struct {
	Position Position
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("position %s points to an unavailable cell", e.Position)
}

// Board represents a gomoku board
type Board struct {
	size  BoardSize
	cells []Cell // row-major, y*W+x
	taken int    // number of occupied cells
}

// The four axes a winning run can lie on, as unit steps
var axes = [4][2]int{
	{1, 0},  // horizontal
	{0, 1},  // vertical
	{1, -1}, // diagonal up
	{1, 1},  // diagonal down
}

// NewBoard allocates an all-empty board of the given size
func NewBoard(size BoardSize) *Board {
	if size.W < MinBoardSide || size.H < MinBoardSide {
		panic(fmt.Sprintf("board %s below minimum side %d", size, MinBoardSide))
	}
	return &Board{
		size:  size,
		cells: make([]Cell, int(size.W)*int(size.H)),
	}
}

// Size returns the dimensions of the board
func (b *Board) Size() BoardSize {
	return b.size
}

// Cell returns the status of the cell at POS.  POS must be in bounds.
func (b *Board) Cell(pos Position) Cell {
	return b.cells[int(pos.Y)*int(b.size.W)+int(pos.X)]
}

// SetCell places a stone at POS.  The board is left unchanged if POS
// is out of bounds or the cell already holds a stone.
func (b *Board) SetCell(pos Position, c Cell) error {
	if pos.X >= b.size.W || pos.Y >= b.size.H {
		return &OutOfBoundsError{Position: pos, Size: b.size}
	}
	if b.Cell(pos) != CellEmpty {
		return &UnavailableError{Position: pos}
	}

	b.cells[int(pos.Y)*int(b.size.W)+int(pos.X)] = c
	b.taken++
	return nil
}

// at returns the cell at signed coordinates, or CellEmpty outside the
// board, so that run counting can walk over the edge
func (b *Board) at(x, y int) Cell {
	if x < 0 || y < 0 || x >= int(b.size.W) || y >= int(b.size.H) {
		return CellEmpty
	}
	return b.cells[y*int(b.size.W)+x]
}

// CheckWin reports whether the stone at POS completes a run of five
// or more cells of its color along one of the four axes
func (b *Board) CheckWin(pos Position) bool {
	c := b.Cell(pos)
	if c == CellEmpty {
		return false
	}

	for _, axis := range axes {
		// Count contiguous same-color cells in both directions
		// from the anchor, then account for the anchor itself.
		run := 1
		for _, sign := range [2]int{1, -1} {
			dx, dy := axis[0]*sign, axis[1]*sign
			x, y := int(pos.X)+dx, int(pos.Y)+dy
			for b.at(x, y) == c {
				run++
				x += dx
				y += dy
			}
		}
		if run >= 5 {
			return true
		}
	}
	return false
}

// Full reports whether no empty cell remains
func (b *Board) Full() bool {
	return b.taken == len(b.cells)
}

// Reset replaces the grid with an all-empty one of the same size
func (b *Board) Reset() {
	b.cells = make([]Cell, len(b.cells))
	b.taken = 0
}

// String renders the board for logs, black stones as X and white
// stones as O
func (b *Board) String() string {
	var buf bytes.Buffer

	for y := 0; y < int(b.size.H); y++ {
		for x := 0; x < int(b.size.W); x++ {
			if x > 0 {
				buf.WriteByte('|')
			}
			switch b.at(x, y) {
			case CellEmpty:
				buf.WriteByte(' ')
			case CellBlack:
				buf.WriteByte('X')
			case CellWhite:
				buf.WriteByte('O')
			}
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}
