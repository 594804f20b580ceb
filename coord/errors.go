// Coordinator Errors
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

	gomocup "go-gomocup"
)

// ErrChannelClosed reports that the internal action channel was
// closed without an outcome; this indicates a bug, not peer behavior
var ErrChannelClosed = errors.New("actions channel abruptly closed")

// NotifyError reports a failed transport write to one peer.  It is
// fatal to the match.
type NotifyError struct {
	Color gomocup.Color
	Err   error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("failed to notify %s: %s", e.Color, e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// ListenError reports that a listener task terminated before the
// match was decided.  It is fatal to the match.
type ListenError struct {
	Color gomocup.Color
	Err   error
}

func (e *ListenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s disconnected before the match ended", e.Color)
	}
	return fmt.Sprintf("listener for %s failed: %s", e.Color, e.Err)
}

func (e *ListenError) Unwrap() error {
	return e.Err
}
