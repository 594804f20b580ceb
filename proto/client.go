// Gomocup Line-Protocol Client
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

// Package proto implements the Gomocup text protocol over arbitrary
// byte streams: subprocess standard pipes, sockets, or anything else
// that reads and writes lines.
package proto

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	gomocup "go-gomocup"
)

// Check that Client implements the player interface contract
var _ gomocup.Interface = (*Client)(nil)

// Client speaks the Gomocup line protocol with one player over a
// byte stream.  The reading half is used by Listen and the writing
// half by the notify methods; writes are serialised by an internal
// lock, so both halves can be driven from different goroutines.
type Client struct {
	rwc io.ReadWriteCloser
	log *zap.SugaredLogger

	iolock sync.Mutex
	once   sync.Once

	// halt is additional teardown run on Close, used by transports
	// that own more than the stream (a child process, a container)
	halt func() error
}

// NewClient wraps a byte stream into a player interface
func NewClient(rwc io.ReadWriteCloser, log *zap.SugaredLogger) *Client {
	return &Client{rwc: rwc, log: log}
}

// send writes one protocol line
func (c *Client) send(format string, args ...interface{}) error {
	c.iolock.Lock()
	defer c.iolock.Unlock()

	line := fmt.Sprintf(format, args...)
	c.log.Debugw("sending", "line", line)
	_, err := io.WriteString(c.rwc, line+"\n")
	return err
}

// Listen reads lines from the peer until it disconnects, forwarding
// every recognised action to SINK.  Unrecognised lines are logged and
// skipped; they are the peer's problem, not a reason to end the
// match.
func (c *Client) Listen(ctx context.Context, color gomocup.Color, sink chan<- gomocup.Event) error {
	scanner := bufio.NewScanner(c.rwc)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.log.Debugw("received", "color", color, "line", line)

		action, err := ParseAction(line)
		if err != nil {
			c.log.Warnw("unparseable input", "color", color, "line", line, "error", err)
			continue
		}

		select {
		case sink <- gomocup.Event{Color: color, Action: action}:
		case <-ctx.Done():
			return nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		// See https://github.com/golang/go/commit/e9ad52e46dee4b4f9c73ff44f44e1e234815800f
		if !strings.Contains(err.Error(), "use of closed network connection") {
			return err
		}
	}
	return nil
}

func (c *Client) NotifyStart(size uint8) error {
	return c.send("START %d", size)
}

func (c *Client) NotifyRestart() error {
	return c.send("RESTART")
}

func (c *Client) NotifyTurn(pos gomocup.Position) error {
	return c.send("TURN %s", pos)
}

func (c *Client) NotifyBegin() error {
	return c.send("BEGIN")
}

// NotifyBoard replays prior moves as a single BOARD ... DONE block.
// The block is written in one locked section so no other
// notification can interleave with it.
func (c *Client) NotifyBoard(turns []gomocup.RelativeTurn) error {
	var buf strings.Builder
	buf.WriteString("BOARD\n")
	for _, turn := range turns {
		fmt.Fprintf(&buf, "%s\n", turn)
	}
	buf.WriteString("DONE")
	return c.send("%s", buf.String())
}

func (c *Client) NotifyInfo(info gomocup.Information) error {
	return c.send("INFO %s", info)
}

func (c *Client) NotifyResult(result gomocup.RelativeOutcome) error {
	return c.send("RESULT %d", uint8(result))
}

func (c *Client) NotifyEnd() error {
	return c.send("END")
}

func (c *Client) NotifyAbout() error {
	return c.send("ABOUT")
}

func (c *Client) NotifyUnknown(content string) error {
	return c.send("UNKNOWN %s", content)
}

func (c *Client) NotifyError(content string) error {
	return c.send("ERROR %s", content)
}

// Close shuts the stream down and runs the transport teardown.
// Closing twice is harmless.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		err = c.rwc.Close()
		if c.halt != nil {
			if herr := c.halt(); err == nil {
				err = herr
			}
		}
	})
	return err
}
