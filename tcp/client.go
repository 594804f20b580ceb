// Binary TCP Player Transport
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

// Package tcp implements the versioned binary player protocol over a
// duplex stream, dialing out to a player or waiting for one to
// connect.
package tcp

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	gomocup "go-gomocup"
	"go-gomocup/proto"
)

// IncompatibleVersionError reports a peer announcing a protocol
// version this arbiter does not speak
type IncompatibleVersionError struct {
	Peer string
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("arbiter protocol version %q is incompatible with player version %q",
		Version, e.Peer)
}

// Check that Client implements the player interface contract
var _ gomocup.Interface = (*Client)(nil)

// Client speaks the binary protocol with one player over a duplex
// stream.  Reads belong to Listen, writes to the notify methods;
// each direction is serialised by its own lock.
type Client struct {
	conn io.ReadWriteCloser
	log  *zap.SugaredLogger

	rlock sync.Mutex
	wlock sync.Mutex
	once  sync.Once

	// halt is additional teardown run on Close, used by transports
	// that own more than the connection
	halt func() error
}

// NewClient performs the version handshake on a fresh connection and
// wraps it into a player interface.  The connection is closed if the
// handshake fails.
func NewClient(conn io.ReadWriteCloser, log *zap.SugaredLogger) (*Client, error) {
	cli := &Client{conn: conn, log: log}

	var id [1]byte
	if _, err := io.ReadFull(conn, id[:]); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake read failed: %w", err)
	}
	if id[0] != idPlayerProtocolVersion {
		cli.writeError("expected a protocol version announcement")
		conn.Close()
		return nil, fmt.Errorf("unexpected handshake action %#02x", id[0])
	}

	peer, err := readString(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake read failed: %w", err)
	}
	if peer != Version {
		verr := &IncompatibleVersionError{Peer: peer}
		cli.writeError(verr.Error())
		conn.Close()
		return nil, verr
	}

	if err := cli.write([]byte{idProtocolCompatible}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake write failed: %w", err)
	}

	log.Debugw("player handshake complete", "version", peer)
	return cli, nil
}

// Connect dials a listening player and performs the handshake
func Connect(ctx context.Context, address string, log *zap.SugaredLogger) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to dial player at %s: %w", address, err)
	}
	log.Debugw("connected to player", "address", address)
	return NewClient(conn, log)
}

// Accept binds ADDRESS and waits for one player to connect, then
// performs the handshake.  Port 0 picks an ephemeral port.
// Cancelling CTX aborts the wait.
func Accept(ctx context.Context, address string, log *zap.SugaredLogger) (*Client, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	defer ln.Close()
	log.Infow("waiting for player", "address", ln.Addr())

	type accepted struct {
		conn net.Conn
		err  error
	}
	ch := make(chan accepted, 1)
	go func() {
		conn, err := ln.Accept()
		ch <- accepted{conn, err}
	}()

	select {
	case acc := <-ch:
		if acc.err != nil {
			return nil, acc.err
		}
		log.Debugw("player connected", "remote", acc.conn.RemoteAddr())
		return NewClient(acc.conn, log)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// write sends one frame
func (c *Client) write(frame []byte) error {
	c.wlock.Lock()
	defer c.wlock.Unlock()

	_, err := c.conn.Write(frame)
	return err
}

// writeError sends an ERROR frame, ignoring failures; it is used on
// paths that are about to tear the connection down anyway
func (c *Client) writeError(content string) {
	_ = c.write(appendString([]byte{idError}, content))
}

// Listen reads frames from the peer until it disconnects.  An
// unknown action identifier desynchronises the framing and is
// reported as an error.
func (c *Client) Listen(ctx context.Context, color gomocup.Color, sink chan<- gomocup.Event) error {
	for {
		c.rlock.Lock()
		action, err := c.readAction()
		c.rlock.Unlock()

		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		c.log.Debugw("received action", "color", color, "action", action)

		select {
		case sink <- gomocup.Event{Color: color, Action: action}:
		case <-ctx.Done():
			return nil
		}
	}
}

// readAction decodes one inbound frame
func (c *Client) readAction() (gomocup.Action, error) {
	var id [1]byte
	if _, err := io.ReadFull(c.conn, id[:]); err != nil {
		return nil, err
	}

	switch id[0] {
	case idPlayerReady:
		return gomocup.Ready{}, nil

	case idPlayerPlay:
		var pos [2]byte
		if _, err := io.ReadFull(c.conn, pos[:]); err != nil {
			return nil, err
		}
		return gomocup.Play{Position: gomocup.Position{X: pos[0], Y: pos[1]}}, nil

	case idPlayerSuggestion:
		var pos [2]byte
		if _, err := io.ReadFull(c.conn, pos[:]); err != nil {
			return nil, err
		}
		return gomocup.Suggestion{Position: gomocup.Position{X: pos[0], Y: pos[1]}}, nil

	case idPlayerMetadata:
		// the payload reuses the textual KEY="VALUE" form
		s, err := readString(c.conn)
		if err != nil {
			return nil, err
		}
		return gomocup.Metadata{Fields: proto.ParseMetadata(s)}, nil

	case idPlayerUnknown:
		s, err := readString(c.conn)
		if err != nil {
			return nil, err
		}
		return gomocup.Unknown{Content: s}, nil

	case idPlayerError:
		s, err := readString(c.conn)
		if err != nil {
			return nil, err
		}
		return gomocup.ErrorMessage{Content: s}, nil

	case idPlayerMessage:
		s, err := readString(c.conn)
		if err != nil {
			return nil, err
		}
		return gomocup.Message{Content: s}, nil

	case idPlayerDebug:
		s, err := readString(c.conn)
		if err != nil {
			return nil, err
		}
		return gomocup.Debug{Content: s}, nil

	default:
		return nil, fmt.Errorf("unknown action identifier %#02x", id[0])
	}
}

func (c *Client) NotifyStart(size uint8) error {
	return c.write([]byte{idStart, size})
}

func (c *Client) NotifyRestart() error {
	return c.write([]byte{idRestart})
}

func (c *Client) NotifyTurn(pos gomocup.Position) error {
	return c.write([]byte{idTurn, pos.X, pos.Y})
}

func (c *Client) NotifyBegin() error {
	return c.write([]byte{idBegin})
}

// NotifyBoard frames the replay as a u32 turn count followed by one
// (x, y, field) triple per turn
func (c *Client) NotifyBoard(turns []gomocup.RelativeTurn) error {
	frame := []byte{idBoard}
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(turns)))
	for _, turn := range turns {
		frame = append(frame, turn.Position.X, turn.Position.Y, byte(turn.Field))
	}
	return c.write(frame)
}

func (c *Client) NotifyInfo(info gomocup.Information) error {
	return c.write(appendString([]byte{idInfo}, info.String()))
}

func (c *Client) NotifyResult(result gomocup.RelativeOutcome) error {
	return c.write([]byte{idResult, byte(result)})
}

func (c *Client) NotifyEnd() error {
	return c.write([]byte{idEnd})
}

func (c *Client) NotifyAbout() error {
	return c.write([]byte{idAbout})
}

func (c *Client) NotifyUnknown(content string) error {
	return c.write(appendString([]byte{idUnknown}, content))
}

func (c *Client) NotifyError(content string) error {
	return c.write(appendString([]byte{idError}, content))
}

// Close shuts the connection down and runs the transport teardown.
// Closing twice is harmless.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		err = c.conn.Close()
		if c.halt != nil {
			if herr := c.halt(); err == nil {
				err = herr
			}
		}
	})
	return err
}

// Isolate registers extra teardown to run when the client is closed.
// It is used by transports that own more than the connection, such
// as container-isolated players.
func (c *Client) Isolate(halt func() error) {
	c.halt = halt
}
