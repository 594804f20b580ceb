// Binary TCP Transport Tests
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

package tcp

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	gomocup "go-gomocup"
)

// peer drives the player side of a connection from a test
type peer struct {
	conn net.Conn
	t    *testing.T
}

func (p *peer) write(frame []byte) {
	p.t.Helper()
	_, err := p.conn.Write(frame)
	require.NoError(p.t, err)
}

func (p *peer) writeString(id byte, s string) {
	p.write(appendString([]byte{id}, s))
}

func (p *peer) read(n int) []byte {
	p.t.Helper()
	buf := make([]byte, n)
	_, err := io.ReadFull(p.conn, buf)
	require.NoError(p.t, err)
	return buf
}

func (p *peer) readString() string {
	p.t.Helper()
	s, err := readString(p.conn)
	require.NoError(p.t, err)
	return s
}

// handshake establishes a client over a synchronous pipe, with the
// test acting as a well-behaved player
func handshake(t *testing.T) (*Client, *peer) {
	t.Helper()

	arbiter, player := net.Pipe()
	p := &peer{conn: player, t: t}

	type result struct {
		cli *Client
		err error
	}
	clients := make(chan result, 1)
	go func() {
		cli, err := NewClient(arbiter, zap.NewNop().Sugar())
		clients <- result{cli, err}
	}()

	p.writeString(idPlayerProtocolVersion, Version)
	require.Equal(t, []byte{idProtocolCompatible}, p.read(1))

	select {
	case res := <-clients:
		require.NoError(t, res.err)
		t.Cleanup(func() { res.cli.Close() })
		return res.cli, p
	case <-time.After(5 * time.Second):
		t.Fatal("handshake did not complete")
		return nil, nil
	}
}

func TestHandshakeRejectsVersionMismatch(t *testing.T) {
	arbiter, player := net.Pipe()
	p := &peer{conn: player, t: t}

	errs := make(chan error, 1)
	go func() {
		_, err := NewClient(arbiter, zap.NewNop().Sugar())
		errs <- err
	}()

	p.writeString(idPlayerProtocolVersion, "0.1.0")

	require.Equal(t, []byte{idError}, p.read(1))
	assert.Contains(t, p.readString(), "incompatible")

	select {
	case err := <-errs:
		var verr *IncompatibleVersionError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "0.1.0", verr.Peer)
	case <-time.After(5 * time.Second):
		t.Fatal("NewClient did not return")
	}
}

func TestListenDecodesActions(t *testing.T) {
	cli, p := handshake(t)

	sink := make(chan gomocup.Event, 16)
	go cli.Listen(context.Background(), gomocup.Black, sink)

	for _, test := range []struct {
		frame func()
		want  gomocup.Action
	}{
		{
			func() { p.write([]byte{idPlayerReady}) },
			gomocup.Ready{},
		}, {
			func() { p.write([]byte{idPlayerPlay, 7, 11}) },
			gomocup.Play{Position: gomocup.Position{X: 7, Y: 11}},
		}, {
			func() { p.write([]byte{idPlayerSuggestion, 3, 4}) },
			gomocup.Suggestion{Position: gomocup.Position{X: 3, Y: 4}},
		}, {
			func() { p.writeString(idPlayerMetadata, `name="bot" version="2"`) },
			gomocup.Metadata{Fields: map[string]string{"name": "bot", "version": "2"}},
		}, {
			func() { p.writeString(idPlayerUnknown, "BOARD") },
			gomocup.Unknown{Content: "BOARD"},
		}, {
			func() { p.writeString(idPlayerError, "bad size") },
			gomocup.ErrorMessage{Content: "bad size"},
		}, {
			func() { p.writeString(idPlayerMessage, "hello") },
			gomocup.Message{Content: "hello"},
		}, {
			func() { p.writeString(idPlayerDebug, "depth 9") },
			gomocup.Debug{Content: "depth 9"},
		},
	} {
		test.frame()
		select {
		case ev := <-sink:
			assert.Equal(t, gomocup.Black, ev.Color)
			assert.Equal(t, test.want, ev.Action)
		case <-time.After(5 * time.Second):
			t.Fatalf("action %#v never arrived", test.want)
		}
	}
}

func TestListenRejectsUnknownIdentifier(t *testing.T) {
	cli, p := handshake(t)

	done := make(chan error, 1)
	go func() {
		done <- cli.Listen(context.Background(), gomocup.Black, make(chan gomocup.Event, 1))
	}()

	p.write([]byte{0x42})
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return")
	}
}

func TestNotifyFrames(t *testing.T) {
	cli, p := handshake(t)

	check := func(send func() error, read func()) {
		t.Helper()
		errs := make(chan error, 1)
		go func() { errs <- send() }()
		read()
		require.NoError(t, <-errs)
	}

	check(func() error { return cli.NotifyStart(15) }, func() {
		assert.Equal(t, []byte{idStart, 15}, p.read(2))
	})
	check(cli.NotifyRestart, func() {
		assert.Equal(t, []byte{idRestart}, p.read(1))
	})
	check(func() error { return cli.NotifyTurn(gomocup.Position{X: 7, Y: 11}) }, func() {
		assert.Equal(t, []byte{idTurn, 7, 11}, p.read(3))
	})
	check(cli.NotifyBegin, func() {
		assert.Equal(t, []byte{idBegin}, p.read(1))
	})
	check(func() error {
		return cli.NotifyBoard([]gomocup.RelativeTurn{
			{Position: gomocup.Position{X: 7, Y: 7}, Field: gomocup.OwnStone},
			{Position: gomocup.Position{X: 0, Y: 1}, Field: gomocup.OpponentStone},
		})
	}, func() {
		assert.Equal(t, []byte{idBoard}, p.read(1))
		assert.Equal(t, uint32(2), binary.BigEndian.Uint32(p.read(4)))
		assert.Equal(t, []byte{7, 7, 1, 0, 1, 2}, p.read(6))
	})
	check(func() error { return cli.NotifyInfo(gomocup.TimeoutMatch(180000)) }, func() {
		assert.Equal(t, []byte{idInfo}, p.read(1))
		assert.Equal(t, "timeout_match 180000", p.readString())
	})
	check(func() error { return cli.NotifyResult(gomocup.RelativeLoss) }, func() {
		assert.Equal(t, []byte{idResult, 2}, p.read(2))
	})
	check(cli.NotifyEnd, func() {
		assert.Equal(t, []byte{idEnd}, p.read(1))
	})
	check(cli.NotifyAbout, func() {
		assert.Equal(t, []byte{idAbout}, p.read(1))
	})
	check(func() error { return cli.NotifyError("cell taken") }, func() {
		assert.Equal(t, []byte{idError}, p.read(1))
		assert.Equal(t, "cell taken", p.readString())
	})
}

func TestAccept(t *testing.T) {
	// Accept side: the arbiter waits on an ephemeral port for a
	// player that performs a valid handshake
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	accepted := make(chan *Client, 1)
	go func() {
		cli, err := Accept(context.Background(), addr, zap.NewNop().Sugar())
		if err == nil {
			accepted <- cli
		}
	}()

	// the player dials in after a moment
	var conn net.Conn
	require.Eventually(t, func() bool {
		conn, err = net.Dial("tcp", addr)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	p := &peer{conn: conn, t: t}
	p.writeString(idPlayerProtocolVersion, Version)
	require.Equal(t, []byte{idProtocolCompatible}, p.read(1))

	select {
	case cli := <-accepted:
		cli.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("Accept did not return")
	}
}
