// Websocket Player Transport
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

// Package web lets a player connect over a websocket.  The socket
// carries the same line protocol as the stdio transport; each
// websocket message is one chunk of the byte stream.
package web

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"go-gomocup/proto"
)

var upgrader = websocket.Upgrader{
	// players connect from anywhere, there is no browser origin to
	// defend
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsrwc adapts a message-based websocket into a byte stream
type wsrwc struct {
	conn *websocket.Conn
	rest bytes.Reader
}

func (c *wsrwc) Read(p []byte) (int, error) {
	for c.rest.Len() == 0 {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		if kind != websocket.TextMessage {
			return 0, fmt.Errorf("unexpected message type %d", kind)
		}
		c.rest.Reset(data)
	}
	return c.rest.Read(p)
}

func (c *wsrwc) Write(p []byte) (int, error) {
	if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsrwc) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}

// Accept serves HTTP on ADDRESS until one websocket connection is
// upgraded, then shuts the server down and speaks the line protocol
// over that connection.  Cancelling CTX aborts the wait.
func Accept(ctx context.Context, address string, log *zap.SugaredLogger) (*proto.Client, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	log.Infow("waiting for websocket player", "address", ln.Addr())

	type upgraded struct {
		conn *websocket.Conn
		err  error
	}
	ch := make(chan upgraded, 1)

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				log.Debugw("failed websocket upgrade", "remote", r.RemoteAddr, "error", err)
				return
			}
			select {
			case ch <- upgraded{conn: conn}:
			default:
				// a player is already connected
				conn.Close()
			}
		}),
	}
	go func() {
		if err := server.Serve(ln); err != http.ErrServerClosed {
			ch <- upgraded{err: err}
		}
	}()
	defer server.Close()

	select {
	case up := <-ch:
		if up.err != nil {
			return nil, up.err
		}
		log.Debugw("websocket player connected", "remote", up.conn.RemoteAddr())
		return proto.NewClient(&wsrwc{conn: up.conn}, log), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
