// Docker-Based Player Isolation
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

// Package isol runs an untrusted player inside a Docker container.
// The arbiter opens a passive TCP endpoint on an ephemeral port,
// hands its coordinates to the container through the environment and
// waits for the player to connect back within a warm-up window.
package isol

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"go.uber.org/zap"

	"go-gomocup/tcp"
)

var hostname string

func init() {
	var err error
	hostname, err = os.Hostname()
	if err != nil {
		panic(err)
	}
}

// Options configure one isolated player
type Options struct {
	// Image is the name of the image to run
	Image string
	// CPUs and Memory bound the container resources; zero means
	// unlimited
	CPUs   int64
	Memory int64
	// Warmup is how long the player may take to connect back
	Warmup time.Duration
}

// port extracts the port number the operating system bound an
// ephemeral listener to
func port(ln net.Listener) (string, error) {
	addr := ln.Addr().String()
	i := strings.LastIndexByte(addr, ':')
	if i == -1 || i+1 == len(addr) {
		return "", fmt.Errorf("invalid listener address %q", addr)
	}
	return addr[i+1:], nil
}

// Start launches the image and returns the connected player.
// Closing the returned client kills the container; together with
// AutoRemove this keeps loop mode from accumulating stopped
// containers.
func Start(ctx context.Context, opts Options, log *zap.SugaredLogger) (*tcp.Client, error) {
	cont, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to reach the docker daemon: %w", err)
	}

	// Each player gets its own ephemeral endpoint, so two isolated
	// players never race for a connection.
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		return nil, err
	}
	defer ln.Close()

	p, err := port(ln)
	if err != nil {
		return nil, err
	}
	log.Debugw("waiting for isolated player", "image", opts.Image, "port", p)

	resp, err := cont.ContainerCreate(ctx, &container.Config{
		Env: []string{
			fmt.Sprintf("GOMOCUP_HOST=%s", hostname),
			fmt.Sprintf("GOMOCUP_PORT=%s", p),
		},
		Image: opts.Image,
	}, &container.HostConfig{
		Resources: container.Resources{
			NanoCPUs: opts.CPUs * 1e9,
			Memory:   opts.Memory,
		},
		NetworkMode:    container.NetworkMode("host"),
		ReadonlyRootfs: true,
		AutoRemove:     true,
	}, nil, nil, fmt.Sprintf("%s-%d", sanitize(opts.Image), time.Now().UnixNano()))
	if err != nil {
		return nil, fmt.Errorf("failed to create container for %s: %w", opts.Image, err)
	}

	id := resp.ID
	if err := cont.ContainerStart(ctx, id, types.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start container %s: %w", opts.Image, err)
	}
	log.Debugw("started container", "image", opts.Image, "container", id)

	// A container that dies before connecting is reported through
	// the wait channel.
	statusC, errC := cont.ContainerWait(ctx, id, container.WaitConditionNotRunning)

	type accepted struct {
		conn net.Conn
		err  error
	}
	conns := make(chan accepted, 1)
	go func() {
		conn, err := ln.Accept()
		conns <- accepted{conn, err}
	}()

	kill := func() error {
		err := cont.ContainerKill(context.Background(), id, "SIGKILL")
		if err != nil && !client.IsErrNotFound(err) {
			return fmt.Errorf("failed to kill container %s: %w", id, err)
		}
		return nil
	}

	warmup := opts.Warmup
	if warmup == 0 {
		warmup = 30 * time.Second
	}

	select {
	case acc := <-conns:
		if acc.err != nil {
			_ = kill()
			return nil, acc.err
		}
		cli, err := tcp.NewClient(acc.conn, log)
		if err != nil {
			_ = kill()
			return nil, err
		}
		cli.Isolate(kill)
		return cli, nil

	case err := <-errC:
		if err != nil {
			return nil, fmt.Errorf("container %s signalled an error: %w", opts.Image, err)
		}
		return nil, fmt.Errorf("container %s exited before connecting", opts.Image)

	case <-statusC:
		return nil, fmt.Errorf("container %s exited before connecting", opts.Image)

	case <-time.After(warmup):
		_ = kill()
		return nil, errors.New("timeout during player initialisation")

	case <-ctx.Done():
		_ = kill()
		return nil, ctx.Err()
	}
}

// sanitize turns an image reference into a container name fragment
func sanitize(image string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, image)
}
