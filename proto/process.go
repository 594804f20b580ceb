// Subprocess Player Transport
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

package proto

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// procStream glues the standard streams of a child process into one
// read-write-closer
type procStream struct {
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (s *procStream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *procStream) Write(p []byte) (int, error) {
	return s.stdin.Write(p)
}

func (s *procStream) Close() error {
	err := s.stdin.Close()
	if cerr := s.stdout.Close(); err == nil {
		err = cerr
	}
	return err
}

// Spawn launches a player binary and speaks the protocol over its
// standard input and output.  The child's standard error is passed
// through to ours.  Closing the returned client terminates and reaps
// the child, so loop mode does not accumulate orphan processes.
func Spawn(binary string, args []string, log *zap.SugaredLogger) (*Client, error) {
	cmd := exec.Command(binary, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin of %s: %w", binary, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout of %s: %w", binary, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", binary, err)
	}
	log.Debugw("spawned player process", "binary", binary, "pid", cmd.Process.Pid)

	cli := NewClient(&procStream{stdin: stdin, stdout: stdout}, log)
	cli.halt = func() error {
		err := cmd.Process.Kill()
		if err != nil && !errors.Is(err, os.ErrProcessDone) {
			return err
		}
		// reap the child; its exit status is of no interest
		_ = cmd.Wait()
		return nil
	}
	return cli, nil
}
