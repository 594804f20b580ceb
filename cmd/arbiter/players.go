// Player Transport Construction
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

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	gomocup "go-gomocup"
	"go-gomocup/conf"
	"go-gomocup/isol"
	"go-gomocup/proto"
	"go-gomocup/tcp"
	"go-gomocup/web"
)

// dial turns one player configuration file into a connected player
// interface
func dial(ctx context.Context, cfg *conf.Conf, path string, log *zap.SugaredLogger) (gomocup.Interface, error) {
	pc, err := conf.LoadPlayer(path)
	if err != nil {
		return nil, err
	}

	switch pc.Protocol {
	case conf.ProtocolStdio:
		return proto.Spawn(pc.Stdio.Binary, pc.Stdio.Args, log)

	case conf.ProtocolTCP:
		if pc.TCP.Passive {
			return tcp.Accept(ctx, pc.TCP.Address, log)
		}
		return tcp.Connect(ctx, pc.TCP.Address, log)

	case conf.ProtocolWS:
		return web.Accept(ctx, pc.WS.Address, log)

	case conf.ProtocolDocker:
		return isol.Start(ctx, isol.Options{
			Image:  pc.Docker.Image,
			CPUs:   cfg.Docker.CPUs,
			Memory: cfg.Docker.Memory,
			Warmup: cfg.Docker.Warmup,
		}, log)

	default:
		return nil, fmt.Errorf("unknown protocol %q", pc.Protocol)
	}
}
