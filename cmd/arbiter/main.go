// Entry point
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
	"flag"
	"fmt"
	"os"
	"os/signal"

	gomocup "go-gomocup"
	"go-gomocup/conf"
	"go-gomocup/coord"
	"go-gomocup/game"
)

func main() {
	flag.Parse()

	cfg, err := conf.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		flag.Usage()
		os.Exit(2)
	}

	log, err := conf.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	black, err := dial(ctx, cfg, cfg.Black, log.Named("black"))
	if err != nil {
		log.Fatalw("failed to set up the black player", "error", err)
	}
	defer black.Close()

	white, err := dial(ctx, cfg, cfg.White, log.Named("white"))
	if err != nil {
		log.Fatalw("failed to set up the white player", "error", err)
	}
	defer white.Close()

	mode := coord.SingleGame
	if cfg.Game.Mode == "loop" {
		mode = coord.Loop
	}

	engine := game.New(
		gomocup.BoardSize{W: cfg.Game.Size, H: cfg.Game.Size},
		cfg.Game.Turn, cfg.Game.Match,
	)

	outcome, err := coord.New(engine, black, white, mode, log).Run(ctx)
	if err != nil {
		log.Fatalw("match failed", "error", err)
	}
	log.Infof("%s!", outcome)
}
