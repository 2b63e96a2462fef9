// cmd/client/main.go
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opd-ai/go-asteroids/pkg/config"
	"github.com/opd-ai/go-asteroids/pkg/engine"
	"github.com/opd-ai/go-asteroids/pkg/entity"
	"github.com/opd-ai/go-asteroids/pkg/event"
	"github.com/opd-ai/go-asteroids/pkg/logging"
	"github.com/opd-ai/go-asteroids/pkg/network"
	"github.com/opd-ai/go-asteroids/pkg/render"
)

// validateFlags rejects display settings the renderer and frame limiter
// cannot work with.
func validateFlags(cols, rows, fps int) error {
	if cols < 1 || rows < 1 {
		return fmt.Errorf("arena size %dx%d must be at least 1x1", cols, rows)
	}
	if fps < 1 {
		return fmt.Errorf("fps %d must be at least 1", fps)
	}
	return nil
}

func main() {
	serverURL := flag.String("server", "ws://localhost:3000/ws", "Game server websocket URL")
	playerName := flag.String("name", "Player", "Player name")
	cols := flag.Int("cols", 96, "Terminal columns used for the arena")
	rows := flag.Int("rows", 27, "Terminal rows used for the arena")
	fps := flag.Int("fps", 15, "Maximum frames drawn per second")
	flag.Parse()

	// Frames go to stdout, so logs go to stderr.
	logger := logging.New(os.Stderr, logging.ParseLevel(os.Getenv("ASTEROIDS_LOG_LEVEL")))
	ctx := context.Background()

	if err := validateFlags(*cols, *rows, *fps); err != nil {
		logger.Error(ctx, "Invalid flags", err)
		os.Exit(2)
	}

	env, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Invalid environment configuration", err)
		os.Exit(1)
	}

	bus := event.NewEventBus()
	bus.Subscribe(network.ClientDisconnected, func(event.Event) {
		logger.Info(ctx, "Disconnected from server")
	})

	client := network.NewClient(env, bus, logger)
	connectCtx, cancel := context.WithTimeout(ctx, env.ReadTimeout)
	err = client.Connect(connectCtx, *serverURL, *playerName)
	cancel()
	if err != nil {
		logger.Error(ctx, "Failed to connect", err, "url", *serverURL)
		os.Exit(1)
	}

	w, h := client.WorldDimensions()
	screen := render.NewTerminalRenderer(os.Stdout, *cols, *rows, w, h)

	go readCommands(client, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	minFrame := time.Second / time.Duration(*fps)
	var lastFrame time.Time
	for {
		select {
		case snap := <-client.States():
			if time.Since(lastFrame) < minFrame {
				continue
			}
			lastFrame = time.Now()
			entity.RenderFrame(screen, snap.Views, snap.Score)
			fmt.Printf("tick %d  latency %v\n", snap.Tick, client.Latency().Round(time.Millisecond))
		case <-client.Done():
			os.Exit(1)
		case <-sigChan:
			client.Close()
			return
		}
	}
}

// readCommands turns each stdin line into the held input: w thrusts, a
// and d turn, f or space fires. An empty line releases everything.
func readCommands(client *network.Client, logger *logging.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := client.SendIntent(parseIntent(scanner.Text())); err != nil {
			logger.Warn(context.Background(), "input not sent", "error", err)
			return
		}
	}
}

func parseIntent(line string) engine.Intent {
	var in engine.Intent
	line = strings.ToLower(line)
	in.Thrust = strings.ContainsRune(line, 'w')
	in.Fire = strings.ContainsAny(line, "f ")
	switch {
	case strings.ContainsRune(line, 'a') && !strings.ContainsRune(line, 'd'):
		in.Turn = 1
	case strings.ContainsRune(line, 'd') && !strings.ContainsRune(line, 'a'):
		in.Turn = -1
	}
	return in
}
