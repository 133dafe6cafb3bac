package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/OCharnyshevich/beta14core/internal/chunkstore"
	"github.com/OCharnyshevich/beta14core/internal/config"
	"github.com/OCharnyshevich/beta14core/internal/game"
	"github.com/OCharnyshevich/beta14core/internal/level"
	"github.com/OCharnyshevich/beta14core/internal/lighting"
	"github.com/OCharnyshevich/beta14core/internal/worldgen"
)

func main() {
	cfg := config.Default()

	var dataDir string
	var port int
	flag.StringVar(&dataDir, "data-dir", "data", "directory for persistent data")
	flag.StringVar(&cfg.ListenAddress, "address", cfg.ListenAddress, "address to listen on")
	flag.IntVar(&port, "port", int(cfg.ListenPort), "server port")
	flag.StringVar(&cfg.ServerMOTD, "motd", cfg.ServerMOTD, "server description")
	flag.IntVar(&cfg.MaxPlayers, "max-players", cfg.MaxPlayers, "maximum players shown in server list")
	flag.IntVar(&cfg.ChunkDistance, "view-distance", cfg.ChunkDistance, "chunk view distance")
	flag.IntVar(&cfg.TPS, "tps", cfg.TPS, "server ticks per second")
	flag.Parse()
	cfg.ListenPort = uint16(port)

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Error("create data dir", "err", err)
		os.Exit(1)
	}

	configPath := filepath.Join(dataDir, "config.toml")
	if err := config.Load(configPath, cfg); err != nil {
		log.Error("load config", "err", err)
		os.Exit(2)
	}
	if err := config.Save(configPath, cfg); err != nil {
		log.Error("save config", "err", err)
	}

	opsPath := filepath.Join(dataDir, "ops.toml")
	ops, err := config.LoadOpList(opsPath)
	if err != nil {
		log.Error("load ops", "err", err)
		os.Exit(2)
	}

	if cfg.ChunkGenerator != config.WorldgenFlat {
		log.Warn("generator not implemented, falling back to flat", "requested", cfg.ChunkGenerator)
	}
	gen := worldgen.NewFlat()

	regionDir := filepath.Join(dataDir, cfg.LevelName, "region")
	store := chunkstore.New(regionDir, gen, log)

	seed := uint64(0)
	if cfg.WorldSeed != nil {
		seed = *cfg.WorldSeed
	}
	lvl := level.New(cfg.LevelName, store, seed)

	levelDatPath := filepath.Join(dataDir, cfg.LevelName, "level.dat")
	if err := lvl.LoadMetadata(levelDatPath); err != nil {
		log.Error("load level.dat", "err", err)
		os.Exit(1)
	}
	if lvl.Spawn == (level.BlockPos{}) {
		lvl.Spawn = level.BlockPos{X: 0, Y: int32(gen.GroundLevel) + 1, Z: 0}
	}

	lw := lighting.NewWorker(lvl, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The store outlives the signal context so the shutdown save below can
	// still reach its event loop.
	storeCtx, stopStore := context.WithCancel(context.Background())
	defer stopStore()
	go store.Serve(storeCtx)
	go lw.Serve(ctx)

	g := game.New(cfg, log, lvl, lw, ops)
	g.PlayerDataDir = filepath.Join(dataDir, cfg.LevelName, "players")
	if err := os.MkdirAll(g.PlayerDataDir, 0o755); err != nil {
		log.Error("create player data dir", "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen", "addr", addr, "err", err)
		os.Exit(1)
	}
	log.Info("listening", "addr", addr, "motd", cfg.ServerMOTD)

	go acceptLoop(ctx, ln, log, g)
	go consoleLoop(ctx, g)

	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("tick panicked", "panic", r, "stack", string(debug.Stack()))
				os.Exit(1)
			}
		}()
		g.Run(ctx)
	}()

	ln.Close()
	if err := store.SaveAll(context.Background()); err != nil {
		log.Error("save chunks on shutdown", "err", err)
	}
	if err := lvl.SaveMetadata(levelDatPath); err != nil {
		log.Error("save level.dat on shutdown", "err", err)
	}
	log.Info("stopped")
}

func acceptLoop(ctx context.Context, ln net.Listener, log *slog.Logger, g *game.Game) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Error("accept", "err", err)
				return
			}
		}
		go game.HandleConnection(ctx, conn, log, g)
	}
}

// consoleLoop reads commands off stdin and dispatches them at console
// permission level until ctx is cancelled or stdin closes.
func consoleLoop(ctx context.Context, g *game.Game) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line != "" {
				g.RunConsoleLine(line)
			}
		}
	}
}
