package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridrealm/server/internal/config"
	coresys "github.com/gridrealm/server/internal/core/system"
	"github.com/gridrealm/server/internal/data"
	"github.com/gridrealm/server/internal/handler"
	gonet "github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
	"github.com/gridrealm/server/internal/persist"
	"github.com/gridrealm/server/internal/scripting"
	"github.com/gridrealm/server/internal/system"
	"github.com/gridrealm/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           Gridrealm  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        tile world game server             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("GRIDREALM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	// 4. Create repositories
	charRepo := persist.NewCharacterRepo(db)
	doorRepo := persist.NewDoorRepo(db)
	groundRepo := persist.NewGroundRepo(db)

	// 5. Build the world
	printSection("data load")

	loader := data.NewMapMetaLoader(cfg.Maps.DataDir, log)
	mgr := world.NewManager(loader, groundRepo, cfg.World.MaxItemsPerTile, log)
	bcast := handler.NewMessenger(mgr)

	doorCatalog, err := data.LoadDoorCatalog(cfg.Maps.DoorList)
	if err != nil {
		return fmt.Errorf("load door catalog: %w", err)
	}
	printStat("door types", doorCatalog.Count())

	doors := world.NewDoorService(mgr, doorCatalog, doorRepo, bcast, log)
	doorCount, err := doors.LoadPlacements(ctx)
	if err != nil {
		return fmt.Errorf("place doors: %w", err)
	}
	printStat("doors placed", doorCount)

	npcTable, err := data.LoadNpcTable(cfg.Maps.NpcList)
	if err != nil {
		return fmt.Errorf("load npc table: %w", err)
	}
	printStat("npc templates", npcTable.Count())

	spawnList, err := data.LoadSpawnList(cfg.Maps.SpawnList)
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}
	npcCount := world.SpawnNpcs(ctx, mgr, npcTable, spawnList, log)
	printStat("npcs spawned", npcCount)

	// 5a. Lua map hooks
	luaEngine, err := scripting.NewEngine(cfg.Maps.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua scripts loaded")
	fmt.Println()

	trans := world.NewTransitioner(mgr, bcast, charRepo, luaEngine, cfg.World.MapLoadDelay, log)

	// 6. Packet handler registry
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Config: cfg,
		Log:    log,
		Mgr:    mgr,
		Doors:  doors,
		Trans:  trans,
		Bcast:  bcast,
		Chars:  charRepo,
	}
	handler.RegisterAll(pktReg, deps)

	// 7. Network server
	netServer, err := gonet.NewServer(cfg.Network.BindAddress, gonet.SessionOptions{
		InQueueSize:      cfg.Network.InQueueSize,
		OutQueueSize:     cfg.Network.OutQueueSize,
		PacketsPerSecond: cfg.Network.PacketsPerSecond,
		ReadTimeout:      cfg.Network.ReadTimeout,
		WriteTimeout:     cfg.Network.WriteTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// One dispatch goroutine per session. World access is serialized inside
	// the Manager, so sessions can dispatch concurrently.
	go func() {
		for sess := range netServer.NewSessions() {
			go handler.RunSession(sess, pktReg, deps)
		}
	}()

	// 8. Sweep systems
	sweepInterval := cfg.World.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = time.Second
	}
	sweepTicks := int(cfg.World.DoorCloseAfter / sweepInterval)
	flushTicks := int(cfg.World.PositionFlush / sweepInterval)
	if flushTicks < 1 {
		flushTicks = 1
	}

	runner := coresys.NewRunner()
	runner.Register(system.NewGroundSweepSystem(mgr, bcast, cfg.World.GroundItemTTL, log))
	runner.Register(system.NewDoorCloseSystem(doors, sweepTicks))
	persistSys := system.NewPersistenceSystem(mgr, charRepo, flushTicks, log)
	runner.Register(persistSys)

	stopRunner := make(chan struct{})
	go runner.Run(sweepInterval, stopRunner)

	printSection("server ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("sweep loop started (interval: %s)", sweepInterval))
	fmt.Println()

	// 9. Wait for shutdown
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-shutdownCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	close(stopRunner)
	netServer.Shutdown()
	persistSys.SaveAllPlayers()
	log.Info("server stopped")
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
