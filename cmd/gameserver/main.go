// Package main provides the arena server binary: the authoritative frame loop,
// the websocket HUD feed, and a gRPC health endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/gunfire/internal/config"
	"github.com/cory-johannsen/gunfire/internal/frontend/hud"
	"github.com/cory-johannsen/gunfire/internal/game/arena"
	"github.com/cory-johannsen/gunfire/internal/game/combat"
	"github.com/cory-johannsen/gunfire/internal/game/event"
	"github.com/cory-johannsen/gunfire/internal/game/geom"
	"github.com/cory-johannsen/gunfire/internal/game/pickup"
	"github.com/cory-johannsen/gunfire/internal/game/sched"
	"github.com/cory-johannsen/gunfire/internal/game/weapon"
	"github.com/cory-johannsen/gunfire/internal/observability"
	"github.com/cory-johannsen/gunfire/internal/replication"
	"github.com/cory-johannsen/gunfire/internal/scripting"
	"github.com/cory-johannsen/gunfire/internal/server"
	"github.com/cory-johannsen/gunfire/internal/storage/postgres"
)

// shotLogBuffer is the number of shot records queued for the database writer.
const shotLogBuffer = 1024

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	weaponsDir := flag.String("weapons-dir", "content/weapons", "path to weapon YAML definitions directory")
	scriptsDir := flag.String("scripts-dir", "content/scripts/weapons", "root directory of per-weapon Lua hooks; empty = scripting disabled")
	scriptLimit := flag.Int("script-limit", scripting.DefaultInstructionLimit, "Lua opcode budget per hook call")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("server", cfg.Server.Name))

	logger.Info("starting arena server",
		zap.String("grpc_addr", cfg.GameServer.Addr()),
		zap.String("hud_addr", cfg.GameServer.HUDAddr()),
		zap.Bool("authoritative", cfg.Server.Authoritative),
	)

	lifecycle := server.NewLifecycle(logger)

	// Weapons
	defs, err := weapon.LoadDefinitions(*weaponsDir)
	if err != nil {
		logger.Fatal("loading weapons", zap.Error(err))
	}
	weapons := weapon.NewRegistry()
	for _, d := range defs {
		if err := weapons.Register(d); err != nil {
			logger.Fatal("registering weapon", zap.String("weapon", d.ID), zap.Error(err))
		}
	}
	logger.Info("loaded weapons", zap.Int("count", weapons.Len()))

	var observers []combat.ShotObserver

	// Scripting
	if *scriptsDir != "" {
		scriptMgr := scripting.NewManager(observability.Component(logger, "scripting"))
		scripts := make(map[string]string, weapons.Len())
		for _, d := range weapons.All() {
			scripts[d.ID] = d.ScriptName()
		}
		n, err := scriptMgr.LoadWeapons(*scriptsDir, scripts, *scriptLimit)
		if err != nil {
			logger.Fatal("loading weapon scripts", zap.Error(err))
		}
		logger.Info("loaded weapon scripts", zap.Int("count", n))
		observers = append(observers, scripting.NewShotHooks(scriptMgr))
		defer scriptMgr.Close()
	}

	// Shot log
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		writer := postgres.NewShotWriter(postgres.NewShotLog(pool.DB()), shotLogBuffer, observability.Component(logger, "shotlog"))
		observers = append(observers, writer)

		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func(context.Context) { pool.Close() },
		})
		writerDone := make(chan struct{})
		lifecycle.Add("shotlog", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				defer close(writerDone)
				return writer.Run(ctx)
			},
			StopFn: func(ctx context.Context) {
				select {
				case <-writerDone:
				case <-ctx.Done():
				}
				logger.Info("shot log drained",
					zap.Int64("written", writer.Written()),
					zap.Int64("dropped", writer.Dropped()),
				)
			},
		})
	}

	// Arena
	bus := event.NewBus()
	clock := sched.NewClock()
	loop := sched.NewLoop(clock, cfg.GameServer.TickInterval(), observability.Component(logger, "loop"))
	a := arena.New(cfg.Combat, weapons, clock, bus, observability.Component(logger, "arena"), observers...)
	for _, sp := range cfg.Arena.Spawners {
		if _, err := weapons.Get(sp.Weapon); err != nil {
			logger.Fatal("spawner references unknown weapon", zap.String("spawner", sp.ID), zap.Error(err))
		}
		a.AddSpawner(pickup.SpawnerConfig{
			ID:           sp.ID,
			WeaponID:     sp.Weapon,
			Position:     point(sp.Position),
			Max:          sp.Max,
			RespawnDelay: sp.RespawnDelay,
		})
	}
	loop.OnTick(a.Tick)

	// Replication
	mirror := replication.NewMirror()
	broadcaster := replication.NewBroadcaster(
		replication.NewTracker(cfg.Server.Authoritative),
		replication.MirrorSender{Mirror: mirror},
		observability.Component(logger, "replication"),
	)
	loop.OnTick(func(time.Duration) {
		chars := a.Characters()
		sources := make([]replication.Source, len(chars))
		for i, ch := range chars {
			sources[i] = ch
		}
		broadcaster.Broadcast(sources)
	})

	// gRPC health
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	loopDone := make(chan struct{})
	lifecycle.Add("loop", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			defer close(loopDone)
			healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			loop.Run(ctx)
			a.Close()
			logger.Info("frame loop stopped", zap.Uint64("frames", loop.Frames()))
			return nil
		},
		StopFn: func(ctx context.Context) {
			loop.Stop()
			select {
			case <-loopDone:
			case <-ctx.Done():
			}
		},
	})

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func(context.Context) error {
			lis, err := net.Listen("tcp", cfg.GameServer.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.GameServer.Addr(), err)
			}
			logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
			return grpcServer.Serve(lis)
		},
		StopFn: func(context.Context) {
			healthSrv.Shutdown()
			grpcServer.GracefulStop()
		},
	})

	spawns := make([]geom.Vec3, len(cfg.Arena.SpawnPoints))
	for i, p := range cfg.Arena.SpawnPoints {
		spawns[i] = point(p)
	}
	hudSrv := hud.NewServer(
		cfg.GameServer.HUDAddr(),
		hud.NewArenaGame(a, loop, spawns, observability.Component(logger, "hud")),
		bus,
		observability.Component(logger, "hud"),
	)
	lifecycle.Add("hud", &server.FuncService{
		StartFn: func(context.Context) error {
			lis, err := net.Listen("tcp", cfg.GameServer.HUDAddr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.GameServer.HUDAddr(), err)
			}
			return hudSrv.Serve(lis)
		},
		StopFn: func(ctx context.Context) {
			if err := hudSrv.Shutdown(ctx); err != nil {
				logger.Warn("hud shutdown", zap.Error(err))
			}
		},
	})

	logger.Info("arena server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func point(p config.PointConfig) geom.Vec3 {
	return geom.V(p.X, p.Y, p.Z)
}
