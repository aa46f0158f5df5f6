package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/hibiken/asynq"

	"github.com/vinkla/retouch/cmd/migrate"
	"github.com/vinkla/retouch/internal/admission"
	"github.com/vinkla/retouch/internal/assets"
	"github.com/vinkla/retouch/internal/codec"
	"github.com/vinkla/retouch/internal/config"
	"github.com/vinkla/retouch/internal/executor"
	"github.com/vinkla/retouch/internal/lease"
	"github.com/vinkla/retouch/internal/pathguard"
	"github.com/vinkla/retouch/internal/quality"
	"github.com/vinkla/retouch/internal/redisholder"
	"github.com/vinkla/retouch/internal/scheduler"
	"github.com/vinkla/retouch/internal/transport/handler"
	"github.com/vinkla/retouch/internal/transport/router"
	"github.com/vinkla/retouch/internal/triggers"
)

type App struct {
	HttpServer *http.Server

	worker  *asynq.Server
	mux     *asynq.ServeMux
	enabled bool
}

// New wires the conversion core. The deployment gate comes first: unless
// the host is a development environment or its own scheduler has been
// disabled in favor of an external one, nothing is wired and Run is a
// no-op.
func New(cfg *config.Config) (*App, error) {
	if cfg.Environment != "development" && !cfg.ExternalScheduler {
		log.Printf("[app] neither development environment nor external scheduler confirmed; conversion disabled")
		return &App{enabled: false}, nil
	}

	if len(cfg.Redis.Nodes) == 0 {
		return nil, errors.New("no redis nodes configured")
	}

	ctx := context.Background()

	if err := migrate.Migrate(cfg.Database.DSN, migrate.Migrations); err != nil {
		return nil, err
	}

	store, err := assets.New(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	holder, err := redisholder.Build(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}
	rc := holder.Get()

	leases := lease.NewManager(lease.NewRedisStore("retouch:lease", rc), cfg.Lease.TTL)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Nodes[0].Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseID,
	}
	queue := scheduler.NewAsynqQueue(asynq.NewClient(redisOpt), asynq.NewInspector(redisOpt), cfg.Queue.Name)
	adm := admission.NewController(queue, cfg.Queue.MaxPending)

	policy := quality.NewPolicy(cfg.Conversion.Quality)
	guard := pathguard.New(cfg.Conversion.Root, cfg.Conversion.UploadsDir, cfg.Conversion.ReservedDirs)
	files := executor.OSFileStore{}

	exec := executor.New(policy, []codec.Backend{codec.Libwebp{}, codec.Chai{}}, files)
	proc := executor.NewProcessor(exec, guard, files, func() bool { return cfg.Conversion.DeleteOriginal })

	facade := scheduler.NewFacade(queue, adm, leases, store, proc, cfg.Queue.EnqueueDelay)

	svc := triggers.NewService(proc, facade, files)
	h := handler.New(svc, cfg)
	r := router.NewRouter(h)

	worker := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Queue.Concurrency,
		Queues:      map[string]int{cfg.Queue.Name: 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(scheduler.TaskTypeConvert, facade.ProcessTask)

	s := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		HttpServer: s,
		worker:     worker,
		mux:        mux,
		enabled:    true,
	}, nil
}

func (a *App) Run() error {
	if !a.enabled {
		log.Printf("[app] conversion disabled, nothing to run")
		return nil
	}

	if err := a.worker.Start(a.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	log.Printf("starting server")
	return a.HttpServer.ListenAndServe()
}
