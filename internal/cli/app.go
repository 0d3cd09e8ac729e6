// Package cli arma los comandos del runner de consultas del catálogo.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"fleximart-catalog/internal/cache"
	"fleximart-catalog/internal/config"
	"fleximart-catalog/internal/database"
	"fleximart-catalog/internal/logger"
	"fleximart-catalog/internal/repository"
	"fleximart-catalog/internal/service"
)

// app guarda las dependencias compartidas por los comandos. La conexión se
// abre recién cuando un comando la pide.
type app struct {
	out      io.Writer
	output   string
	noCache  bool
	logLevel string

	cfg        *config.Config
	log        zerolog.Logger
	client     *mongo.Client
	collection *mongo.Collection
	repo       *repository.ProductRepository
	store      cache.Store
	svc        *service.CatalogService
}

func newApp(out io.Writer) *app {
	return &app{
		out: out,
		log: logger.New("info", "console"),
	}
}

// Execute corre el comando indicado por args y libera las conexiones al terminar
func Execute(ctx context.Context, out io.Writer, args []string) error {
	a := newApp(out)
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(out)

	if err := root.ExecuteContext(ctx); err != nil {
		a.log.Error().Err(err).Msg("command failed")
		return err
	}
	return nil
}

// setup valida los flags globales, carga la configuración y arma el logger
func (a *app) setup(cmd *cobra.Command) error {
	if a.output != outputJSON && a.output != outputTable {
		return fmt.Errorf("invalid --output %q, expected %s or %s", a.output, outputJSON, outputTable)
	}

	cfg, source, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	a.cfg = cfg
	a.log = logger.New(cfg.LogLevel, cfg.LogFormat)
	a.log.Debug().Str("command", cmd.Name()).Msg(source)
	return nil
}

// connect abre MongoDB, el caché de reportes y el servicio
func (a *app) connect(ctx context.Context) error {
	if a.svc != nil {
		return nil
	}

	client, err := database.Connect(ctx, a.cfg.MongoURI, a.cfg.MongoTimeout, a.log)
	if err != nil {
		return err
	}
	a.client = client
	a.collection = client.Database(a.cfg.MongoDB).Collection(a.cfg.MongoCollection)
	a.repo = repository.NewProductRepository(a.collection, a.cfg.QueryTimeout)
	a.store = a.openCache(ctx)
	a.svc = service.NewCatalogService(a.repo, a.store, a.cfg.CacheTTL, a.log)

	a.log.Debug().Str("namespace", a.repo.Namespace()).Bool("cache", a.store != nil).Msg("catalog ready")
	return nil
}

// openCache usa Redis si está configurado y, si no responde, el caché en memoria
func (a *app) openCache(ctx context.Context) cache.Store {
	if a.noCache || !a.cfg.CacheEnabled() {
		return nil
	}

	if a.cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		if err == nil {
			return redisCache
		}
		a.log.Warn().Err(err).Str("addr", a.cfg.RedisAddr).Msg("redis unavailable, using in-memory cache")
	}

	return cache.New(a.cfg.CacheTTL, time.Minute)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("error closing cache")
		}
	}
	if a.client != nil {
		database.Disconnect(a.client, a.log)
	}
}

func (a *app) printer() *printer {
	return &printer{w: a.out, format: a.output}
}
