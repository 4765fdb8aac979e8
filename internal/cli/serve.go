package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/qforge/qtopo/internal/server"
	"github.com/qforge/qtopo/pkg/cache"
)

// serveCommand creates the serve command, which runs the reference topology
// server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		mongoURI string
		mongoDB  string
		redis    string
		redisPwd string
		redisDB  int
		simStep  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference topology server",
		Long: `Run the reference topology server.

By default topologies live in memory and catalogs are uncached, which is
enough for local development. Pass --mongo-uri for durable storage and
--redis for a shared catalog cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var store server.Store
			if mongoURI != "" {
				mongo, err := server.NewMongoStore(ctx, mongoURI, mongoDB)
				if err != nil {
					return err
				}
				store = mongo
				c.Logger.Info("using mongo store", "database", mongoDB)
			} else {
				store = server.NewMemoryStore()
				c.Logger.Info("using in-memory store")
			}
			defer store.Close(ctx)

			var backend cache.Cache
			if redis != "" {
				rc, err := cache.NewRedisCache(ctx, redis, redisPwd, redisDB)
				if err != nil {
					return err
				}
				backend = rc
				c.Logger.Info("using redis cache", "addr", redis)
			}

			srv := server.New(server.Config{
				Addr:    addr,
				Store:   store,
				Cache:   backend,
				SimStep: simStep,
				Logger:  c.Logger,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI (default: in-memory store)")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "qtopo", "MongoDB database name")
	cmd.Flags().StringVar(&redis, "redis", "", "Redis address for the catalog cache (default: uncached)")
	cmd.Flags().StringVar(&redisPwd, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().DurationVar(&simStep, "sim-step", time.Second, "simulation tick interval")
	return cmd
}
