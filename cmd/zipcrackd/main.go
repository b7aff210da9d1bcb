package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/felnanuke2/rapid-crak/config"
	"github.com/felnanuke2/rapid-crak/internal/jobstore"
	"github.com/felnanuke2/rapid-crak/internal/server"
)

func main() {
	cfg, err := config.InitializeConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msgf("Error initializing config")
	}
	group, gCtx := errgroup.WithContext(context.Background())
	jobs := jobstore.NewStore()
	apiSrv := server.NewServer(cfg, jobs)
	group.Go(func() error {
		return apiSrv.Start(gCtx)
	})
	if err = group.Wait(); err != nil {
		log.Error().Err(err).Msgf("Daemon failed")
	}
}
