package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/portal"
	logsvc "github.com/setulabs/shikshasetu/services/logger"
	inmemstore "github.com/setulabs/shikshasetu/storage/docstore/inmem"
	pgstore "github.com/setulabs/shikshasetu/storage/docstore/postgres"
	redisstore "github.com/setulabs/shikshasetu/storage/docstore/redis"
	"github.com/setulabs/shikshasetu/storage/localstore"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	storeLogger := logsvc.NewRollbarLogger(logger, conf)
	storeLogger.Enable(false)

	store, err := openStore(conf, storeLogger)
	errAndDie(err)
	defer store.Close()

	cache, err := localstore.Open(conf.Store.CacheDir)
	errAndDie(err)

	syncer := portal.NewSyncer(store, cache, storeLogger)
	errAndDie(syncer.Start(context.Background()))
	defer syncer.Stop()

	// start CLI
	cli := commandLine{
		store:   store,
		syncer:  syncer,
		usrRepo: portal.NewUserRepository(syncer),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func openStore(conf *core.Config, storeLogger core.Logger) (core.Store, error) {
	switch conf.Store.Backend {
	case "redis":
		return redisstore.Open(conf, storeLogger)
	case "postgres":
		return pgstore.Open(conf, storeLogger)
	default:
		fmt.Println("warning: the inmem store does not persist; set (DEV|PROD)_STOREBACKEND")
		return inmemstore.Open(), nil
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
