package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/setulabs/shikshasetu/apps/api/echo"
	"github.com/setulabs/shikshasetu/core"
	"github.com/setulabs/shikshasetu/core/notify"
	"github.com/setulabs/shikshasetu/core/portal"
	"github.com/setulabs/shikshasetu/core/user"
	emailsvc "github.com/setulabs/shikshasetu/services/email"
	logsvc "github.com/setulabs/shikshasetu/services/logger"
	textgensvc "github.com/setulabs/shikshasetu/services/textgen"
	inmemstore "github.com/setulabs/shikshasetu/storage/docstore/inmem"
	pgstore "github.com/setulabs/shikshasetu/storage/docstore/postgres"
	redisstore "github.com/setulabs/shikshasetu/storage/docstore/redis"
	"github.com/setulabs/shikshasetu/storage/localstore"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	storeLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	storeLogger.Enable(!conf.Debug)

	// set up the document store and its local fallback
	store, err := openStore(conf, storeLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up document store: %v", err), err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			storeLogger.Error(fmt.Sprintf("closing document store: %v", err), err)
		}
	}()

	cache, err := localstore.Open(conf.Store.CacheDir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up local cache: %v", err), err)
	}

	syncer := portal.NewSyncer(store, cache, storeLogger)
	if err = syncer.Start(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("starting syncer: %v", err), err)
	}
	defer syncer.Stop()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var gen notify.Generator
	if conf.TextGen.ApiKey != "" {
		gen = textgensvc.NewGeminiService(conf, logger)
	} else {
		gen = textgensvc.NewDummyService()
	}

	usrSvc := user.NewService(portal.NewUserRepository(syncer), conf)
	notifySvc := notify.NewService(gen, mailSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			Syncer:     syncer,
			NotifySvc:  notifySvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func openStore(conf *core.Config, logger core.Logger) (core.Store, error) {
	switch conf.Store.Backend {
	case "redis":
		return redisstore.Open(conf, logger)
	case "postgres":
		return pgstore.Open(conf, logger)
	default:
		return inmemstore.Open(), nil
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
