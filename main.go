package main

import (
	"context"
	"haru/app/api"
	"haru/app/client/ddg"
	"haru/app/client/exchange"
	"haru/app/client/ollama"
	"haru/app/client/openmeteo"
	"haru/app/client/telegram"
	"haru/app/config"
	"haru/app/service/briefing"
	"haru/app/service/dispatch"
	"haru/app/service/engine"
	"haru/app/service/queue"
	"haru/app/service/scheduler"
	"haru/app/service/tools"
	"haru/app/store"
	"haru/app/util/mylog"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, store.New)
	do.Provide(di, ollama.NewClient)
	do.Provide(di, telegram.NewClient)
	do.Provide(di, openmeteo.NewClient)
	do.Provide(di, exchange.NewClient)
	do.Provide(di, ddg.NewClient)
	do.Provide(di, queue.New)
	do.Provide(di, tools.NewRegistry)
	do.Provide(di, briefing.New)
	do.Provide(di, dispatch.New)
	do.Provide(di, scheduler.New)
	do.Provide(di, engine.New)
	do.Provide(di, api.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*telegram.Client](di).RunPolling(appCtx)
	go do.MustInvoke[*scheduler.Service](di).Run(appCtx)
	go do.MustInvoke[*api.Server](di).Run(appCtx)

	go do.MustInvoke[*engine.Service](di).Run(appCtx)

	<-appCtx.Done()
}
