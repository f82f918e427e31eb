package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"promptdesk/engine/internal/appdirs"
	"promptdesk/engine/internal/engine"
	"promptdesk/engine/internal/envfile"
	"promptdesk/engine/internal/envutil"
	"promptdesk/engine/internal/errinfo"
	"promptdesk/engine/internal/logging"
	"promptdesk/engine/internal/rpc"
	"promptdesk/engine/internal/watch"
)

func main() {
	envResult := envfile.Load()
	debug := envutil.Bool("PROMPTDESK_DEBUG")
	dataDir, err := appdirs.DataDir()
	if err != nil {
		log.Fatalf("engine init failed: %v", err)
	}
	logSetup, logErr := logging.NewFileLogger(dataDir, debug)
	logger := logSetup.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("component", "engine")
	if logSetup.Enabled {
		logger.Info("engine.logging_enabled", "path", logSetup.Path)
	}
	if envResult.Loaded {
		logger.Debug("engine.env_loaded", "path", envResult.Path, "keys", envResult.Keys)
	}
	if envResult.Err != nil {
		logger.Warn("engine.env_load_failed", "path", envResult.Path, "error", envResult.Err.Error())
	}
	if logErr != nil {
		logger.Warn("engine.log_setup_failed", "error", logErr.Error())
	}
	if logSetup.Close != nil {
		defer logSetup.Close()
	}

	eng, err := engine.New(engine.WithLogger(logger), engine.WithDataDir(dataDir))
	if err != nil {
		logger.Error("engine.init_failed", "error", err.Error())
		log.Fatalf("engine init failed: %v", err)
	}
	server := rpc.NewServer(engine.APIVersion, os.Stdin, os.Stdout, logger)
	eng.SetNotifier(server.Notify)

	layout, err := eng.Layout()
	if err != nil {
		logger.Error("engine.layout_failed", "error", err.Error())
		log.Fatalf("engine init failed: %v", err)
	}
	watcher, err := watch.New(
		[]string{layout.KBDir, layout.AgentsDir, layout.MainDir},
		eng.NotifyCorpusChanged,
		logger,
	)
	if err != nil {
		logger.Warn("engine.watch_init_failed", "error", err.Error())
	} else {
		if err := watcher.Start(context.Background()); err != nil {
			logger.Warn("engine.watch_start_failed", "error", err.Error())
		}
		defer watcher.Stop()
	}

	register := func(method string, fn func(context.Context, json.RawMessage) (any, *errinfo.ErrorInfo)) {
		server.Register(method, func(ctx context.Context, params json.RawMessage) (any, *rpc.Error) {
			result, errInfo := fn(ctx, params)
			if errInfo != nil {
				msg := errInfo.ErrorCode
				if errInfo.Detail != "" {
					msg = errInfo.Detail
				}
				return nil, &rpc.Error{Message: msg, Data: errInfo}
			}
			return result, nil
		})
	}

	register("EngineGetInfo", eng.EngineGetInfo)

	register("SessionOpen", eng.SessionOpen)
	register("SessionGet", eng.SessionGet)
	register("SessionParseLinks", eng.SessionParseLinks)
	register("SessionNavigate", eng.SessionNavigate)
	register("SessionEdit", eng.SessionEdit)
	register("SessionGetDiff", eng.SessionGetDiff)
	register("SessionRenderDiff", eng.SessionRenderDiff)
	register("SessionRenderPreview", eng.SessionRenderPreview)
	register("SessionSave", eng.SessionSave)
	register("SessionDiscard", eng.SessionDiscard)
	register("SessionCloseLinked", eng.SessionCloseLinked)
	register("SessionClose", eng.SessionClose)

	register("CorpusListFiles", eng.CorpusListFiles)
	register("CorpusGetLayout", eng.CorpusGetLayout)

	register("SettingsGet", eng.SettingsGet)
	register("SettingsUpdate", eng.SettingsUpdate)

	if err := server.Serve(context.Background()); err != nil {
		logger.Error("rpc.server_error", "error", err.Error())
		log.Fatalf("rpc server error: %v", err)
	}
}
