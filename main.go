/*
vkscene renders every model and texture found in the asset directory
through Vulkan. The window can be resized freely; assets are reloaded
when they change on disk.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/vkscene/engine"
	"github.com/spaghettifunk/vkscene/engine/config"
	"github.com/spaghettifunk/vkscene/engine/core"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := engine.New(cfg)

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// the loop owns the main thread; the signal only asks it to stop
	go func() {
		<-sigCh
		cancel()
		e.Stop()
	}()

	if err := e.Initialize(ctx); err != nil {
		core.LogError("failed to initialize the engine: %s", err)
		_ = e.Shutdown()
		os.Exit(1)
	}

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
