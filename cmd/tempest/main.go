package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tempestsim/tempest/internal/core/container"
	"github.com/tempestsim/tempest/internal/core/observability/log"

	_ "github.com/tempestsim/tempest/internal/modules/entitymod"
	_ "github.com/tempestsim/tempest/internal/modules/physics"
	_ "github.com/tempestsim/tempest/internal/modules/spatial"
)

func main() {
	configPath := flag.String("config", "", "path to container config YAML")
	flag.Parse()

	logger := log.Provide()

	cfg := container.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = container.LoadConfig(*configPath)
		if err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
	}

	host := container.NewHost(logger)
	if _, err := host.Create(cfg); err != nil {
		fmt.Println("Error creating container:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, os.Kill, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-stopCh
		cancel()
	}()

	if err := host.Run(ctx); err != nil {
		fmt.Println("Error running host:", err)
		os.Exit(1)
	}
}
