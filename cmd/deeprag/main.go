package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/raglab/deeprag/internal/app"
	cfgPkg "github.com/raglab/deeprag/pkg/config"
	"github.com/raglab/deeprag/pkg/tools"
	"github.com/raglab/deeprag/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("config: %v", e)
		}
		log.Fatal("invalid configuration")
	}

	service, index, err := app.BuildService(config)
	if err != nil {
		log.Fatal(err)
	}
	defer index.Close()

	if err := service.Initialize(context.Background()); err != nil {
		log.Fatal(err)
	}

	registry := tools.NewRegistry()
	if err := tools.RegisterRAGTools(registry, service); err != nil {
		log.Fatal(err)
	}

	srv := server.New(service, registry)
	log.Printf("starting server on port %s", config.Server.Port)
	if err := srv.Run(config.Server.Port); err != nil {
		log.Fatal(err)
	}
}
