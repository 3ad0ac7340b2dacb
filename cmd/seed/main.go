package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"

	"github.com/JaimeStill/mod-depot/internal/api"
	"github.com/JaimeStill/mod-depot/internal/config"
	"github.com/JaimeStill/mod-depot/internal/infrastructure"
	"github.com/joho/godotenv"
)

func main() {
	var (
		all      = flag.Bool("all", false, "Run all seeders")
		accounts = flag.Bool("accounts", false, "Create the user document and verify the administrator")
		catalog  = flag.Bool("catalog", false, "Import mods from a manifest")
		file     = flag.String("file", "", "Catalog manifest (TOML)")
		list     = flag.Bool("list", false, "List available seeders")
	)
	flag.Parse()

	if *list {
		fmt.Println("Available seeders:")
		for _, s := range listSeeders() {
			fmt.Printf("  - %s: %s\n", s.Name(), s.Description())
		}
		return
	}

	if !*all && !*accounts && !*catalog {
		fmt.Println("usage: seed [-all|-accounts|-catalog] [-file <manifest.toml>] [-list]")
		flag.PrintDefaults()
		return
	}

	if *file != "" {
		if seeder, ok := getSeeder("catalog"); ok {
			seeder.(*CatalogSeeder).SetFile(*file)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("env file load failed: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		log.Fatalf("config finalize failed: %v", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatalf("infrastructure init failed: %v", err)
	}
	if err := infra.Start(); err != nil {
		log.Fatalf("infrastructure start failed: %v", err)
	}
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	domain, err := api.NewDomain(cfg, api.NewRuntime(cfg, infra))
	if err != nil {
		log.Fatalf("domain init failed: %v", err)
	}
	infra.Lifecycle.WaitForStartup()

	target := &Target{
		Mods:          domain.Mods,
		Users:         domain.Users,
		AdminEmail:    cfg.Auth.AdminEmail,
		MaxUploadSize: cfg.Storage.MaxUploadSizeBytes(),
	}

	ctx := context.Background()

	switch {
	case *all:
		err = runAllSeeders(ctx, target)
	case *accounts:
		err = runSeeder(ctx, target, "accounts")
	case *catalog:
		err = runSeeder(ctx, target, "catalog")
	}
	if err != nil {
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		log.Fatalf("seeding failed: %v", err)
	}

	fmt.Println("seeding completed successfully")
}
