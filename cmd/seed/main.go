// Command seed loads organisations, users and the global catalog (canonical
// schemas, processing pipelines, API connectors) from a yaml file. Running it
// twice with the same file changes nothing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/curator-backend/internal/data/db"
	"github.com/yungbote/curator-backend/internal/data/repos"
	"github.com/yungbote/curator-backend/internal/platform/logger"
	"github.com/yungbote/curator-backend/internal/services"
)

func main() {
	file := flag.String("file", "catalog.example.yaml", "seed file")
	flag.Parse()

	if err := run(*file); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	driver, dsn, err := db.ResolveDriver(os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}
	database, err := db.NewService(log, driver, dsn)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	seed, err := services.ParseCatalogSeed(f)
	if err != nil {
		return err
	}

	gdb := database.DB()
	catalog := services.NewCatalogService(
		log,
		repos.NewOrganisationRepo(gdb, log),
		repos.NewUserRepo(gdb, log),
		repos.NewCanonicalSchemaRepo(gdb, log),
		repos.NewProcessingPipelineRepo(gdb, log),
		repos.NewApiConnectorRepo(gdb, log),
	)
	report, err := catalog.Seed(context.Background(), seed)
	if err != nil {
		return err
	}
	fmt.Printf("created=%d updated=%d unchanged=%d\n", report.Created, report.Updated, report.Unchanged)
	return nil
}
