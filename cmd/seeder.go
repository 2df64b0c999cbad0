package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/scolaris/school-management/internal/audit"
	auditRepo "github.com/scolaris/school-management/internal/audit/gormdb"
	"github.com/scolaris/school-management/internal/backup"
	"github.com/scolaris/school-management/internal/store"
	"github.com/scolaris/school-management/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the store and load the demo dataset",
	Long: `Wipes every collection and loads the demonstration school with its
accounts, classes, students and sample records. Intended for development
and first-run setups; all existing data is lost.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		logger.Init(cfg.Observability.Logging.Format, cfg.Observability.Logging.Level)
		lg := logger.LoggerWrapper()

		db, err := store.Open(cfg.Database)
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}
		if err := store.AutoMigrate(db); err != nil {
			log.Fatalf("failed to migrate store: %v", err)
		}

		recorder := audit.NewRecorder(auditRepo.NewAuditRepository(db), lg)
		engine := backup.NewEngine(db, recorder, lg)

		if err := engine.FactoryReset(context.Background()); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}

		fmt.Println("Demo dataset loaded. Super-admin login: superadmin@lycee-demo.example /", backup.DemoPassword)
	},
}
