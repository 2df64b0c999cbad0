package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scolaris/school-management/internal/audit"
	auditRepo "github.com/scolaris/school-management/internal/audit/gormdb"
	"github.com/scolaris/school-management/internal/backup"
	"github.com/scolaris/school-management/internal/store"
	"github.com/scolaris/school-management/pkg/logger"
)

var (
	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Export, restore or reset the store",
	}

	backupFlat bool
	backupOut  string

	backupExportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write a backup file of every collection",
		Run: func(cmd *cobra.Command, args []string) {
			engine := newBackupEngine()

			format := backup.FormatStructured
			if backupFlat {
				format = backup.FormatFlat
			}

			content, err := engine.CreateBackup(context.Background(), format)
			if err != nil {
				log.Fatalf("backup failed: %v", err)
			}

			path := backupOut
			if path == "" {
				path = backup.FileName(format, time.Now())
			}
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				log.Fatalf("failed to write %s: %v", path, err)
			}
			fmt.Println("Backup written to", path)
		},
	}

	backupRestoreCmd = &cobra.Command{
		Use:   "restore [file]",
		Short: "Replace every collection with the contents of a structured backup",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := filepath.Clean(args[0])
			content, err := os.ReadFile(path)
			if err != nil {
				log.Fatalf("failed to read %s: %v", path, err)
			}

			if !confirm(fmt.Sprintf("Restoring %s replaces ALL current data. Continue? [y/N] ", path)) {
				fmt.Println("Aborted.")
				return
			}

			engine := newBackupEngine()
			if err := engine.RestoreBackup(context.Background(), string(content)); err != nil {
				log.Fatalf("restore failed: %v", err)
			}
			fmt.Println("Restore complete.")
		},
	}

	backupResetCmd = &cobra.Command{
		Use:   "factory-reset",
		Short: "Wipe every collection and reload the demo dataset",
		Run: func(cmd *cobra.Command, args []string) {
			if !confirm("Factory reset erases ALL data and loads the demo dataset. Continue? [y/N] ") {
				fmt.Println("Aborted.")
				return
			}

			engine := newBackupEngine()
			if err := engine.FactoryReset(context.Background()); err != nil {
				log.Fatalf("factory reset failed: %v", err)
			}
			fmt.Println("Factory reset complete.")
		},
	}
)

func init() {
	backupExportCmd.Flags().BoolVar(&backupFlat, "flat", false, "export as flat SQL statements instead of a structured backup")
	backupExportCmd.Flags().StringVarP(&backupOut, "out", "o", "", "output file path (defaults to a dated name)")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupResetCmd)
}

func newBackupEngine() *backup.Engine {
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

	recorder := audit.NewRecorder(auditRepo.NewAuditRepository(db), lg)
	return backup.NewEngine(db, recorder, lg)
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
