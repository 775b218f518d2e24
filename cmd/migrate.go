package cmd

import (
	"fmt"

	"github.com/killallgit/clipdeck-api/internal/database"
	"github.com/killallgit/clipdeck-api/internal/models"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Apply the database schema for the ClipDeck API.

The schema is managed with GORM AutoMigrate, which creates missing
tables, columns, and indexes. Existing data is preserved.`,
	RunE: runMigrate,
}

// migrateStatusCmd shows which tables exist
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  `Display which model tables currently exist in the database.`,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := database.InitializeWithMigrations()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer db.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d models\n", len(models.AllModels()))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := database.InitializeWithMigrations()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Database Migration Status")
	fmt.Fprintln(out, repeatString("=", 40))

	migrator := db.DB.Migrator()
	for _, model := range models.AllModels() {
		name := fmt.Sprintf("%T", model)
		state := "missing"
		if migrator.HasTable(model) {
			state = "present"
		}
		fmt.Fprintf(out, "  %-30s %s\n", name, state)
	}

	return nil
}

// repeatString repeats a string n times
func repeatString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += s
	}
	return result
}
