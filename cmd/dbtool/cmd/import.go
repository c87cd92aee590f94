package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"air-demand-service/internal/adapters/airports"
	"air-demand-service/internal/adapters/repositories"
	"air-demand-service/internal/platform/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repositories.InitSchema(cmd.Context(), db); err != nil {
			return err
		}
		logging.Named("dbtool").Info("schema ready")
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <table> <file>",
	Short: "Import a CSV file into a table",
	Long: fmt.Sprintf(`Import rows into one of the tables %s.

Rows already present are counted as duplicates and left unchanged.
The positions table reads the colon separated Global Airport Database.`, tableNames()),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, path := strings.ToLower(args[0]), args[1]
		if table == "positions" {
			return importPositions(cmd, path)
		}

		t, ok := repositories.Tables[table]
		if !ok {
			return fmt.Errorf("unknown table %q (use %s)", table, tableNames())
		}

		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		res, err := repositories.ImportCSV(cmd.Context(), db, t, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d added, %d duplicate, %d malformed\n",
			t.Name, res.Added, res.Duplicate, res.Malformed)
		if !res.Changed() {
			fmt.Fprintln(cmd.OutOrStdout(), "no changes")
		}
		return nil
	},
}

func importPositions(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	positions, err := airports.ParsePositions(f)
	if err != nil {
		return fmt.Errorf("import positions: %s: %w", path, err)
	}

	db, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewPostgresAirportRepository(db).PutPositions(cmd.Context(), positions); err != nil {
		return err
	}
	logging.Named("dbtool").Info("positions imported", zap.Int("count", len(positions)))
	return nil
}

func tableNames() string {
	names := make([]string, 0, len(repositories.Tables)+1)
	for name := range repositories.Tables {
		names = append(names, name)
	}
	names = append(names, "positions")
	sort.Strings(names)
	return strings.Join(names, ", ")
}
