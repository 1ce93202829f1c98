package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"targetwatch/config"
	"targetwatch/pkg/db"
	"targetwatch/pkg/migration"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Maintain the panel state database",
}

var dbVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(r *migration.Runner) error {
			version, dirty, err := r.Version(cmd.Context())
			if err != nil {
				return err
			}
			state := "clean"
			if dirty {
				state = "dirty"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
			return nil
		})
	},
}

var dbDownCmd = &cobra.Command{
	Use:   "down <version>",
	Short: "Revert migrations newer than version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := strconv.Atoi(args[0])
		if err != nil || target < 0 {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withRunner(func(r *migration.Runner) error {
			if err := r.Down(cmd.Context(), target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reverted to schema version %d\n", target)
			return nil
		})
	},
}

var dbForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Mark a failed migration as clean after repairing it by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withRunner(func(r *migration.Runner) error {
			if err := r.Force(cmd.Context(), version); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked schema version %d clean\n", version)
			return nil
		})
	},
}

func init() {
	dbCmd.AddCommand(dbVersionCmd, dbDownCmd, dbForceCmd)
}

// withRunner opens the database without migrating it, so a dirty schema can
// still be inspected and repaired.
func withRunner(fn func(*migration.Runner) error) error {
	path := dbPath
	if path == "" {
		var err error
		if path, err = config.GetDatabasePath(); err != nil {
			return err
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(migration.NewRunner(database))
}
