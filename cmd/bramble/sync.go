package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/bramble/pkg/envsync"
)

var (
	syncSourceDSN string
	syncTargetDSN string
	syncForce     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the target environment's content with the source's",
	Long: `Copies every content table from the source database into the target
inside a single transaction. The target's existing content is replaced
entirely; on any failure the target is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		if syncSourceDSN == "" || syncTargetDSN == "" {
			return fmt.Errorf("--source-dsn and --target-dsn are required")
		}

		if !syncForce {
			fmt.Printf("This will REPLACE all content in the target database.\nTables, in copy order: %s\nContinue? [y/N]: ", strings.Join(envsync.Tables, ", "))
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(strings.ToLower(answer)) != "y" {
				fmt.Println("aborted")
				return nil
			}
		}

		replicator, err := envsync.NewReplicator(syncSourceDSN, syncTargetDSN, logger)
		if err != nil {
			return err
		}
		defer replicator.Close()

		report, err := replicator.Run(cmd.Context())
		if err != nil {
			return err
		}

		for _, t := range report.Tables {
			fmt.Printf("%-20s %d rows\n", t.Table, t.Rows)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncSourceDSN, "source-dsn", "", "source environment, postgres:// URL form only")
	syncCmd.Flags().StringVar(&syncTargetDSN, "target-dsn", "", "target environment, postgres:// URL form only")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "skip the confirmation prompt")
}
