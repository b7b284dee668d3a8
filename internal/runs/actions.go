// Package runs implements the run-history listing command.
package runs

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/govdocs/harvester/pkg/db"
)

func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-20s %-8s %-10s %-8s %-8s %-8s\n",
		"ID", "Created", "Crawler", "Items", "Downloaded", "Skipped", "Dead", "Dropped")
	fmt.Println(strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-20s %-8d %-10d %-8d %-8d %-8d\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Crawler,
			r.Items,
			r.Downloaded,
			r.Skipped,
			r.DeadLetters,
			r.Dropped,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))

	return nil
}
