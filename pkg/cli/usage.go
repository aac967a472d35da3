package cli

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/duedil-lab/diligent/pkg/cli/config"
	"github.com/duedil-lab/diligent/pkg/usecase"
	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// cmdUsage prints the windowed curation cost summary as JSON
func cmdUsage() *cli.Command {
	var repoCfg config.Repository
	var windowHours int

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "window-hours",
			Usage:       "Aggregation window in hours",
			Value:       24,
			Destination: &windowHours,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "usage",
		Usage: "Print curation usage summary",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.NewUsageUseCase(repo, func() time.Time { return time.Now().UTC() })

			summary, err := uc.WindowedSummary(ctx, time.Duration(windowHours)*time.Hour)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return goerr.Wrap(err, "failed to encode usage summary")
			}

			return nil
		},
	}
}
