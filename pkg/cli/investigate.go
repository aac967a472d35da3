package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/duedil-lab/diligent/pkg/cli/config"
	"github.com/duedil-lab/diligent/pkg/service/curator"
	"github.com/duedil-lab/diligent/pkg/service/evidence"
	"github.com/duedil-lab/diligent/pkg/usecase"
	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// cmdInvestigate runs a single investigation synchronously and prints the
// report. Mainly for development against the in-memory backend.
func cmdInvestigate() *cli.Command {
	var companyName string
	var companySite string
	var jurisdiction string
	var windowMonths int
	var planID string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var searchCfg config.Search
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "company",
			Usage:       "Company name to investigate",
			Required:    true,
			Destination: &companyName,
		},
		&cli.StringFlag{
			Name:        "site",
			Usage:       "Company web site hint",
			Destination: &companySite,
		},
		&cli.StringFlag{
			Name:        "jurisdiction",
			Usage:       "Jurisdiction hint (e.g. Germany)",
			Destination: &jurisdiction,
		},
		&cli.IntFlag{
			Name:        "window-months",
			Usage:       "Evidence time window in months",
			Value:       24,
			Destination: &windowMonths,
		},
		&cli.StringFlag{
			Name:        "plan",
			Usage:       "Plan tier (standard, deep or pro)",
			Value:       "standard",
			Destination: &planID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, searchCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "investigate",
		Aliases: []string{"i"},
		Usage:   "Run one investigation and print the report",
		Flags:   flags,
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

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			source, err := searchCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure search providers")
			}

			curatorSvc, err := curator.New(llmClient, repo.Fragment(), policy)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize curator")
			}

			uc := usecase.New(repo, source, curatorSvc,
				usecase.WithPolicy(policy),
				usecase.WithPageFetcher(evidence.NewPageFetcher()),
			)

			job, err := uc.Job.Submit(ctx, &usecase.SubmitRequest{
				CompanyName:      companyName,
				CompanySite:      companySite,
				JurisdictionHint: jurisdiction,
				TimeWindowMonths: windowMonths,
				PlanID:           planID,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to submit investigation")
			}

			// Submit dispatches asynchronously; run the rest of the wait loop
			// by polling the job until it turns terminal.
			final, err := uc.Job.Await(ctx, job.ID)
			if err != nil {
				return goerr.Wrap(err, "investigation did not finish")
			}

			if final.Result != nil {
				fmt.Fprintln(os.Stdout, final.Result.Report)
			}
			if final.ErrorDetail != "" {
				return goerr.New("investigation failed", goerr.V("detail", final.ErrorDetail))
			}

			return nil
		},
	}
}
