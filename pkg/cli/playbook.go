package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/duedil-lab/diligent/pkg/cli/config"
	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
	"github.com/duedil-lab/diligent/pkg/usecase"
	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// cmdPlaybook maintains the knowledge document store from the command line
func cmdPlaybook() *cli.Command {
	return &cli.Command{
		Name:    "playbook",
		Aliases: []string{"p"},
		Usage:   "Inspect and maintain company knowledge documents",
		Commands: []*cli.Command{
			cmdPlaybookList(),
			cmdPlaybookShow(),
			cmdPlaybookPrune(),
			cmdPlaybookPruneAll(),
		},
	}
}

// withPlaybook wires a repository and hands a PlaybookUseCase to fn
func withPlaybook(ctx context.Context, repoCfg *config.Repository, fn func(uc *usecase.PlaybookUseCase) error) error {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to initialize repository")
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}()

	return fn(newPlaybookOnly(repo))
}

// newPlaybookOnly builds use cases without search or curation dependencies.
// Maintenance commands never talk to providers.
func newPlaybookOnly(repo interfaces.Repository) *usecase.PlaybookUseCase {
	return usecase.NewPlaybookUseCase(repo, model.DefaultPolicy())
}

func cmdPlaybookList() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "list",
		Usage: "List companies with a knowledge document",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPlaybook(ctx, &repoCfg, func(uc *usecase.PlaybookUseCase) error {
				entries, err := uc.List(ctx)
				if err != nil {
					return err
				}

				if len(entries) == 0 {
					fmt.Fprintln(os.Stdout, "no knowledge documents")
					return nil
				}

				bold := color.New(color.Bold)
				for _, entry := range entries {
					bold.Fprintf(os.Stdout, "%s", entry.Slug)
					fmt.Fprintf(os.Stdout, "  topics=%d archives=%d\n", len(entry.Topics), entry.ArchiveCount)
				}
				return nil
			})
		},
	}
}

func cmdPlaybookShow() *cli.Command {
	var repoCfg config.Repository
	var company string
	var version string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "company",
			Usage:       "Company name or slug",
			Required:    true,
			Destination: &company,
		},
		&cli.StringFlag{
			Name:        "version",
			Usage:       "Archived version key (default: current)",
			Destination: &version,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "show",
		Usage: "Print a company's knowledge document",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPlaybook(ctx, &repoCfg, func(uc *usecase.PlaybookUseCase) error {
				doc, err := uc.Show(ctx, types.NewCompanySlug(company), types.VersionKey(version))
				if err != nil {
					return err
				}

				printDocument(doc)
				return nil
			})
		},
	}
}

func printDocument(doc *model.Document) {
	title := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.Faint)

	title.Fprintf(os.Stdout, "%s\n", doc.Slug)
	dim.Fprintf(os.Stdout, "updated %s\n\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	for _, topic := range doc.Topics() {
		section := doc.Section(topic)

		title.Fprintf(os.Stdout, "## %s\n", topic)
		fmt.Fprintln(os.Stdout, section.Text)
		for _, cite := range section.Citations {
			dim.Fprintf(os.Stdout, "  [%s] %s (%s, %s)\n",
				cite.SourceID, cite.SourceURL, cite.RetrievedAt.Format("2006-01-02"), cite.Confidence)
		}
		fmt.Fprintln(os.Stdout)
	}
}

func cmdPlaybookPrune() *cli.Command {
	var repoCfg config.Repository
	var company string
	var keep int

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "company",
			Usage:       "Company name or slug",
			Required:    true,
			Destination: &company,
		},
		&cli.IntFlag{
			Name:        "keep",
			Usage:       "Number of archived versions to retain",
			Value:       5,
			Destination: &keep,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "prune",
		Usage: "Remove old archived versions for one company",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPlaybook(ctx, &repoCfg, func(uc *usecase.PlaybookUseCase) error {
				removed, err := uc.Prune(ctx, types.NewCompanySlug(company), keep)
				if err != nil {
					return err
				}

				fmt.Fprintf(os.Stdout, "removed %d archived versions\n", removed)
				return nil
			})
		},
	}
}

func cmdPlaybookPruneAll() *cli.Command {
	var repoCfg config.Repository
	var keep int

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "keep",
			Usage:       "Number of archived versions to retain per company",
			Value:       5,
			Destination: &keep,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "prune-all",
		Usage: "Remove old archived versions for every company",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPlaybook(ctx, &repoCfg, func(uc *usecase.PlaybookUseCase) error {
				removed, err := uc.PruneAll(ctx, keep)
				if err != nil {
					return err
				}

				total := 0
				for slug, count := range removed {
					fmt.Fprintf(os.Stdout, "%s: removed %d\n", slug, count)
					total += count
				}
				fmt.Fprintf(os.Stdout, "removed %d archived versions total\n", total)
				return nil
			})
		},
	}
}
