package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/duedil-lab/diligent/pkg/domain/interfaces"
	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
	"github.com/duedil-lab/diligent/pkg/service/curator"
	"github.com/duedil-lab/diligent/pkg/service/evidence"
	"github.com/duedil-lab/diligent/pkg/service/notify"
	"github.com/duedil-lab/diligent/pkg/service/retrieval"
	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// phase is the orchestrator's internal state. Transitions are logged and
// cancellation is checked between them; the job only exposes the coarse
// JobStatus.
type phase string

const (
	phasePlanning   phase = "planning"
	phaseSearching  phase = "searching"
	phaseCurating   phase = "curating"
	phaseCritiquing phase = "critiquing"
	phaseReporting  phase = "reporting"
)

// searchConcurrency bounds parallel evidence fetches per cycle
const searchConcurrency = 4

// InvestigationUseCase drives one investigation run from planning to report
type InvestigationUseCase struct {
	repo     interfaces.Repository
	policy   *model.Policy
	source   evidence.Source
	curator  curator.Service
	fetcher  evidence.Fetcher
	gateway  *retrieval.Gateway
	notifier notify.Notifier
	now      func() time.Time
}

func newInvestigationUseCase(
	repo interfaces.Repository,
	policy *model.Policy,
	source evidence.Source,
	curatorSvc curator.Service,
	fetcher evidence.Fetcher,
	gateway *retrieval.Gateway,
	notifier notify.Notifier,
	now func() time.Time,
) *InvestigationUseCase {
	return &InvestigationUseCase{
		repo:     repo,
		policy:   policy,
		source:   source,
		curator:  curatorSvc,
		fetcher:  fetcher,
		gateway:  gateway,
		notifier: notifier,
		now:      now,
	}
}

// Run executes the investigation for a job. It assumes the company lease is
// already held by this job and releases it on exit, whatever the outcome, so
// a failed run never leaves the company permanently busy. Errors are absorbed
// into the job's terminal status; the returned error reflects infrastructure
// failures only.
func (uc *InvestigationUseCase) Run(ctx context.Context, jobID types.JobID, slug types.CompanySlug) error {
	logger := logging.From(ctx)

	defer func() {
		if err := uc.repo.Lease().Release(ctx, slug, jobID); err != nil {
			logger.Error("failed to release company lease",
				"slug", slug, "jobID", jobID, "error", err)
		}
	}()

	job, err := uc.repo.Job().Get(ctx, jobID)
	if err != nil {
		return goerr.Wrap(err, "failed to load job", goerr.V("jobID", jobID))
	}
	if job.Status.IsTerminal() {
		logger.Warn("job already terminal, skipping run", "jobID", jobID, "status", job.Status)
		return nil
	}

	job.Status = types.JobStatusProcessing
	if err := uc.repo.Job().Update(ctx, job); err != nil {
		return goerr.Wrap(err, "failed to mark job processing", goerr.V("jobID", jobID))
	}

	result, runErr := uc.investigate(ctx, job)
	if runErr != nil {
		return uc.finish(ctx, job, types.JobStatusError, nil, runErr)
	}
	return uc.finish(ctx, job, types.JobStatusCompleted, result, nil)
}

// finish moves the job to a terminal status and fires the notifier
func (uc *InvestigationUseCase) finish(ctx context.Context, job *model.Job, status types.JobStatus, result *model.JobResult, cause error) error {
	logger := logging.From(ctx)

	job.Status = status
	job.Result = result
	if cause != nil {
		job.ErrorDetail = cause.Error()
		logger.Error("investigation failed",
			"jobID", job.ID, "slug", job.CompanySlug, "error", goerr.Unwrap(cause))
	}

	if err := uc.repo.Job().Update(ctx, job); err != nil {
		return goerr.Wrap(err, "failed to finalize job", goerr.V("jobID", job.ID))
	}

	if err := uc.notifier.NotifyJobDone(ctx, job); err != nil {
		logger.Warn("job notification failed", "jobID", job.ID, "error", err)
	}

	return nil
}

// investigate runs the planning/search/curate/critique loop and composes the
// final report. Document and ledger writes are durable before each state
// advance; a cancellation between phases leaves the document store intact.
func (uc *InvestigationUseCase) investigate(ctx context.Context, job *model.Job) (*model.JobResult, error) {
	logger := logging.From(ctx)

	gaps, err := uc.plan(ctx, job)
	if err != nil {
		return nil, err
	}

	budget := uc.policy.CycleBudget(job)
	for cycle := 1; cycle <= budget && countOpen(gaps) > 0; cycle++ {
		logger.Info("investigation cycle",
			"jobID", job.ID, "slug", job.CompanySlug,
			"cycle", cycle, "budget", budget, "open_gaps", countOpen(gaps))

		if err := uc.transition(ctx, job, phaseSearching); err != nil {
			return nil, err
		}
		found := uc.search(ctx, job, gaps, cycle)

		if err := uc.transition(ctx, job, phaseCurating); err != nil {
			return nil, err
		}
		if err := uc.curate(ctx, job, found); err != nil {
			return nil, err
		}

		if err := uc.transition(ctx, job, phaseCritiquing); err != nil {
			return nil, err
		}
		if err := uc.critique(ctx, job, gaps); err != nil {
			return nil, err
		}
	}

	if err := uc.transition(ctx, job, phaseReporting); err != nil {
		return nil, err
	}

	return uc.report(ctx, job, gaps)
}

// transition checks cancellation at a phase boundary
func (uc *InvestigationUseCase) transition(ctx context.Context, job *model.Job, next phase) error {
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "investigation cancelled",
			goerr.V("jobID", job.ID),
			goerr.V("phase", string(next)),
		)
	}

	logging.From(ctx).Debug("phase transition", "jobID", job.ID, "phase", string(next))
	return nil
}

// plan opens one gap per policy topic, pre-resolving topics the current
// document already covers adequately.
func (uc *InvestigationUseCase) plan(ctx context.Context, job *model.Job) ([]*model.Gap, error) {
	if err := uc.transition(ctx, job, phasePlanning); err != nil {
		return nil, err
	}

	gaps := make([]*model.Gap, 0, len(uc.policy.Topics))
	for _, topic := range uc.policy.Topics {
		gap := model.NewGap(topic, 0)

		if uc.policy.FreshnessWithinWindow {
			covered, err := uc.gateway.Coverage(ctx, job.CompanySlug, topic, uc.coverageWindow(job), uc.now())
			if err != nil {
				return nil, goerr.Wrap(err, "failed adequacy pre-check",
					goerr.V("slug", job.CompanySlug), goerr.V("topic", topic))
			}
			if covered {
				gap.Resolve()
			}
		}

		gaps = append(gaps, gap)
	}

	return gaps, nil
}

// topicEvidence pairs an open gap with the evidence found for it this cycle
type topicEvidence struct {
	topic   string
	results []evidence.Result
}

// search fetches evidence for every open gap in parallel. A provider failure
// is retried once; a gap whose search still fails stays open and contributes
// no evidence this cycle.
func (uc *InvestigationUseCase) search(ctx context.Context, job *model.Job, gaps []*model.Gap, cycle int) []topicEvidence {
	logger := logging.From(ctx)

	open := openGaps(gaps)
	found := make([]topicEvidence, len(open))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(searchConcurrency)

	for i, gap := range open {
		eg.Go(func() error {
			gap.Attempts++
			query := buildQuery(job, gap.Topic)

			results, err := uc.source.Search(egCtx, query)
			if err != nil {
				// one retry per gap per cycle
				results, err = uc.source.Search(egCtx, query)
			}
			if err != nil {
				logger.Warn("evidence search degraded, gap stays open",
					"jobID", job.ID, "topic", gap.Topic, "cycle", cycle, "error", err)
				return nil
			}

			found[i] = topicEvidence{topic: gap.Topic, results: uc.expand(egCtx, results)}
			return nil
		})
	}

	// goroutines only report nil; Wait is for completion
	_ = eg.Wait()

	return found
}

// maxEvidenceChars caps the raw text handed to curation per result
const maxEvidenceChars = 8000

// expand replaces snippets too short to curate with fetched page text.
// Fetch failures keep the snippet; expansion never drops a result.
func (uc *InvestigationUseCase) expand(ctx context.Context, results []evidence.Result) []evidence.Result {
	if uc.fetcher == nil {
		return results
	}

	logger := logging.From(ctx)
	for i := range results {
		if len(results[i].Text) >= uc.policy.MinFragmentChars || results[i].URL == "" {
			continue
		}

		text, err := uc.fetcher.FetchPage(ctx, results[i].URL)
		if err != nil {
			logger.Debug("page expansion failed, keeping snippet",
				"url", results[i].URL, "error", err)
			continue
		}
		if len(text) > maxEvidenceChars {
			text = text[:maxEvidenceChars]
		}
		if text != "" {
			results[i].Text = text
		}
	}

	return results
}

// buildQuery shapes the search query for a company topic
func buildQuery(job *model.Job, topic string) string {
	parts := []string{job.CompanyName, topic}
	if job.JurisdictionHint != "" {
		parts = append(parts, job.JurisdictionHint)
	}
	if job.CompanySite != "" {
		parts = append(parts, job.CompanySite)
	}
	return strings.Join(parts, " ")
}

// curate compresses this cycle's evidence into the knowledge document. Each
// accepted fragment and its ledger event are persisted as they happen; the
// document is replaced once per cycle so every cycle that changed knowledge
// leaves one archived version.
func (uc *InvestigationUseCase) curate(ctx context.Context, job *model.Job, found []topicEvidence) error {
	logger := logging.From(ctx)

	doc, err := uc.repo.Document().GetCurrent(ctx, job.CompanySlug)
	if err != nil {
		if !isRepoNotFound(err) {
			return goerr.Wrap(err, "failed to load document", goerr.V("slug", job.CompanySlug))
		}
		doc = model.NewDocument(job.CompanySlug)
	}

	changed := false
	for _, te := range found {
		known := uc.knownContext(ctx, job.CompanySlug, te.topic)
		for _, result := range te.results {
			if uc.curateOne(ctx, job, doc, te.topic, known, result) {
				changed = true
			}
		}
	}

	if !changed {
		logger.Debug("no knowledge change this cycle", "jobID", job.ID, "slug", job.CompanySlug)
		return nil
	}

	if err := uc.repo.Document().Replace(ctx, job.CompanySlug, doc); err != nil {
		return goerr.Wrap(err, "failed to replace document", goerr.V("slug", job.CompanySlug))
	}

	return nil
}

// maxKnownContextChars caps the known-context excerpt handed to curation
const maxKnownContextChars = 4000

// knownContext assembles what the store already says about a topic so the
// curator can judge novelty. Failures degrade to no context.
func (uc *InvestigationUseCase) knownContext(ctx context.Context, slug types.CompanySlug, topic string) string {
	rc, err := uc.gateway.Retrieve(ctx, slug, topic)
	if err != nil {
		logging.From(ctx).Debug("known context lookup failed",
			"slug", slug, "topic", topic, "error", err)
		return ""
	}

	var parts []string
	if rc.Excerpt != nil && rc.Excerpt.Text != "" {
		parts = append(parts, rc.Excerpt.Text)
	}
	for _, fragment := range rc.Fresh {
		parts = append(parts, fragment.Summary)
	}

	known := strings.Join(parts, "\n\n")
	if len(known) > maxKnownContextChars {
		known = known[:maxKnownContextChars]
	}
	return known
}

// curateOne runs one piece of evidence through the curator and applies the
// outcome to the in-memory document. It reports whether the document changed.
// Curation failures skip the evidence; they never fail the run.
func (uc *InvestigationUseCase) curateOne(ctx context.Context, job *model.Job, doc *model.Document, topic, known string, result evidence.Result) bool {
	logger := logging.From(ctx)

	curated, err := uc.curator.Curate(ctx, curator.Input{
		Slug:         job.CompanySlug,
		CompanyName:  job.CompanyName,
		Topic:        topic,
		SourceID:     result.SourceID,
		SourceURL:    result.URL,
		RetrievedAt:  result.RetrievedAt,
		RawText:      result.Text,
		KnownContext: known,
	})
	if err != nil {
		if errors.Is(err, curator.ErrDiscarded) {
			logger.Debug("evidence discarded",
				"jobID", job.ID, "topic", topic, "sourceID", result.SourceID)
		} else {
			logger.Warn("curation failed, skipping evidence",
				"jobID", job.ID, "topic", topic, "sourceID", result.SourceID, "error", err)
		}
		return false
	}

	event := &model.CurationEvent{
		Timestamp:   uc.now(),
		Slug:        job.CompanySlug,
		SourceID:    result.SourceID,
		Topic:       topic,
		InputChars:  curated.InputChars,
		OutputChars: curated.OutputChars,
	}
	if err := uc.repo.Ledger().Append(ctx, event); err != nil {
		logger.Error("failed to append curation event",
			"jobID", job.ID, "topic", topic, "error", err)
	}

	citation := model.Citation{
		SourceID:    result.SourceID,
		SourceURL:   result.URL,
		RetrievedAt: result.RetrievedAt,
		Confidence:  curated.Confidence,
	}

	// Known evidence folds in as an extra citation without new section text
	if curated.DuplicateOf != nil {
		return doc.AppendCitation(topic, citation, uc.now())
	}

	fragment := &model.Fragment{
		Slug:        job.CompanySlug,
		Topic:       topic,
		SourceID:    result.SourceID,
		SourceURL:   result.URL,
		RetrievedAt: result.RetrievedAt,
		RawText:     result.Text,
		Summary:     curated.Summary,
		Embedding:   curated.Embedding,
	}
	if _, err := uc.repo.Fragment().Create(ctx, fragment); err != nil {
		logger.Error("failed to store fragment",
			"jobID", job.ID, "topic", topic, "error", err)
		return false
	}

	section := doc.Section(topic)
	text := curated.Summary
	var citations []model.Citation
	if section != nil {
		if section.Text != "" {
			text = section.Text + "\n\n" + curated.Summary
		}
		citations = section.Citations
	}
	doc.SetSection(topic, text, append(citations, citation), uc.now())

	return true
}

// coverageWindow resolves the freshness window the adequacy check uses. Zero
// means any citation counts.
func (uc *InvestigationUseCase) coverageWindow(job *model.Job) time.Duration {
	if !uc.policy.FreshnessWithinWindow {
		return 0
	}
	return job.TimeWindow.Duration()
}

// critique re-evaluates every open gap against the stored document
func (uc *InvestigationUseCase) critique(ctx context.Context, job *model.Job, gaps []*model.Gap) error {
	for _, gap := range gaps {
		if !gap.IsOpen() {
			continue
		}

		covered, err := uc.gateway.Coverage(ctx, job.CompanySlug, gap.Topic, uc.coverageWindow(job), uc.now())
		if err != nil {
			return goerr.Wrap(err, "failed coverage check",
				goerr.V("slug", job.CompanySlug), goerr.V("topic", gap.Topic))
		}
		if covered {
			gap.Resolve()
		}
	}

	return nil
}

// report composes the deliverable strictly from the current document plus the
// list of gaps that stayed open.
func (uc *InvestigationUseCase) report(ctx context.Context, job *model.Job, gaps []*model.Gap) (*model.JobResult, error) {
	doc, err := uc.repo.Document().GetCurrent(ctx, job.CompanySlug)
	if err != nil {
		if !isRepoNotFound(err) {
			return nil, goerr.Wrap(err, "failed to load document for report", goerr.V("slug", job.CompanySlug))
		}
		doc = model.NewDocument(job.CompanySlug)
	}

	unresolved := make([]string, 0)
	for _, gap := range gaps {
		if gap.IsOpen() {
			unresolved = append(unresolved, gap.Topic)
		}
	}

	return &model.JobResult{
		Report:          composeReport(job, doc, unresolved),
		DocumentVersion: types.NewVersionKey(doc.UpdatedAt),
		UnresolvedGaps:  unresolved,
	}, nil
}

func countOpen(gaps []*model.Gap) int {
	return len(openGaps(gaps))
}

func openGaps(gaps []*model.Gap) []*model.Gap {
	var open []*model.Gap
	for _, gap := range gaps {
		if gap.IsOpen() {
			open = append(open, gap)
		}
	}
	return open
}
