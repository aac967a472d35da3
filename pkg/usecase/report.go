package usecase

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/duedil-lab/diligent/pkg/domain/model"
)

// composeReport renders the deliverable as markdown. Only curated document
// content appears in the body; topics without adequate evidence are listed
// as unresolved, never filled in.
func composeReport(job *model.Job, doc *model.Document, unresolved []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Due Diligence Report: %s\n\n", job.CompanyName)
	fmt.Fprintf(&sb, "- Time window: last %d months\n", job.TimeWindow.Months())
	fmt.Fprintf(&sb, "- Plan: %s\n", job.PlanTier)
	if job.JurisdictionHint != "" {
		fmt.Fprintf(&sb, "- Jurisdiction: %s\n", job.JurisdictionHint)
	}
	sb.WriteString("\n")

	for _, topic := range doc.Topics() {
		section := doc.Section(topic)
		if section == nil || section.Text == "" {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n\n", titleCase(topic))
		sb.WriteString(section.Text)
		sb.WriteString("\n\n")

		if len(section.Citations) > 0 {
			sb.WriteString("Sources:\n")
			for _, c := range section.Citations {
				fmt.Fprintf(&sb, "- [%s] %s (retrieved %s, confidence %s)\n",
					c.SourceID, c.SourceURL, c.RetrievedAt.Format("2006-01-02"), c.Confidence)
			}
			sb.WriteString("\n")
		}
	}

	if len(unresolved) > 0 {
		sb.WriteString("## Unresolved Topics\n\n")
		sb.WriteString("No adequate evidence was found within the requested window for:\n")
		for _, topic := range unresolved {
			fmt.Fprintf(&sb, "- %s\n", topic)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// titleCase uppercases the first rune of each word. Topics are configurable
// and may start with multibyte runes.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError && size <= 1 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
