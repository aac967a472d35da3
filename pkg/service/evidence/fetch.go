package evidence

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/utils/safe"
)

// maxPageBytes caps how much of a page body is read when expanding a search
// hit into full text.
const maxPageBytes = 1 << 20

// PageFetcher retrieves page bodies over HTTP and reduces HTML to plain text.
type PageFetcher struct {
	httpClient *http.Client
}

// NewPageFetcher creates a PageFetcher with a default HTTP client
func NewPageFetcher() *PageFetcher {
	return &PageFetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchPage downloads a URL and returns its visible text content
func (f *PageFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build page request", goerr.V("url", pageURL))
	}
	req.Header.Set("User-Agent", "diligent/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch page", goerr.V("url", pageURL))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("page returned non-OK status",
			goerr.V("url", pageURL),
			goerr.V("status", resp.StatusCode),
		)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read page body", goerr.V("url", pageURL))
	}

	return stripHTML(string(data)), nil
}

// stripHTML removes markup and collapses whitespace. Script and style
// contents are dropped entirely.
func stripHTML(s string) string {
	var sb strings.Builder
	inTag := false
	skipDepth := 0

	lower := strings.ToLower(s)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '<':
			inTag = true
			switch {
			case strings.HasPrefix(lower[i:], "<script"), strings.HasPrefix(lower[i:], "<style"):
				skipDepth++
			case strings.HasPrefix(lower[i:], "</script"), strings.HasPrefix(lower[i:], "</style"):
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case s[i] == '>':
			inTag = false
			sb.WriteByte(' ')
		case !inTag && skipDepth == 0:
			sb.WriteByte(s[i])
		}
	}

	return collapseSpace(sb.String())
}

func collapseSpace(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
