package crawl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/refsignal/tourney-enrich/internal/enrich"
	"github.com/refsignal/tourney-enrich/internal/hash/sha256"
	"github.com/refsignal/tourney-enrich/internal/storage/memory"
)

// fakeFetcher serves pages from a map. URLs with no entry behave like non-HTML
// responses (nil page, nil error); URLs in errs fail like transport errors.
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*enrich.Page, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, nil
	}
	return &enrich.Page{URL: url, HTML: html, StatusCode: 200}, nil
}

func anchors(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href=%q>Referee Info</a>`, h)
	}
	b.WriteString("</body>")
	return b.String()
}

func TestCrawlEmptySeedURL(t *testing.T) {
	t.Parallel()

	o := New(&fakeFetcher{}, nil, nil, Config{}, zap.NewNop())
	_, err := o.Crawl(context.Background(), "t-1", "")
	assert.ErrorIs(t, err, enrich.ErrNoSourceURL)
}

func TestCrawlRespectsPageBudget(t *testing.T) {
	t.Parallel()

	// Seed fans out to 20 pages; a budget of 3 stops the crawl after three
	// fetches regardless of frontier depth.
	seed := "https://example.com/"
	hrefs := make([]string, 20)
	pages := map[string]string{}
	for i := range hrefs {
		hrefs[i] = fmt.Sprintf("/p%d", i)
		pages[fmt.Sprintf("https://example.com/p%d", i)] = "<body>nothing here</body>"
	}
	pages[seed] = anchors(hrefs...)

	f := &fakeFetcher{pages: pages}
	o := New(f, nil, nil, Config{PageBudget: 3, FrontierSlack: 2}, zap.NewNop())

	summary, err := o.Crawl(context.Background(), "t-1", seed)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.PagesFetched)
	assert.Len(t, f.calls, 3)
}

func TestCrawlFrontierSlackCapsEnqueue(t *testing.T) {
	t.Parallel()

	// With budget 3 and slack 2 the frontier never grows past
	// budget+slack-seen, so only the first four of the seed's links are
	// ever considered.
	seed := "https://example.com/"
	hrefs := make([]string, 10)
	for i := range hrefs {
		hrefs[i] = fmt.Sprintf("/p%d", i)
	}
	f := &fakeFetcher{pages: map[string]string{seed: anchors(hrefs...)}}
	o := New(f, nil, nil, Config{PageBudget: 3, FrontierSlack: 2}, zap.NewNop())

	summary, err := o.Crawl(context.Background(), "t-1", seed)
	require.NoError(t, err)
	// Seed plus four enqueued links. The links return non-HTML so only
	// the seed counts toward the budget.
	assert.Equal(t, 1, summary.PagesFetched)
	assert.Len(t, f.calls, 5)
}

func TestCrawlFailedFetchDoesNotConsumeBudget(t *testing.T) {
	t.Parallel()

	seed := "https://example.com/"
	f := &fakeFetcher{
		pages: map[string]string{
			seed:                       anchors("/bad", "/good"),
			"https://example.com/good": "<body>Referee fee is $40 per game</body>",
		},
		errs: map[string]error{
			"https://example.com/bad": errors.New("connect: refused"),
		},
	}
	o := New(f, nil, nil, Config{PageBudget: 8, FrontierSlack: 5}, zap.NewNop())

	summary, err := o.Crawl(context.Background(), "t-1", seed)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.PagesFetched)
	require.NotEmpty(t, summary.Comps)
	assert.Equal(t, "t-1", summary.Comps[0].TournamentID)
}

func TestCrawlNeverRevisitsSeenURLs(t *testing.T) {
	t.Parallel()

	// Both pages link back to each other and to themselves.
	a := "https://example.com/a"
	b := "https://example.com/b"
	f := &fakeFetcher{pages: map[string]string{
		a: anchors("/a", "/b"),
		b: anchors("/a", "/b"),
	}}
	o := New(f, nil, nil, Config{PageBudget: 8, FrontierSlack: 5}, zap.NewNop())

	summary, err := o.Crawl(context.Background(), "t-1", a)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.PagesFetched)
	assert.Equal(t, []string{a, b}, f.calls)
}

func TestCrawlStampsTournamentID(t *testing.T) {
	t.Parallel()

	seed := "https://example.com/contact"
	html := `<body>
		<p>Tournament Director: Jane Smith - jane@club.org</p>
		<p>The event runs June 6-8, 2026 at Riverside Soccer Complex, 100 River Rd, Dayton, OH 45401.</p>
	</body>`
	f := &fakeFetcher{pages: map[string]string{seed: html}}
	o := New(f, nil, nil, Config{}, zap.NewNop())

	summary, err := o.Crawl(context.Background(), "t-42", seed)
	require.NoError(t, err)
	require.NotEmpty(t, summary.Contacts)
	require.NotEmpty(t, summary.Dates)
	for _, c := range summary.Contacts {
		assert.Equal(t, "t-42", c.TournamentID)
	}
	for _, d := range summary.Dates {
		assert.Equal(t, "t-42", d.TournamentID)
	}
}

func TestCrawlFoldsPDFHintsIntoComps(t *testing.T) {
	t.Parallel()

	seed := "https://example.com/officials"
	html := `<body><a href="/docs/rates.pdf">Referee Rate Sheet</a></body>`
	f := &fakeFetcher{pages: map[string]string{seed: html}}
	o := New(f, nil, nil, Config{}, zap.NewNop())

	summary, err := o.Crawl(context.Background(), "t-1", seed)
	require.NoError(t, err)
	require.Len(t, summary.Comps, 1)
	c := summary.Comps[0]
	assert.Equal(t, "t-1", c.TournamentID)
	assert.Equal(t, "Referee Rate Sheet", c.RateText)
	assert.Equal(t, "https://example.com/docs/rates.pdf", c.Evidence)
	assert.InDelta(t, 0.3, c.Confidence, 1e-9)
}

func TestCrawlArchivesFetchedPages(t *testing.T) {
	t.Parallel()

	seed := "https://example.com/"
	f := &fakeFetcher{pages: map[string]string{seed: "<body>hello</body>"}}
	blobs := memory.NewBlobStore()
	o := New(f, blobs, sha256.New(), Config{}, zap.NewNop())

	_, err := o.Crawl(context.Background(), "t-7", seed)
	require.NoError(t, err)
	assert.Equal(t, 1, blobs.Len())
}

func TestCrawlCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeFetcher{pages: map[string]string{"https://example.com/": "<body></body>"}}
	o := New(f, nil, nil, Config{}, zap.NewNop())

	_, err := o.Crawl(ctx, "t-1", "https://example.com/")
	assert.ErrorIs(t, err, context.Canceled)
}
