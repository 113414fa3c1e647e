package crawler

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/starlitjournals/sitemap/internal/models"
)

type VerifierConfig struct {
	UserAgent   string
	SampleSize  int
	Parallelism int
	RandomDelay time.Duration
	Timeout     time.Duration
}

// PageCheck is the outcome of requesting one sampled loc.
type PageCheck struct {
	Loc        string
	StatusCode int
	Title      string
	Canonical  string
	Robots     string
	Error      string
}

func (p PageCheck) OK() bool {
	return p.Error == "" && p.StatusCode >= 200 && p.StatusCode < 300
}

// NoIndex reports whether the page asks crawlers not to index it.
func (p PageCheck) NoIndex() bool {
	return strings.Contains(strings.ToLower(p.Robots), "noindex")
}

type Report struct {
	Source      string
	URLCount    int
	Duplicates  []string
	ForeignLocs []string
	Pages       []PageCheck
}

// Healthy is false when the sitemap repeats or leaks locs, or a sampled page failed.
func (r *Report) Healthy() bool {
	if len(r.Duplicates) > 0 || len(r.ForeignLocs) > 0 {
		return false
	}
	for _, p := range r.Pages {
		if !p.OK() || p.NoIndex() {
			return false
		}
	}
	return true
}

type Verifier struct {
	config *VerifierConfig
}

func NewVerifier(config *VerifierConfig) *Verifier {
	if config.Parallelism < 1 {
		config.Parallelism = 2
	}
	if config.SampleSize < 0 {
		config.SampleSize = 0
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Verifier{config: config}
}

// Verify loads the sitemap at source (a URL or a file path), checks it for
// duplicate and off-site locs, then samples its pages.
func (v *Verifier) Verify(ctx context.Context, source string) (*Report, error) {
	sitemap, err := v.LoadSitemap(ctx, source)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Source:   source,
		URLCount: len(sitemap.URLs),
	}

	locs := make([]string, 0, len(sitemap.URLs))
	for _, u := range sitemap.URLs {
		locs = append(locs, u.Loc)
	}
	unique, duplicates := dedupe(locs)
	report.Duplicates = duplicates

	onSite, foreign := splitByHost(unique)
	report.ForeignLocs = foreign

	sample := onSite
	if len(sample) > v.config.SampleSize {
		sample = sample[:v.config.SampleSize]
	}
	if len(sample) == 0 {
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Pages = v.CheckPages(sample)
	return report, nil
}

func (v *Verifier) LoadSitemap(ctx context.Context, source string) (*models.Sitemap, error) {
	var (
		body []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err = v.fetch(ctx, source)
	} else {
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sitemap %s: %w", source, err)
	}

	var sitemap models.Sitemap
	if err := xml.Unmarshal(body, &sitemap); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap %s: %w", source, err)
	}
	if sitemap.XMLName.Local != "urlset" {
		return nil, fmt.Errorf("failed to parse sitemap %s: root element is %q", source, sitemap.XMLName.Local)
	}

	return &sitemap, nil
}

func (v *Verifier) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if v.config.UserAgent != "" {
		req.Header.Set("User-Agent", v.config.UserAgent)
	}

	client := &http.Client{Timeout: v.config.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// CheckPages requests every loc once and records what came back, in loc order.
func (v *Verifier) CheckPages(locs []string) []PageCheck {
	c := colly.NewCollector(
		colly.UserAgent(v.config.UserAgent),
		colly.Async(true),
	)
	c.SetRequestTimeout(v.config.Timeout)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: v.config.Parallelism,
		RandomDelay: v.config.RandomDelay,
	})

	var mu sync.Mutex
	checks := make(map[string]*PageCheck, len(locs))
	for _, loc := range locs {
		checks[loc] = &PageCheck{Loc: loc}
	}
	update := func(r *colly.Request, fn func(*PageCheck)) {
		loc := r.Ctx.Get("loc")
		mu.Lock()
		defer mu.Unlock()
		if check, ok := checks[loc]; ok {
			fn(check)
		}
	}

	c.OnResponse(func(r *colly.Response) {
		update(r.Request, func(p *PageCheck) { p.StatusCode = r.StatusCode })
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		title, canonical, robots := pageMeta(e.DOM)
		update(e.Request, func(p *PageCheck) {
			p.Title = title
			p.Canonical = canonical
			p.Robots = robots
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		update(r.Request, func(p *PageCheck) {
			p.StatusCode = r.StatusCode
			p.Error = err.Error()
		})
	})

	for _, loc := range locs {
		ctx := colly.NewContext()
		ctx.Put("loc", loc)
		if err := c.Request(http.MethodGet, loc, nil, ctx, nil); err != nil {
			mu.Lock()
			checks[loc].Error = err.Error()
			mu.Unlock()
		}
	}
	c.Wait()

	out := make([]PageCheck, 0, len(locs))
	for _, loc := range locs {
		out = append(out, *checks[loc])
	}
	return out
}

// pageMeta pulls the title, canonical link and robots directive from a page.
func pageMeta(doc *goquery.Selection) (title, canonical, robots string) {
	title = strings.TrimSpace(doc.Find("head title").First().Text())
	canonical, _ = doc.Find(`head link[rel="canonical"]`).First().Attr("href")
	robots, _ = doc.Find(`head meta[name="robots"]`).First().Attr("content")
	return title, canonical, strings.TrimSpace(robots)
}

func dedupe(locs []string) (unique, duplicates []string) {
	seen := make(map[string]int, len(locs))
	for _, loc := range locs {
		seen[loc]++
		switch seen[loc] {
		case 1:
			unique = append(unique, loc)
		case 2:
			duplicates = append(duplicates, loc)
		}
	}
	return unique, duplicates
}

// splitByHost keeps the locs that share the first loc's scheme and host.
func splitByHost(locs []string) (onSite, foreign []string) {
	var origin string
	for _, loc := range locs {
		u, err := url.Parse(loc)
		if err != nil || u.Host == "" {
			foreign = append(foreign, loc)
			continue
		}
		o := u.Scheme + "://" + u.Host
		if origin == "" {
			origin = o
		}
		if o != origin {
			foreign = append(foreign, loc)
			continue
		}
		onSite = append(onSite, loc)
	}
	return onSite, foreign
}
