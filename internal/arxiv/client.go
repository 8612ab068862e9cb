package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"arxtract/internal/util"
)

const (
	DefaultAPIBase = "http://export.arxiv.org/api/query"
	DefaultPDFBase = "https://arxiv.org/pdf/"

	absURLPrefix = "https://arxiv.org/abs/"
)

var (
	rawIDPattern   = regexp.MustCompile(`^(\d{4}\.\d{4,5})(?:v\d+)?$`)
	urlIDPattern   = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5})`)
	entryIDPattern = regexp.MustCompile(`(\d{4}\.\d{4,5})`)
)

// ExtractID canonicalizes a free-form arXiv input to a bare paper id.
// Accepted forms: "2401.01234", "2401.01234v2", an abs URL, or a pdf URL.
// The version suffix is always stripped.
func ExtractID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if m := rawIDPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	if m := urlIDPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	return "", util.ErrInvalidIdentifier
}

// Client talks to the arXiv export API and PDF mirror. It is intentionally
// thin: no retries, errors propagate to the caller.
type Client struct {
	apiBase   string
	pdfBase   string
	userAgent string
	http      *http.Client
}

func NewClient(apiBase, pdfBase, userAgent string, timeout time.Duration) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if pdfBase == "" {
		pdfBase = DefaultPDFBase
	}
	if userAgent == "" {
		userAgent = "ArXtract/0.1"
	}
	return &Client{
		apiBase:   strings.TrimRight(apiBase, "/"),
		pdfBase:   strings.TrimRight(pdfBase, "/") + "/",
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

// FetchPDF downloads the paper's PDF bytes.
func (c *Client) FetchPDF(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pdfBase+id+".pdf", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, util.ErrPaperNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: pdf download status %d", util.ErrFetchFailed, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read pdf body: %w", util.ErrFetchFailed, err)
	}
	return data, nil
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
	Authors []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// FetchAbstract retrieves the catalog-provided abstract via the Atom API.
func (c *Client) FetchAbstract(ctx context.Context, id string) (string, error) {
	params := url.Values{}
	params.Set("id_list", id)
	feed, err := c.queryFeed(ctx, params)
	if err != nil {
		return "", err
	}
	if len(feed.Entries) == 0 {
		return "", util.ErrPaperNotFound
	}
	abstract := util.CollapseWhitespace(feed.Entries[0].Summary)
	if abstract == "" {
		return "", fmt.Errorf("%w: no abstract available", util.ErrPaperNotFound)
	}
	return abstract, nil
}

// SearchHit is one candidate paper returned by a keyword search.
type SearchHit struct {
	ArxivID  string
	Title    string
	Authors  []string
	Abstract string
	URL      string
}

// Search queries the catalog for papers matching the keywords, sorted by
// relevance. Entries without a recognizable id are skipped. An empty result
// set is not an error.
func (c *Client) Search(ctx context.Context, keywords string, max int) ([]SearchHit, error) {
	if max <= 0 {
		max = 5
	}
	params := url.Values{}
	params.Set("search_query", "all:"+keywords)
	params.Set("max_results", strconv.Itoa(max))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	feed, err := c.queryFeed(ctx, params)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		// Entry ids look like http://arxiv.org/abs/2401.01234v1
		m := entryIDPattern.FindStringSubmatch(entry.ID)
		if m == nil {
			continue
		}
		id := m[1]

		title := util.CollapseWhitespace(entry.Title)
		if title == "" {
			title = "Untitled"
		}
		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				authors = append(authors, name)
			}
		}
		hits = append(hits, SearchHit{
			ArxivID:  id,
			Title:    title,
			Authors:  authors,
			Abstract: util.CollapseWhitespace(entry.Summary),
			URL:      absURLPrefix + id,
		})
	}
	return hits, nil
}

func (c *Client) queryFeed(ctx context.Context, params url.Values) (*atomFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: arXiv API status %d", util.ErrFetchFailed, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read API response: %w", util.ErrFetchFailed, err)
	}
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: decode atom feed: %w", util.ErrFetchFailed, err)
	}
	return &feed, nil
}
