package arxiv

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"arxtract/internal/util"
)

func TestExtractID(t *testing.T) {
	cases := map[string]string{
		"2401.01234":                              "2401.01234",
		"2401.01234v2":                            "2401.01234",
		"1111.11111":                              "1111.11111",
		"  2401.01234 ":                           "2401.01234",
		"https://arxiv.org/abs/2401.01234":        "2401.01234",
		"https://arxiv.org/pdf/2401.01234.pdf":    "2401.01234",
		"http://arxiv.org/abs/2401.01234v3":       "2401.01234",
		"see https://arxiv.org/abs/2401.01234 ok": "2401.01234",
	}
	for in, want := range cases {
		got, err := ExtractID(in)
		if err != nil {
			t.Fatalf("ExtractID(%q): unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("ExtractID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractIDRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "not-an-id", "24.01234", "arxiv.org/paper/2401.01234"} {
		if _, err := ExtractID(in); !errors.Is(err, util.ErrInvalidIdentifier) {
			t.Fatalf("ExtractID(%q): expected ErrInvalidIdentifier, got %v", in, err)
		}
	}
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.01234v1</id>
    <title>Deep   Segmentation
 Networks</title>
    <summary>We propose a
 segmentation   method.</summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/oldstyle</id>
    <title>Unparseable entry</title>
  </entry>
</feed>`

func TestFetchAbstract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id_list"); got != "2401.01234" {
			t.Errorf("unexpected id_list %q", got)
		}
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", 0)
	abstract, err := c.FetchAbstract(context.Background(), "2401.01234")
	if err != nil {
		t.Fatalf("FetchAbstract: %v", err)
	}
	if abstract != "We propose a segmentation method." {
		t.Fatalf("abstract not whitespace-normalized: %q", abstract)
	}
}

func TestFetchAbstractMissingEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", 0)
	if _, err := c.FetchAbstract(context.Background(), "2401.99999"); !errors.Is(err, util.ErrPaperNotFound) {
		t.Fatalf("expected ErrPaperNotFound, got %v", err)
	}
}

func TestSearchParsesEntriesAndSkipsBadIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search_query") != "all:graph neural networks" {
			t.Errorf("unexpected search_query %q", q.Get("search_query"))
		}
		if q.Get("sortBy") != "relevance" {
			t.Errorf("unexpected sortBy %q", q.Get("sortBy"))
		}
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", 0)
	hits, err := c.Search(context.Background(), "graph neural networks", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit (bad-id entry skipped), got %d", len(hits))
	}
	h := hits[0]
	if h.ArxivID != "2401.01234" {
		t.Fatalf("unexpected id %q", h.ArxivID)
	}
	if h.Title != "Deep Segmentation Networks" {
		t.Fatalf("title not normalized: %q", h.Title)
	}
	if len(h.Authors) != 2 || h.Authors[0] != "Ada Lovelace" {
		t.Fatalf("unexpected authors %v", h.Authors)
	}
	if h.URL != "https://arxiv.org/abs/2401.01234" {
		t.Fatalf("unexpected url %q", h.URL)
	}
}

func TestFetchPDFNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", 0)
	if _, err := c.FetchPDF(context.Background(), "2401.01234"); !errors.Is(err, util.ErrPaperNotFound) {
		t.Fatalf("expected ErrPaperNotFound, got %v", err)
	}
}

func TestFetchPDFServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", 0)
	if _, err := c.FetchPDF(context.Background(), "2401.01234"); !errors.Is(err, util.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}
