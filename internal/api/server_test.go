package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"arxtract/internal/arxiv"
	"arxtract/internal/config"
	"arxtract/internal/paper"
	"arxtract/internal/providers"
	"arxtract/internal/util"
)

type emptyCatalog struct{}

func (emptyCatalog) FetchPDF(ctx context.Context, id string) ([]byte, error) {
	return nil, util.ErrPaperNotFound
}

func (emptyCatalog) FetchAbstract(ctx context.Context, id string) (string, error) {
	return "", util.ErrPaperNotFound
}

func (emptyCatalog) Search(ctx context.Context, keywords string, max int) ([]arxiv.SearchHit, error) {
	return nil, nil
}

func newTestHandler() http.Handler {
	cfg := config.Config{RequestTimeoutSecs: 5, ChatTopK: 15, RerankCandidates: 20, RelatedMax: 5}
	mock := providers.NewMockProvider(16)
	svc := paper.NewService(cfg, emptyCatalog{}, mock, mock)
	return NewServer(cfg, svc).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestHandler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok":true`)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestExtractRejectsInvalidIdentifier(t *testing.T) {
	rec := doJSON(t, newTestHandler(), http.MethodPost, "/paper/from-arxiv", `{"arxiv_id":"not-an-id"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractMissingPaperIs404(t *testing.T) {
	rec := doJSON(t, newTestHandler(), http.MethodPost, "/paper/from-arxiv", `{"arxiv_id":"2401.01234"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatUnknownDocumentIs404(t *testing.T) {
	body := `{"arxiv_id":"2401.01234","messages":[{"role":"user","content":"hi"}]}`
	rec := doJSON(t, newTestHandler(), http.MethodPost, "/paper/chat", body)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimilarityRequiresQuery(t *testing.T) {
	rec := doJSON(t, newTestHandler(), http.MethodPost, "/paper/similarity", `{"arxiv_id":"2401.01234"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	rec := doJSON(t, newTestHandler(), http.MethodGet, "/paper/from-arxiv", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	rec := doJSON(t, newTestHandler(), http.MethodPost, "/paper/related", `{"arxiv_id":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusForTimeoutInsideUpstreamWrap(t *testing.T) {
	err := fmt.Errorf("%w: %w", util.ErrEmbeddingUnavailable, context.DeadlineExceeded)
	require.Equal(t, http.StatusGatewayTimeout, statusFor(err))

	err = fmt.Errorf("%w: %w", util.ErrFetchFailed, context.DeadlineExceeded)
	require.Equal(t, http.StatusGatewayTimeout, statusFor(err))

	require.Equal(t, http.StatusBadGateway, statusFor(util.ErrEmbeddingUnavailable))
	require.Equal(t, http.StatusBadRequest, statusFor(util.ErrNoUserTurn))
}

func TestCORSPreflight(t *testing.T) {
	rec := doJSON(t, newTestHandler(), http.MethodOptions, "/paper/chat", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
