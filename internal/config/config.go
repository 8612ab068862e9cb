package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIAddr            string
	ArxivAPIBase       string
	ArxivPDFBase       string
	UserAgent          string
	HTTPTimeoutSecs    int
	RequestTimeoutSecs int
	ChunkSizeWords     int
	ExtractMaxChars    int
	RerankCandidates   int
	TopChunks          int
	ChatTopK           int
	RelatedMax         int
	EmbedDim           int
	LLMProviders       string
	EmbedProviders     string
}

func Load() Config {
	return Config{
		APIAddr:            getenv("ARXTRACT_API_ADDR", ":8080"),
		ArxivAPIBase:       getenv("ARXTRACT_ARXIV_API_BASE", "http://export.arxiv.org/api/query"),
		ArxivPDFBase:       getenv("ARXTRACT_ARXIV_PDF_BASE", "https://arxiv.org/pdf/"),
		UserAgent:          getenv("ARXTRACT_USER_AGENT", "ArXtract/0.1"),
		HTTPTimeoutSecs:    getenvInt("ARXTRACT_HTTP_TIMEOUT_SECONDS", 90),
		RequestTimeoutSecs: getenvInt("ARXTRACT_REQUEST_TIMEOUT_SECONDS", 120),
		ChunkSizeWords:     getenvInt("ARXTRACT_CHUNK_SIZE_WORDS", 300),
		ExtractMaxChars:    getenvInt("ARXTRACT_EXTRACT_MAX_CHARS", 30000),
		RerankCandidates:   getenvInt("ARXTRACT_RERANK_CANDIDATES", 20),
		TopChunks:          getenvInt("ARXTRACT_TOP_CHUNKS", 5),
		ChatTopK:           getenvInt("ARXTRACT_CHAT_TOP_K", 15),
		RelatedMax:         getenvInt("ARXTRACT_RELATED_MAX", 5),
		EmbedDim:           getenvInt("ARXTRACT_EMBED_DIM", 1536),
		LLMProviders:       getenv("ARXTRACT_LLM_PROVIDERS", "openai"),
		EmbedProviders:     getenv("ARXTRACT_EMBED_PROVIDERS", "openai"),
	}
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
