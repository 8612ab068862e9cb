package util

import "errors"

var (
	ErrInvalidIdentifier = errors.New("invalid arXiv identifier or URL")
	ErrPaperNotFound     = errors.New("paper not found on arXiv")
	ErrFetchFailed       = errors.New("arXiv fetch failed")

	ErrParseFailed       = errors.New("failed to parse PDF")
	ErrNoExtractableText = errors.New("no extractable text found in PDF")

	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	ErrExtractionFailed     = errors.New("extraction failed")

	ErrUnknownDocument = errors.New("document has not been processed")
	ErrNoUserTurn      = errors.New("conversation has no user message")
)
