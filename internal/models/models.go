package models

// Document is the fully processed form of one arXiv paper: normalized text
// plus its ordered chunk set. Documents are owned by the ingest cache and are
// immutable once published for an id (chunk embeddings are filled in lazily).
type Document struct {
	ArxivID  string  `json:"arxiv_id"`
	Abstract string  `json:"abstract"`
	Text     string  `json:"-"`
	Chunks   []Chunk `json:"-"`
}

// Chunk is a contiguous word-count segment of a document's normalized text.
// Index is the chunk's position in the original text and its sole identity
// within a document.
type Chunk struct {
	Index     int       `json:"chunk_index"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

// ExtractionResult holds the schema-constrained fields pulled from a paper.
// Nullable fields are nil when the model found no supporting text; list
// fields default to empty. Missing evidence is never backfilled with guesses.
type ExtractionResult struct {
	Title              *string  `json:"title"`
	ProblemStatement   *string  `json:"problem_statement"`
	TaskType           *string  `json:"task_type"`
	CoreContribution   *string  `json:"core_contribution"`
	ModelArchitecture  *string  `json:"model_architecture"`
	TrainingDetails    *string  `json:"training_details"`
	Datasets           []string `json:"datasets"`
	EvaluationMetrics  []string `json:"evaluation_metrics"`
	Baselines          []string `json:"baselines"`
	KeyResults         *string  `json:"key_results"`
	Limitations        *string  `json:"limitations"`
	ApplicationDomains []string `json:"application_domains"`
}

// ChunkScore pairs a chunk with its surfaced relevance score in [0,100].
type ChunkScore struct {
	Index int     `json:"chunk_index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type SimilarityResult struct {
	AbstractScore float64      `json:"abstract_score"`
	AbstractText  string       `json:"abstract_text"`
	TopChunks     []ChunkScore `json:"top_chunks"`
}

// RelatedPaper is one ranked catalog hit. Score is in [0,10].
type RelatedPaper struct {
	ArxivID  string   `json:"arxiv_id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Abstract string   `json:"abstract"`
	URL      string   `json:"url"`
	Score    float64  `json:"score"`
}

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatAnswer struct {
	Answer     string       `json:"answer"`
	ChunksUsed []ChunkScore `json:"chunks_used"`
}
