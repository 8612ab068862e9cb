package analyze

import (
	"fmt"
	"strings"
)

const extractionPrompt = `You are analyzing the text of a machine learning research paper.

Your goal is to extract structured, high-level information that helps a researcher
quickly decide whether this paper is relevant to their work.

Do NOT speculate. Only extract what is clearly stated or strongly implied.
If information is missing, use null or an empty list.

Extract the following fields:

- title: paper title
- problem_statement: what real-world or technical problem is being addressed (2-4 sentences)
- task_type: e.g. Classification, Regression, Segmentation, Detection, Generation, Forecasting, Reinforcement Learning, Representation Learning, Object Detection
- core_contribution: the main idea or novelty of the paper (2-4 sentences)
- model_architecture: high-level model description the paper uses, no layer-by-layer detail (2-5 sentences)
- training_details: key training setup if mentioned (loss functions, optimizers, supervision type, pretraining); omit details that are not present (2-5 sentences)
- datasets: list of dataset names explicitly mentioned, with the full name in parentheses after an acronym when the paper gives it
- evaluation_metrics: list of metrics used, spelled out when the paper uses an acronym (e.g. IoU (Intersection over Union), MSE (Mean Squared Error))
- baselines: models or methods explicitly compared against in experiments; only baselines named in the paper
- key_results: key quantitative results or improvements if explicitly stated (2-4 sentences); if none, respond with "Not explicitly stated."
- limitations: limitations or failure cases explicitly mentioned by the authors (2-4 sentences); if none, respond with "Not discussed by the authors."
- application_domains: application areas (e.g. Healthcare & Medical Imaging, NLP, Robotics, Autonomous Driving, Finance & Economics, Biology & Genomics, Industrial, Climate)

Rules:
- Be concise.
- datasets, evaluation_metrics, baselines, application_domains must be lists.
- Output MUST be valid JSON only.
- No markdown, no explanation text.

JSON format:
{
"title": string | null,
"problem_statement": string | null,
"task_type": string | null,
"core_contribution": string | null,
"model_architecture": string | null,
"training_details": string | null,
"datasets": list[string],
"evaluation_metrics": list[string],
"baselines": list[string],
"key_results": string | null,
"limitations": string | null,
"application_domains": list[string]
}

Paper text:
%s`

func buildExtractionPrompt(text string, maxChars int) string {
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return fmt.Sprintf(extractionPrompt, text)
}

func buildExpandPrompt(query string) string {
	return fmt.Sprintf(`You are a search query expansion assistant for academic research papers.
Given the user's research query, expand it by adding related technical synonyms,
alternative phrasings, and task clarifications. Do NOT change the user's intent.
Rules:
- Add relevant technical terms, acronyms, and synonyms that a paper might use.
- Do not add unrelated topics.
- Return ONLY the expanded query text, nothing else.
User query: "%s"
Expanded query:`, query)
}

func buildKeywordsPrompt(query string) string {
	return fmt.Sprintf(`You are a keyword extraction assistant for academic paper search.
Given the user's research query, extract the 3-5 most important search keywords
or short phrases that would find relevant papers on arXiv.
Rules:
- Focus on technical terms, methods, and domain-specific vocabulary.
- Return ONLY the keywords separated by spaces, nothing else.
- Do not include filler words like "using", "for", "with", etc.
User query: "%s"
Keywords:`, query)
}

func buildRerankPrompt(query string, chunks []string) string {
	var b strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&b, "[%d] %s\n", i, c)
	}
	return fmt.Sprintf(`You are a research paper relevance judge.
A user is searching for: "%s"
Below are %d text chunks from a research paper, each labeled with an index.
%s
Pick the 5 chunks that are most relevant to the user's query.
Return ONLY a JSON array of their indices. No ranking needed, just the 5 best.
Output ONLY the JSON array, nothing else.`, query, len(chunks), b.String())
}

func buildRelevancePrompt(query, abstract string) string {
	return fmt.Sprintf(`You are a research relevance judge.
A researcher is looking for: "%s"
Here is a paper's abstract:
"%s"
Rate how relevant this paper is to the researcher's interest on a scale of 0 to 100.
0   = Completely unrelated topic or domain.
25  = Same general field (e.g. ML) but no shared task, methods, or application.
50  = Shares either task OR application domain, but not both. Limited practical usefulness.
75  = Shares task or methodology AND application domain. Likely useful background or baseline.
100 = Direct match in task, methodology, and application domain. Highly likely to influence the research.
Consider topical overlap, methodology relevance, and practical usefulness.
Do not consider writing quality or paper importance. Judge relevance only.
Return ONLY a single integer between 0 and 100. Nothing else.`, query, abstract)
}

func buildAnswerPrompt(query string, chunks []string) string {
	var b strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&b, "[Excerpt %d]\n%s\n\n", i+1, c)
	}
	return fmt.Sprintf(`You are a research paper assistant. A user is asking a question about a specific paper.
Answer the user's question using ONLY the provided paper excerpts below.
If the excerpts don't contain enough information to answer, say so honestly.
Be concise, specific, and cite which excerpt(s) your answer draws from when relevant.
User question: "%s"
Paper excerpts:
%s
Answer:`, query, b.String())
}

func buildCleanPrompt(chunks []string) string {
	var b strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&b, "[%d]\n%s\n\n", i, c)
	}
	return fmt.Sprintf(`You are performing strict text cleanup on raw PDF-extracted research text.
You will receive %d numbered chunks.
Your task is PURELY DELETION-BASED CLEANING.
For each chunk:
- Keep original sentences EXACTLY as written.
- Preserve original sentence order.
- Remove only:
  - Figure or table captions
  - Inline citation markers like [1], (Smith et al., 2020)
  - Page numbers or headers/footers
  - Raw equations or equation fragments
  - Isolated numeric/table fragments
  - Author affiliations or metadata
  - Broken sentence fragments
Rules:
- Do NOT summarize.
- Do NOT paraphrase.
- Do NOT rewrite sentences.
- Do NOT merge sentences.
- Do NOT add new text.
- If a chunk contains no meaningful prose, return an empty string.

Return a JSON array of length %d.
Each element must correspond to the cleaned version of the same index.
Output ONLY the JSON array.

Here are the chunks:
%s`, len(chunks), len(chunks), b.String())
}
