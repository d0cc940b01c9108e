package model

// Claim is one sentence of the composed answer. Every answer sentence yields
// a claim, cited or not, so that uncited sentences stay countable.
type Claim struct {
	ClaimID             string `json:"claim_id"`
	RunID               string `json:"run_id,omitempty"`
	AnswerSentenceIndex int    `json:"answer_sentence_index"`
	Text                string `json:"text"`
}

// Evidence links a claim to a source that supports it. The coverage score is
// the claim-restricted passage relevance, not the whole-document score.
type Evidence struct {
	ClaimID       string  `json:"claim_id"`
	SourceID      string  `json:"source_id"`
	CoverageScore float64 `json:"coverage_score"`
	Snippet       string  `json:"snippet,omitempty"`
}
