package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/citetrace/internal/model"
)

// QueryHash derives the idempotency hash for a query + pipeline version.
func QueryHash(query, pipelineVersion string) string {
	sum := sha256.Sum256([]byte(query + "|" + pipelineVersion))
	return hex.EncodeToString(sum[:])
}

// SaveBundle persists a completed bundle: the full JSON document for exact
// reads, plus normalized source/claim/evidence rows for insight queries.
// Saving the same run id twice replaces the previous rows.
func (s *Store) SaveBundle(b *model.Bundle) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	providers, err := json.Marshal(b.Run.Providers)
	if err != nil {
		return fmt.Errorf("marshal providers: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR REPLACE INTO runs
		(run_id, query, subject, created_at, pipeline_version, query_hash, providers, composer_model, bundle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Run.RunID, b.Run.Query, b.Run.Subject, b.Run.CreatedAt,
		b.Run.PipelineVersion, QueryHash(b.Run.Query, b.Run.PipelineVersion),
		string(providers), b.Run.ComposerModel, string(doc))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, table := range []string{"sources", "claims", "evidence"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", b.Run.RunID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	cited := b.CitedSourceIDs()
	for i := range b.Sources {
		src := &b.Sources[i]
		_, err = tx.Exec(`INSERT INTO sources
			(run_id, source_id, url, canonical_url, domain, title, media_type, category,
			 consensus_count, fetched, paywalled, credibility_score, credibility_band,
			 relevance, quality, structure, citation_score, cited)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.Run.RunID, src.SourceID, src.URL, src.CanonicalURL, src.Domain,
			src.Title, src.MediaType, src.Category, src.ConsensusCount,
			boolInt(src.Fetched), boolInt(src.Paywalled),
			src.Credibility.Score, src.Credibility.Band,
			src.Passage.Relevance, src.Passage.Quality, src.Passage.Structure,
			src.CitationScore, boolInt(cited[src.SourceID]))
		if err != nil {
			return fmt.Errorf("insert source %s: %w", src.SourceID, err)
		}
	}

	for _, c := range b.Claims {
		_, err = tx.Exec(`INSERT INTO claims (run_id, claim_id, sentence_index, text) VALUES (?, ?, ?, ?)`,
			b.Run.RunID, c.ClaimID, c.AnswerSentenceIndex, c.Text)
		if err != nil {
			return fmt.Errorf("insert claim %s: %w", c.ClaimID, err)
		}
	}

	for _, e := range b.Evidence {
		_, err = tx.Exec(`INSERT INTO evidence (run_id, claim_id, source_id, coverage_score, snippet) VALUES (?, ?, ?, ?, ?)`,
			b.Run.RunID, e.ClaimID, e.SourceID, e.CoverageScore, e.Snippet)
		if err != nil {
			return fmt.Errorf("insert evidence %s/%s: %w", e.ClaimID, e.SourceID, err)
		}
	}

	return tx.Commit()
}

// GetBundle loads a bundle by run id.
func (s *Store) GetBundle(runID string) (*model.Bundle, error) {
	var doc string
	err := s.db.QueryRow("SELECT bundle FROM runs WHERE run_id = ?", runID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	var b model.Bundle
	if err := json.Unmarshal([]byte(doc), &b); err != nil {
		return nil, fmt.Errorf("unmarshal bundle: %w", err)
	}
	return &b, nil
}

// FindByQueryHash returns the most recent run id for a query hash, or empty.
func (s *Store) FindByQueryHash(hash string) (string, error) {
	var runID string
	err := s.db.QueryRow(
		"SELECT run_id FROM runs WHERE query_hash = ? ORDER BY created_at DESC LIMIT 1",
		hash).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query by hash: %w", err)
	}
	return runID, nil
}

// RunSummary is one row of the run history listing.
type RunSummary struct {
	RunID     string `json:"run_id"`
	Query     string `json:"query"`
	CreatedAt string `json:"created_at"`
	Sources   int    `json:"sources"`
	Cited     int    `json:"cited"`
}

// ListRecent returns up to limit recent runs, newest first.
func (s *Store) ListRecent(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT r.run_id, r.query, r.created_at,
			(SELECT COUNT(*) FROM sources WHERE run_id = r.run_id),
			(SELECT COUNT(*) FROM sources WHERE run_id = r.run_id AND cited = 1)
		FROM runs r ORDER BY r.created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Query, &r.CreatedAt, &r.Sources, &r.Cited); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentBundles loads up to limit recent bundles, newest first.
func (s *Store) RecentBundles(limit int) ([]*model.Bundle, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query("SELECT bundle FROM runs ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()

	var out []*model.Bundle
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		var b model.Bundle
		if err := json.Unmarshal([]byte(doc), &b); err != nil {
			return nil, fmt.Errorf("unmarshal bundle: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
