package store

import (
	"fmt"

	"github.com/ppiankov/citetrace/internal/model"
)

// Insights aggregates citation behavior over the stored history using the
// normalized source rows. Top-domain lists come from cited sources only.
func (s *Store) Insights(limit int) (model.AggregateInsights, error) {
	var out model.AggregateInsights
	out.DomainsByCategory = make(map[string][]model.DomainCount)

	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&out.Runs)
	if err != nil {
		return out, fmt.Errorf("count runs: %w", err)
	}

	err = s.db.QueryRow(`SELECT COUNT(*),
			COALESCE(SUM(cited), 0)
		FROM sources`).Scan(&out.Totals.TotalSources, &out.Totals.TotalCitedSources)
	if err != nil {
		return out, fmt.Errorf("count sources: %w", err)
	}

	// Average of per-run citation rates, not the ratio of grand totals.
	err = s.db.QueryRow(`SELECT COALESCE(AVG(rate), 0) FROM (
			SELECT CAST(SUM(cited) AS REAL) / COUNT(*) AS rate
			FROM sources GROUP BY run_id
		)`).Scan(&out.Totals.AvgCitationRate)
	if err != nil {
		return out, fmt.Errorf("citation rate: %w", err)
	}

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`SELECT domain, COUNT(*) AS n FROM sources
		WHERE cited = 1 GROUP BY domain ORDER BY n DESC, domain ASC LIMIT ?`, limit)
	if err != nil {
		return out, fmt.Errorf("top domains: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dc model.DomainCount
		if err := rows.Scan(&dc.Domain, &dc.Count); err != nil {
			return out, fmt.Errorf("scan domain: %w", err)
		}
		out.DomainsTop = append(out.DomainsTop, dc)
	}
	if err := rows.Err(); err != nil {
		return out, err
	}

	catRows, err := s.db.Query(`SELECT category, domain, COUNT(*) AS n FROM sources
		WHERE cited = 1 GROUP BY category, domain ORDER BY category ASC, n DESC, domain ASC`)
	if err != nil {
		return out, fmt.Errorf("domains by category: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var cat string
		var dc model.DomainCount
		if err := catRows.Scan(&cat, &dc.Domain, &dc.Count); err != nil {
			return out, fmt.Errorf("scan category domain: %w", err)
		}
		if cat == "" {
			cat = "web"
		}
		if len(out.DomainsByCategory[cat]) < limit {
			out.DomainsByCategory[cat] = append(out.DomainsByCategory[cat], dc)
		}
	}
	return out, catRows.Err()
}
