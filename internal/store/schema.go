package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id           TEXT PRIMARY KEY,
    query            TEXT NOT NULL,
    subject          TEXT DEFAULT '',
    created_at       DATETIME NOT NULL,
    pipeline_version TEXT NOT NULL,
    query_hash       TEXT NOT NULL,
    providers        TEXT DEFAULT '[]',
    composer_model   TEXT DEFAULT '',
    bundle           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_query_hash ON runs(query_hash);

CREATE TABLE IF NOT EXISTS sources (
    run_id            TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    source_id         TEXT NOT NULL,
    url               TEXT NOT NULL,
    canonical_url     TEXT NOT NULL,
    domain            TEXT NOT NULL,
    title             TEXT DEFAULT '',
    media_type        TEXT DEFAULT 'web',
    category          TEXT DEFAULT 'web',
    consensus_count   INTEGER DEFAULT 1,
    fetched           INTEGER DEFAULT 0,
    paywalled         INTEGER DEFAULT 0,
    credibility_score REAL DEFAULT 0,
    credibility_band  TEXT DEFAULT '',
    relevance         REAL DEFAULT 0,
    quality           REAL DEFAULT 0,
    structure         REAL DEFAULT 0,
    citation_score    REAL DEFAULT 0,
    cited             INTEGER DEFAULT 0,
    PRIMARY KEY (run_id, source_id)
);

CREATE INDEX IF NOT EXISTS idx_sources_domain ON sources(domain);
CREATE INDEX IF NOT EXISTS idx_sources_cited ON sources(cited);

CREATE TABLE IF NOT EXISTS claims (
    run_id         TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    claim_id       TEXT NOT NULL,
    sentence_index INTEGER NOT NULL,
    text           TEXT NOT NULL,
    PRIMARY KEY (run_id, claim_id)
);

CREATE TABLE IF NOT EXISTS evidence (
    run_id         TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    claim_id       TEXT NOT NULL,
    source_id      TEXT NOT NULL,
    coverage_score REAL DEFAULT 0,
    snippet        TEXT DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_evidence_run ON evidence(run_id);
`
