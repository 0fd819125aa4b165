package store

// schema mirrors the crawler's relational layout: documents, the word
// dictionary, the document-word membership relation and the link relation,
// plus a table for computed ranks.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id          UUID PRIMARY KEY,
		seq         BIGSERIAL UNIQUE,
		url         TEXT NOT NULL UNIQUE,
		status      TEXT NOT NULL DEFAULT 'PENDING',
		ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		indexed_at  TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS words (
		id   BIGSERIAL PRIMARY KEY,
		word TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS doc_words (
		doc_id  UUID   NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		word_id BIGINT NOT NULL REFERENCES words(id),
		PRIMARY KEY (doc_id, word_id)
	)`,
	`CREATE INDEX IF NOT EXISTS doc_words_word_idx ON doc_words (word_id)`,
	`CREATE TABLE IF NOT EXISTS links (
		from_doc UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		position INT  NOT NULL,
		to_url   TEXT NOT NULL,
		PRIMARY KEY (from_doc, position)
	)`,
	`CREATE TABLE IF NOT EXISTS ranks (
		url         TEXT NOT NULL,
		algorithm   TEXT NOT NULL,
		rank        DOUBLE PRECISION NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (url, algorithm)
	)`,
}
