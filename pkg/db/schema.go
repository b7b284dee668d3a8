package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per pipeline invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    crawler TEXT NOT NULL,
    output_dir TEXT NOT NULL,
    item_count INTEGER DEFAULT 0,
    downloaded_count INTEGER DEFAULT 0,
    skipped_count INTEGER DEFAULT 0,
    dead_letter_count INTEGER DEFAULT 0,
    dropped_count INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_crawler ON runs(crawler);

-- Documents: every doc_name/crawler pair ever processed
CREATE TABLE IF NOT EXISTS documents (
    doc_id INTEGER PRIMARY KEY AUTOINCREMENT,
    doc_name TEXT NOT NULL,
    crawler TEXT NOT NULL,
    version_hash TEXT,
    source_page_url TEXT,
    first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(doc_name, crawler)
);

CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(version_hash);
CREATE INDEX IF NOT EXISTS idx_documents_crawler ON documents(crawler);

-- Downloads: every item completion within a run
CREATE TABLE IF NOT EXISTS downloads (
    download_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    doc_id INTEGER NOT NULL,
    completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    status TEXT NOT NULL,
    status_code INTEGER,
    failure_reason TEXT,
    file_path TEXT,
    size_bytes INTEGER,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    FOREIGN KEY (doc_id) REFERENCES documents(doc_id)
);

CREATE INDEX IF NOT EXISTS idx_downloads_run ON downloads(run_id);
CREATE INDEX IF NOT EXISTS idx_downloads_doc ON downloads(doc_id);
CREATE INDEX IF NOT EXISTS idx_downloads_status ON downloads(status);
`
