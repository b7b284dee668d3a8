package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RunCounts aggregates how a run's items resolved.
type RunCounts struct {
	Items       int
	Downloaded  int
	Skipped     int
	DeadLetters int
	Dropped     int
}

// RunSummary is one row of the runs listing.
type RunSummary struct {
	RunID     int64
	CreatedAt time.Time
	Crawler   string
	OutputDir string
	RunCounts
}

// InsertRun creates a run row and returns its ID.
func (db *DB) InsertRun(crawler, outputDir string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (crawler, output_dir)
		VALUES (?, ?)
	`, crawler, outputDir)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// FinishRun stores the final counters for a run.
func (db *DB) FinishRun(runID int64, counts RunCounts) error {
	_, err := db.Exec(`
		UPDATE runs
		SET item_count = ?, downloaded_count = ?, skipped_count = ?,
		    dead_letter_count = ?, dropped_count = ?
		WHERE run_id = ?
	`, counts.Items, counts.Downloaded, counts.Skipped, counts.DeadLetters, counts.Dropped, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// UpsertDocument inserts a document on first sight and refreshes its hash and
// last_seen on every later one, returning the doc_id.
func (db *DB) UpsertDocument(docName, crawler, versionHash, sourcePageURL string) (int64, error) {
	var existingID int64
	err := db.QueryRow(
		"SELECT doc_id FROM documents WHERE doc_name = ? AND crawler = ?",
		docName, crawler,
	).Scan(&existingID)
	if err == nil {
		_, err = db.Exec(`
			UPDATE documents
			SET version_hash = ?, source_page_url = ?, last_seen = CURRENT_TIMESTAMP
			WHERE doc_id = ?
		`, versionHash, sourcePageURL, existingID)
		if err != nil {
			return 0, fmt.Errorf("failed to update document: %w", err)
		}
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check existing document: %w", err)
	}

	result, err := db.Exec(`
		INSERT INTO documents (doc_name, crawler, version_hash, source_page_url)
		VALUES (?, ?, ?, ?)
	`, docName, crawler, versionHash, sourcePageURL)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	docID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get document ID: %w", err)
	}
	return docID, nil
}

// RecordDownload records how one item completed within a run.
func (db *DB) RecordDownload(runID, docID int64, status string, statusCode int, failureReason, filePath string, sizeBytes int64) error {
	_, err := db.Exec(`
		INSERT INTO downloads (run_id, doc_id, status, status_code, failure_reason, file_path, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, docID, status, statusCode, failureReason, filePath, sizeBytes)
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT run_id, created_at, crawler, output_dir,
		       item_count, downloaded_count, skipped_count, dead_letter_count, dropped_count
		FROM runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(
			&r.RunID, &r.CreatedAt, &r.Crawler, &r.OutputDir,
			&r.Items, &r.Downloaded, &r.Skipped, &r.DeadLetters, &r.Dropped,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// DownloadHistory returns the completion rows for one document, newest first.
func (db *DB) DownloadHistory(docName, crawler string) ([]DownloadRow, error) {
	rows, err := db.Query(`
		SELECT d.download_id, d.run_id, d.completed_at, d.status,
		       d.status_code, d.failure_reason, d.file_path, d.size_bytes
		FROM downloads d
		JOIN documents doc ON doc.doc_id = d.doc_id
		WHERE doc.doc_name = ? AND doc.crawler = ?
		ORDER BY d.completed_at DESC, d.download_id DESC
	`, docName, crawler)
	if err != nil {
		return nil, fmt.Errorf("failed to query download history: %w", err)
	}
	defer rows.Close()

	var history []DownloadRow
	for rows.Next() {
		var d DownloadRow
		var failureReason, filePath sql.NullString
		var statusCode, sizeBytes sql.NullInt64
		if err := rows.Scan(
			&d.DownloadID, &d.RunID, &d.CompletedAt, &d.Status,
			&statusCode, &failureReason, &filePath, &sizeBytes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan download row: %w", err)
		}
		d.StatusCode = int(statusCode.Int64)
		d.FailureReason = failureReason.String
		d.FilePath = filePath.String
		d.SizeBytes = sizeBytes.Int64
		history = append(history, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate download history: %w", err)
	}
	return history, nil
}

// DownloadRow is one download attempt as stored.
type DownloadRow struct {
	DownloadID    int64
	RunID         int64
	CompletedAt   time.Time
	Status        string
	StatusCode    int
	FailureReason string
	FilePath      string
	SizeBytes     int64
}
