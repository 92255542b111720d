// Package sqlite exports enrichment results to a SQLite database file
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/pepcontext/pkg/core"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02T15:04:05Z07:00"
	// schemaVersion is bumped whenever the table layout changes
	schemaVersion = 1
)

// RunInfo describes the run recorded in HeaderTable.
type RunInfo struct {
	PeptideFile string
	ProteinFile string
	Description string
}

// Writer handles writing enrichment rows to SQLite database files
type Writer struct {
	db         *sql.DB
	tx         *sql.Tx
	outputPath string
	rowStmt    *sql.Stmt
	rowID      int
	runID      string
	closed     bool
}

// NewWriter creates a new SQLite writer. An existing file at outputPath is
// replaced.
func NewWriter(outputPath string) (*Writer, error) {
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		rowID:      1,
		runID:      uuid.NewString(),
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// RunID returns the identifier recorded in HeaderTable.
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS EnrichmentTable (
		EnrichmentId INTEGER PRIMARY KEY,
		StrippedSequence TEXT NOT NULL,
		MatchContext TEXT NOT NULL,
		PreviousResidue TEXT,
		NextResidue TEXT,
		NTerminal BOOLEAN,
		CTerminal BOOLEAN,
		NeutralMass DOUBLE,
		UNIQUE (StrippedSequence, MatchContext)
	);

	CREATE INDEX IF NOT EXISTS EnrichmentBySequence ON EnrichmentTable (StrippedSequence);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		RunId TEXT PRIMARY KEY,
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		PeptideFile TEXT,
		ProteinFile TEXT,
		EnrichmentCount INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements opens the insert transaction and prepares the row statement
func (w *Writer) prepareStatements() error {
	var err error

	w.tx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.rowStmt, err = w.tx.Prepare(`
		INSERT INTO EnrichmentTable (
			EnrichmentId, StrippedSequence, MatchContext, PreviousResidue,
			NextResidue, NTerminal, CTerminal, NeutralMass
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		return fmt.Errorf("failed to prepare enrichment statement: %w", err)
	}

	return nil
}

// WriteRow writes a single enrichment row to the database
func (w *Writer) WriteRow(row core.EnrichmentRow) error {
	c, err := core.ParseContext(row.Context)
	if err != nil {
		return err
	}

	// Ambiguous or non-standard residues have no defined mass
	var mass interface{} = nil
	if m, ok := core.CalculateNeutralMass(row.Key); ok {
		mass = core.RoundFloat(m, 6)
	}

	_, err = w.rowStmt.Exec(
		w.rowID,            // EnrichmentId
		row.Key,            // StrippedSequence
		row.Context,        // MatchContext
		string(c.Previous), // PreviousResidue
		string(c.Next),     // NextResidue
		c.NTerminal(),      // NTerminal
		c.CTerminal(),      // CTerminal
		mass,               // NeutralMass
	)
	if err != nil {
		return fmt.Errorf("failed to insert enrichment row %s: %w", row.Context, err)
	}

	w.rowID++
	return nil
}

// WriteRows writes rows in order
func (w *Writer) WriteRows(rows []core.EnrichmentRow) error {
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// Finalize commits the rows, writes the header table and closes the database
func (w *Writer) Finalize(info RunInfo) error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.rowStmt != nil {
		w.rowStmt.Close()
	}
	if err := w.tx.Commit(); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to commit enrichment rows: %w", err)
	}

	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (RunId, version, CreationDate, PeptideFile, ProteinFile, EnrichmentCount, Description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.runID, schemaVersion, time.Now().UTC().Format(headerDateFormat),
		info.PeptideFile, info.ProteinFile, w.rowID-1, info.Description)
	if err != nil {
		w.db.Close()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close abandons uncommitted rows and closes the database. It is a no-op
// after Finalize.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.rowStmt != nil {
		w.rowStmt.Close()
	}
	if w.tx != nil {
		w.tx.Rollback()
	}
	return w.db.Close()
}
