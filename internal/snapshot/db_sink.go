package snapshot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DBSink mirrors a Library into MySQL. Every write replaces the previous snapshot.
type DBSink struct {
	db *sqlx.DB
}

// NewDBSink creates a new DBSink. The tables must exist; see database.Migrate.
func NewDBSink(db *sqlx.DB) *DBSink {
	return &DBSink{db: db}
}

var snapshotTables = []string{"note_resources", "note_tags", "notes", "tags", "notebooks"}

// Write replaces all snapshot tables with library in a single transaction.
func (s *DBSink) Write(ctx context.Context, library *Library) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer tx.Rollback()

	for _, table := range snapshotTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("tx.ExecContext(delete %s) > %w", table, err)
		}
	}

	for _, nb := range library.Notebooks {
		if _, err := tx.NamedExecContext(ctx,
			"INSERT INTO notebooks (id, name, parent, status, note_count) VALUES (:id, :name, :parent, :status, :note_count)", nb); err != nil {
			return fmt.Errorf("tx.NamedExecContext(insert notebook %s) > %w", nb.ID, err)
		}
	}
	for _, tag := range library.Tags {
		if _, err := tx.NamedExecContext(ctx,
			"INSERT INTO tags (id, name, parent, status, note_count) VALUES (:id, :name, :parent, :status, :note_count)", tag); err != nil {
			return fmt.Errorf("tx.NamedExecContext(insert tag %s) > %w", tag.ID, err)
		}
	}
	for _, n := range library.Notes {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO notes (id, title, description, status, rating, weight, notebook, thumbnail, last_opened, created, updated)
			VALUES (:id, :title, :description, :status, :rating, :weight, :notebook, :thumbnail, :last_opened, :created, :updated)`, n); err != nil {
			return fmt.Errorf("tx.NamedExecContext(insert note %s) > %w", n.ID, err)
		}
	}
	for _, link := range library.NoteTags() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO note_tags (note_id, tag_id) VALUES (?, ?)", link.NoteID, link.TagID); err != nil {
			return fmt.Errorf("tx.ExecContext(insert note_tag %s/%s) > %w", link.NoteID, link.TagID, err)
		}
	}
	for _, r := range library.ResourceRecords() {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO note_resources (note_id, hash, name, size, type, file_url) VALUES (?, ?, ?, ?, ?, ?)",
			r.NoteID, r.Hash, r.Name, r.Size, r.Type, r.FileURL); err != nil {
			return fmt.Errorf("tx.ExecContext(insert note_resource %s/%s) > %w", r.NoteID, r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}
