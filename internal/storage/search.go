/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// SearchQuery describes the in-app search request.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Types can restrict to kinds like: chapter_title, subsection_title,
// chapter_body, project_name. ChapterFrom/To are inclusive; 0 means unset.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text        string
	Types       []string
	ChapterFrom int
	ChapterTo   int
	Limit       int
	Offset      int
}

// SearchResult represents a single match row. Snippet is a highlighted
// excerpt using [ ] markers when FTS text is used; Chapter is 0 when the row
// is not bound to a chapter.
type SearchResult struct {
	DocID   int64
	Type    string
	Path    string
	Chapter int
	Snippet string
}

// Search performs full-text search with optional filters over the embedded
// index. When q.Text is empty, it falls back to a non-FTS scan over documents
// with filters applied.
func Search(ctx context.Context, projectRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	db, err := InitOrOpenIndex(projectRoot)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT d.doc_id, d.type, d.path, COALESCE(d.chapter,0), snippet(fts_documents, 0, '[', ']', '...', 10)\n")
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_documents MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT d.doc_id, d.type, d.path, COALESCE(d.chapter,0), ''\n")
		sb.WriteString("FROM documents d\nWHERE 1=1\n")
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND d.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if q.ChapterFrom > 0 && q.ChapterTo > 0 && q.ChapterTo >= q.ChapterFrom {
		sb.WriteString(" AND d.chapter BETWEEN ? AND ?\n")
		args = append(args, q.ChapterFrom, q.ChapterTo)
	} else if q.ChapterFrom > 0 {
		sb.WriteString(" AND d.chapter >= ?\n")
		args = append(args, q.ChapterFrom)
	} else if q.ChapterTo > 0 {
		sb.WriteString(" AND d.chapter <= ?\n")
		args = append(args, q.ChapterTo)
	}
	sb.WriteString(" ORDER BY COALESCE(d.chapter,0), d.doc_id\n")

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, max(q.Offset, 0))

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.DocID, &r.Type, &r.Path, &r.Chapter, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
