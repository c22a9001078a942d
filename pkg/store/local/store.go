// Package local provides the embedded fallback backend: a single-file sqlite
// table of posts addressed by auto-incrementing integer ids.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/smartblog/smartblog/pkg/post"
	"github.com/smartblog/smartblog/pkg/store/local/migrate"
)

// postColumns lists columns returned by post SELECT queries.
var postColumns = []string{"id", "title", "content", "status", "created_at", "updated_at"}

// Store implements post.Store over an embedded sqlite file.
type Store struct {
	db *sql.DB
}

// New creates a Store over an existing database handle. The posts table is
// assumed to exist.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (creating if absent) the sqlite file at path and applies schema
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	// sqlite allows one writer; a single connection serializes same-process
	// access without busy errors.
	db.SetMaxOpenConns(1)

	if err := migrate.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating local store: %w", err)
	}

	return New(db), nil
}

// Name identifies the backend in logs.
func (s *Store) Name() string { return "local" }

// Close closes the underlying database file.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// parseID maps the external string id onto the integer document id. Anything
// that does not parse resolves to ErrNotFound.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, post.ErrNotFound
	}
	return n, nil
}

// Insert stores a new post and returns it with the assigned integer id.
func (s *Store) Insert(ctx context.Context, draft post.Draft) (post.Post, error) {
	content, err := json.Marshal(draft.Content)
	if err != nil {
		return post.Post{}, fmt.Errorf("encoding content: %w", err)
	}

	query, args, err := sq.Insert("posts").
		Columns("title", "content", "status", "created_at", "updated_at").
		Values(draft.Title, string(content), draft.Status, draft.CreatedAt, draft.UpdatedAt).
		ToSql()
	if err != nil {
		return post.Post{}, fmt.Errorf("building insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return post.Post{}, fmt.Errorf("inserting post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return post.Post{}, fmt.Errorf("reading inserted id: %w", err)
	}

	return post.Post{
		ID:        strconv.FormatInt(id, 10),
		Title:     draft.Title,
		Content:   draft.Content,
		Status:    draft.Status,
		CreatedAt: draft.CreatedAt,
		UpdatedAt: draft.UpdatedAt,
	}, nil
}

// FindAll returns every post in insertion order.
func (s *Store) FindAll(ctx context.Context) ([]post.Post, error) {
	query, args, err := sq.Select(postColumns...).
		From("posts").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return posts, nil
}

// FindByID returns the post matched by id, or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (post.Post, error) {
	docID, err := parseID(id)
	if err != nil {
		return post.Post{}, err
	}

	query, args, err := sq.Select(postColumns...).
		From("posts").
		Where(sq.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return post.Post{}, fmt.Errorf("building select: %w", err)
	}

	p, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return post.Post{}, post.ErrNotFound
	}
	if err != nil {
		return post.Post{}, err
	}

	return p, nil
}

// Update merges fields into the post matched by id. Missing records, bad ids
// and write failures all reduce to ErrNotFound.
func (s *Store) Update(ctx context.Context, id string, fields map[string]any) error {
	docID, err := parseID(id)
	if err != nil {
		return err
	}

	builder := sq.Update("posts").Where(sq.Eq{"id": docID})
	for column, value := range fields {
		if column == "content" {
			encoded, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("encoding content: %w", err)
			}
			value = string(encoded)
		}
		builder = builder.Set(column, value)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", post.ErrNotFound, err)
	}

	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return post.ErrNotFound
	}

	return nil
}

// Delete removes the post matched by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	docID, err := parseID(id)
	if err != nil {
		return err
	}

	query, args, err := sq.Delete("posts").Where(sq.Eq{"id": docID}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", post.ErrNotFound, err)
	}

	affected, err := res.RowsAffected()
	if err != nil || affected == 0 {
		return post.ErrNotFound
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (post.Post, error) {
	var (
		id      int64
		content string
		p       post.Post
	)

	if err := row.Scan(&id, &p.Title, &content, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return post.Post{}, err
		}
		return post.Post{}, fmt.Errorf("scanning post: %w", err)
	}

	p.ID = strconv.FormatInt(id, 10)
	if err := json.Unmarshal([]byte(content), &p.Content); err != nil {
		return post.Post{}, fmt.Errorf("decoding content: %w", err)
	}

	return p, nil
}
