package documentstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a single JSONB documents table:
//
//	documents(collection text, id text, body jsonb, created_at timestamptz)
//
// Timestamps inside bodies are RFC 3339 UTC strings, so text comparison and
// ordering on them agree with chronological order.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by an existing pgx pool. The schema
// is owned by cmd/migrate.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect opens a pgx pool against the given URL and pings it.
func Connect(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, opts QueryOptions) ([]Document, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, body FROM documents WHERE collection = $1")
	args := []any{collection}

	for _, f := range opts.Filters {
		pred, arg, err := buildPredicate(f, len(args)+1)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(pred)
		args = append(args, arg)
	}

	if opts.OrderBy != nil {
		dir := "ASC"
		if opts.OrderBy.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY body->>%s %s", quoteLiteral(opts.OrderBy.Field), dir)
	} else {
		sb.WriteString(" ORDER BY created_at ASC")
	}

	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan %s document: %w", collection, err)
		}
		doc := Document{}
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode %s document %s: %w", collection, id, err)
		}
		doc["id"] = id
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context, collection string, filters []Filter) (int, error) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM documents WHERE collection = $1")
	args := []any{collection}

	for _, f := range filters {
		pred, arg, err := buildPredicate(f, len(args)+1)
		if err != nil {
			return 0, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(pred)
		args = append(args, arg)
	}

	var count int
	if err := s.pool.QueryRow(ctx, sb.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return count, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		"SELECT body FROM documents WHERE collection = $1 AND id = $2",
		collection, id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	doc := Document{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	doc["id"] = id
	return doc, nil
}

func (s *PostgresStore) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	body := make(Document, len(doc))
	for k, v := range doc {
		if k == "id" {
			continue
		}
		body[k] = v
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}

	_, err = s.pool.Exec(ctx,
		"INSERT INTO documents (collection, id, body, created_at) VALUES ($1, $2, $3, NOW())",
		collection, id, raw,
	)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, partial Document) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("encode %s patch: %w", collection, err)
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE documents SET body = body || $3::jsonb WHERE collection = $1 AND id = $2",
		collection, id, raw,
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildPredicate compiles one filter to a jsonb predicate. The comparison cast
// follows the Go type of the filter value.
func buildPredicate(f Filter, argPos int) (string, any, error) {
	field := quoteLiteral(f.Field)

	switch f.Op {
	case OpEqual, OpGreaterEqual, OpLessEqual:
		op := string(f.Op)
		if f.Op == OpEqual {
			op = "="
		}
		switch v := f.Value.(type) {
		case time.Time:
			return fmt.Sprintf("(body->>%s)::timestamptz %s $%d", field, op, argPos), v.UTC(), nil
		case bool:
			return fmt.Sprintf("(body->>%s)::boolean %s $%d", field, op, argPos), v, nil
		case int, int32, int64, float32, float64:
			return fmt.Sprintf("(body->>%s)::numeric %s $%d", field, op, argPos), v, nil
		case string:
			return fmt.Sprintf("body->>%s %s $%d", field, op, argPos), v, nil
		default:
			return "", nil, fmt.Errorf("unsupported filter value type %T for field %s", f.Value, f.Field)
		}
	case OpIn:
		values, ok := f.Value.([]any)
		if !ok {
			return "", nil, fmt.Errorf("in-list filter on %s requires a value slice", f.Field)
		}
		texts := make([]string, len(values))
		for i, v := range values {
			if t, ok := v.(time.Time); ok {
				texts[i] = t.UTC().Format(time.RFC3339Nano)
				continue
			}
			texts[i] = fmt.Sprintf("%v", v)
		}
		return fmt.Sprintf("body->>%s = ANY($%d)", field, argPos), texts, nil
	default:
		return "", nil, fmt.Errorf("unsupported filter operator %q", f.Op)
	}
}

// quoteLiteral single-quotes a jsonb key. Field names come from code, never
// from callers, but quoting keeps the generated SQL well-formed.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
