package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	_ "modernc.org/sqlite"

	"github.com/JaimeStill/outreach/pkg/pagination"
	"github.com/JaimeStill/outreach/pkg/query"
	"github.com/JaimeStill/outreach/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")
	fk := &pgconn.PgError{Code: repository.CodeForeignKeyViolation}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", fmt.Errorf("find batch: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), errDuplicate},
		{"foreign key passes through", fk, fk},
		{"other passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.MapError(tt.in, errNotFound, errDuplicate); got != tt.want {
				t.Errorf("MapError = %v, want %v", got, tt.want)
			}
		})
	}

	if !repository.HasCode(fmt.Errorf("wrap: %w", fk), repository.CodeForeignKeyViolation) {
		t.Error("HasCode should see through wrapping")
	}
}

type note struct {
	ID   int
	Body string
}

func scanNote(s repository.Scanner) (note, error) {
	var n note
	err := s.Scan(&n.ID, &n.Body)
	return n, err
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL)"); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	n, err := repository.WithTx(ctx, db, func(tx *sql.Tx) (note, error) {
		return repository.QueryOne(ctx, tx, "INSERT INTO notes (body) VALUES (?) RETURNING id, body", []any{"met at climbing gym"}, scanNote)
	})
	if err != nil {
		t.Fatalf("WithTx commit: %v", err)
	}
	if n.ID == 0 || n.Body != "met at climbing gym" {
		t.Errorf("inserted = %+v", n)
	}

	boom := errors.New("boom")
	_, err = repository.WithTx(ctx, db, func(tx *sql.Tx) (int64, error) {
		if _, err := tx.ExecContext(ctx, "INSERT INTO notes (body) VALUES ('rolled back')"); err != nil {
			return 0, err
		}
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx err = %v, want boom", err)
	}

	count, err := repository.QueryScalar[int](ctx, db, "SELECT COUNT(*) FROM notes")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after rollback", count)
	}

	err = repository.RunTx(ctx, db, func(tx *sql.Tx) error {
		return repository.ExecExpectOne(ctx, tx, "DELETE FROM notes WHERE id = ?", n.ID)
	})
	if err != nil {
		t.Fatalf("RunTx: %v", err)
	}

	err = repository.RunTx(ctx, db, func(tx *sql.Tx) error {
		return repository.ExecExpectOne(ctx, tx, "DELETE FROM notes WHERE id = ?", n.ID)
	})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("RunTx on missing row = %v, want sql.ErrNoRows", err)
	}
}

func TestQueryHelpers(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	empty, err := repository.QueryMany(ctx, db, "SELECT id, body FROM notes", nil, scanNote)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("QueryMany on empty table = %#v, want empty slice", empty)
	}

	for _, body := range []string{"a", "b", "c"} {
		if _, err := db.Exec("INSERT INTO notes (body) VALUES (?)", body); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repository.QueryMany(ctx, db, "SELECT id, body FROM notes ORDER BY id", nil, scanNote)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[2].Body != "c" {
		t.Errorf("QueryMany = %+v", all)
	}

	_, err = repository.QueryOne(ctx, db, "SELECT id, body FROM notes WHERE id = ?", []any{99}, scanNote)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("QueryOne missing row err = %v", err)
	}

	n, err := repository.ExecCount(ctx, db, "UPDATE notes SET body = 'x' WHERE body <> 'a'")
	if err != nil || n != 2 {
		t.Errorf("ExecCount = %d, %v", n, err)
	}

	if err := repository.ExecExpectOne(ctx, db, "DELETE FROM notes WHERE id = ?", 99); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ExecExpectOne on no rows = %v", err)
	}
	if err := repository.ExecExpectOne(ctx, db, "DELETE FROM notes WHERE body = 'a'"); err != nil {
		t.Errorf("ExecExpectOne = %v", err)
	}
}

func TestQueryPage(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	for _, body := range []string{"a", "b", "c"} {
		if _, err := db.Exec("INSERT INTO notes (body) VALUES (?)", body); err != nil {
			t.Fatal(err)
		}
	}

	notes := query.NewProjectionMap("main", "notes", "n").
		Project("id", "ID").
		Project("body", "Body")

	page := pagination.PageRequest{Page: 2, PageSize: 2}
	result, err := repository.QueryPage(ctx, db, query.NewBuilder(notes, query.SortField{Field: "ID"}), page, scanNote)
	if err != nil {
		t.Fatalf("QueryPage: %v", err)
	}
	if result.Total != 3 || result.TotalPages != 2 {
		t.Errorf("totals = %d/%d, want 3/2", result.Total, result.TotalPages)
	}
	if len(result.Data) != 1 || result.Data[0].Body != "c" {
		t.Errorf("data = %+v", result.Data)
	}

	page = pagination.PageRequest{Page: 1, PageSize: 2, Sort: query.ParseSortFields("-Body")}
	result, err = repository.QueryPage(ctx, db, query.NewBuilder(notes, query.SortField{Field: "ID"}), page, scanNote)
	if err != nil {
		t.Fatalf("QueryPage sorted: %v", err)
	}
	if len(result.Data) != 2 || result.Data[0].Body != "c" {
		t.Errorf("sorted data = %+v", result.Data)
	}
}
