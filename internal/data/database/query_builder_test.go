package database

import (
	"reflect"
	"testing"
)

func TestBuildListQuery_BasicSelect(t *testing.T) {
	query, args := BuildListQuery(NewListQueryOptions("jobs"))

	expected := `SELECT * FROM "jobs"`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestBuildListQuery_FiltersAndPaging(t *testing.T) {
	opts := NewListQueryOptions("jobs",
		WithColumns("id", "jobs.job_no"),
		WithCondition(WhereCond("status", Equal, "ACTIVE")),
		WithCondition(WhereCond("created_at", GreaterThanOrEqual, "2025-01-01")),
		WithOrderBy("desc", "created_at", "id"),
		WithLimit(10),
		WithOffset(20),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT "id", "jobs"."job_no" FROM "jobs" WHERE "status" = $1 AND "created_at" >= $2` +
		` ORDER BY "created_at" DESC, "id" DESC LIMIT $3 OFFSET $4`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if !reflect.DeepEqual(args, []any{"ACTIVE", "2025-01-01", 10, 20}) {
		t.Errorf("Unexpected args %v", args)
	}
}

func TestBuildListQuery_OrGroup(t *testing.T) {
	opts := NewListQueryOptions("jobs",
		WithCondition(WhereCond("created_at", GreaterThanOrEqual, 1)),
		WithAnyOf(
			WhereCond("base_job_id", IsNull, nil),
			WhereCond("pathway", IsNull, nil),
		),
		WithLimit(5),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT * FROM "jobs" WHERE "created_at" >= $1 AND ("base_job_id" IS NULL OR "pathway" IS NULL) LIMIT $2`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if len(args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(args))
	}
}

func TestBuildListQuery_AnyOf(t *testing.T) {
	opts := NewListQueryOptions("jobs", WithCondition(WhereCond("status", AnyOf, []string{"ACTIVE", "PAID"})))
	query, args := BuildListQuery(opts)

	expected := `SELECT * FROM "jobs" WHERE "status" = ANY($1)`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if len(args) != 1 {
		t.Errorf("Expected 1 arg, got %d", len(args))
	}
}

func TestBuildListQuery_CountOnlyIgnoresPaging(t *testing.T) {
	opts := NewListQueryOptions("jobs",
		WithCountOnly(),
		WithCondition(WhereCond("customer_id", Equal, "c-1")),
		WithOrderBy("ASC", "id"),
		WithLimit(10),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT COUNT(*) FROM "jobs" WHERE "customer_id" = $1`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if len(args) != 1 {
		t.Errorf("Expected 1 arg, got %d", len(args))
	}
}

func TestBuildListQuery_SanitizesIdentifiers(t *testing.T) {
	opts := NewListQueryOptions(`jobs"; DROP TABLE jobs; --`,
		WithCondition(WhereCond(`title" = '' OR 1=1 --`, Equal, "x")),
	)
	query, _ := BuildListQuery(opts)

	expected := `SELECT * FROM "jobs""; DROP TABLE jobs; --" WHERE "title"" = '' OR 1=1 --" = $1`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
}
