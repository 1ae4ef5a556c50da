package query

import (
	"errors"
	"reflect"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		resource    ResourceType
		expectError bool
	}{
		{name: "analytics", resource: ResourceAnalytics},
		{name: "data", resource: ResourceData},
		{name: "jobs", resource: ResourceJobs},
		{name: "unknown resource", resource: ResourceType("users"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.resource)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got nil")
				}
				var argErr *InvalidArgumentError
				if !errors.As(err, &argErr) {
					t.Errorf("Error type = %T, want *InvalidArgumentError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if b.Resource() != tt.resource {
				t.Errorf("Resource() = %q, want %q", b.Resource(), tt.resource)
			}
		})
	}
}

func TestAddField(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		expectError bool
	}{
		{name: "valid field", field: "name"},
		{name: "valid state field", field: "state"},
		{name: "unsupported field", field: "owner", expectError: true},
		{name: "empty field", field: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewJobs()
			err := b.AddField(tt.field)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got nil")
				}
				var fieldErr *InvalidFieldError
				if !errors.As(err, &fieldErr) {
					t.Fatalf("Error type = %T, want *InvalidFieldError", err)
				}
				if fieldErr.Field != tt.field {
					t.Errorf("InvalidFieldError.Field = %q, want %q", fieldErr.Field, tt.field)
				}
				// Failed additions must leave the builder unchanged.
				if got := b.ToParams().Get("fields"); got != "" {
					t.Errorf("fields after failed AddField = %q, want empty", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := b.ToParams().Get("fields"); got != tt.field {
				t.Errorf("fields = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestAddFields_AtomicOnError(t *testing.T) {
	b := NewData()

	err := b.AddFields("id", "name", "bogus")
	if err == nil {
		t.Fatal("Expected error for unsupported field")
	}
	if got := b.ToParams().Get("fields"); got != "" {
		t.Errorf("fields after failed AddFields = %q, want empty", got)
	}
}

func TestFieldProjection_CanonicalOrderAndDedup(t *testing.T) {
	b := NewData()

	// Added out of canonical order, with a duplicate.
	for _, field := range []string{"size", "id", "name", "id"} {
		if err := b.AddField(field); err != nil {
			t.Fatalf("AddField(%q): %v", field, err)
		}
	}

	if got, want := b.ToParams().Get("fields"), "id,name,size"; got != want {
		t.Errorf("fields = %q, want %q", got, want)
	}
}

func TestAddAllFields(t *testing.T) {
	b := NewAnalytics()
	b.AddAllFields()

	want := "id,name,version,upload_date,description,scope,supports_cpu,supports_gpu,pending"
	if got := b.ToParams().Get("fields"); got != want {
		t.Errorf("fields = %q, want %q", got, want)
	}
}

func TestSortBy(t *testing.T) {
	b := NewJobs()

	if err := b.SortBy("upload_date", true); err != nil {
		t.Fatalf("SortBy: %v", err)
	}
	if got := b.ToParams().Get("sort"); got != "upload_date:desc" {
		t.Errorf("sort = %q, want %q", got, "upload_date:desc")
	}

	// Last write wins.
	if err := b.SortBy("name", false); err != nil {
		t.Fatalf("SortBy: %v", err)
	}
	if got := b.ToParams().Get("sort"); got != "name:asc" {
		t.Errorf("sort = %q, want %q", got, "name:asc")
	}

	// Unsupported sort field fails and leaves the previous sort intact.
	err := b.SortBy("priority", false)
	var fieldErr *InvalidFieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("Error type = %T, want *InvalidFieldError", err)
	}
	if got := b.ToParams().Get("sort"); got != "name:asc" {
		t.Errorf("sort after failed SortBy = %q, want %q", got, "name:asc")
	}
}

func TestSetLimit(t *testing.T) {
	tests := []struct {
		name        string
		limit       int
		expectError bool
	}{
		{name: "positive limit", limit: 50},
		{name: "limit of one", limit: 1},
		{name: "zero limit", limit: 0, expectError: true},
		{name: "negative limit", limit: -5, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewJobs()
			err := b.SetLimit(tt.limit)

			if tt.expectError {
				var argErr *InvalidArgumentError
				if !errors.As(err, &argErr) {
					t.Fatalf("Error type = %T, want *InvalidArgumentError", err)
				}
				if got := b.ToParams().Get("limit"); got != "" {
					t.Errorf("limit after failed SetLimit = %q, want empty", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSetOffset(t *testing.T) {
	b := NewData()

	if err := b.SetOffset(0); err != nil {
		t.Fatalf("SetOffset(0): %v", err)
	}
	if got := b.ToParams().Get("offset"); got != "0" {
		t.Errorf("offset = %q, want %q", got, "0")
	}

	if err := b.SetOffset(-1); err == nil {
		t.Error("Expected error for negative offset")
	}
}

func TestSetAllVersions(t *testing.T) {
	a := NewAnalytics()
	if err := a.SetAllVersions(true); err != nil {
		t.Fatalf("SetAllVersions on analytics: %v", err)
	}
	if got := a.ToParams().Get("all_versions"); got != "true" {
		t.Errorf("all_versions = %q, want %q", got, "true")
	}

	d := NewData()
	if err := d.SetAllVersions(true); err == nil {
		t.Error("Expected error for all_versions on data query")
	}
}

func TestToParams_Idempotent(t *testing.T) {
	b := NewJobs()
	if err := b.AddFields("id", "name", "state"); err != nil {
		t.Fatalf("AddFields: %v", err)
	}
	if err := b.AddSearch("name", "traffic"); err != nil {
		t.Fatalf("AddSearch: %v", err)
	}
	if err := b.SortBy("upload_date", true); err != nil {
		t.Fatalf("SortBy: %v", err)
	}
	if err := b.SetLimit(10); err != nil {
		t.Fatalf("SetLimit: %v", err)
	}

	first := b.ToParams()
	second := b.ToParams()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ToParams not idempotent: %v != %v", first, second)
	}
}

func TestToParams_Search(t *testing.T) {
	b := NewJobs()
	if err := b.AddSearch("state", "RUNNING"); err != nil {
		t.Fatalf("AddSearch: %v", err)
	}
	b.AddSearchAny("vehicle")
	if err := b.AddSearchOr("name", "cam-1", "cam-2"); err != nil {
		t.Fatalf("AddSearchOr: %v", err)
	}

	want := "state:RUNNING,vehicle,name:cam-1|cam-2"
	if got := b.ToParams().Get("search"); got != want {
		t.Errorf("search = %q, want %q", got, want)
	}
}

func TestSupportedFields_Immutable(t *testing.T) {
	fields, err := SupportedFields(ResourceData)
	if err != nil {
		t.Fatalf("SupportedFields: %v", err)
	}
	if len(fields) == 0 {
		t.Fatal("No supported fields for data resource")
	}
	if fields[0] != "id" {
		t.Errorf("First data field = %q, want %q", fields[0], "id")
	}
}
