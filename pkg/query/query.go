// Package query builds filtered, sorted, field-limited list requests
// against platform resources. A Builder accumulates projection fields,
// search filters, a sort key, and offset/limit, and renders them into
// the query parameters expected by the platform list endpoints.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// ResourceType identifies a listable platform resource.
type ResourceType string

const (
	// ResourceAnalytics is the analytics catalog.
	ResourceAnalytics ResourceType = "analytics"

	// ResourceData is uploaded data.
	ResourceData ResourceType = "data"

	// ResourceJobs is processing jobs.
	ResourceJobs ResourceType = "jobs"
)

// supportedFields maps each resource type to its queryable fields, in
// canonical order. Field projections are always rendered in this order.
var supportedFields = map[ResourceType][]string{
	ResourceAnalytics: {
		"id", "name", "version", "upload_date", "description",
		"scope", "supports_cpu", "supports_gpu", "pending",
	},
	ResourceData: {
		"id", "name", "encoding", "type", "size", "upload_date",
		"expiration_date",
	},
	ResourceJobs: {
		"id", "name", "state", "archived", "upload_date", "analytic_id",
		"auto_start", "compute_mode", "start_date", "completion_date",
		"fail_date", "failure_type",
	},
}

// SupportedFields returns the queryable fields for the given resource
// type, in canonical order. The returned slice must not be modified.
func SupportedFields(resource ResourceType) ([]string, error) {
	fields, ok := supportedFields[resource]
	if !ok {
		return nil, &InvalidArgumentError{
			Arg:    "resource",
			Reason: "unknown resource type " + strconv.Quote(string(resource)),
		}
	}
	return fields, nil
}

// Filter is a single search predicate. An empty Field matches the search
// value against any field. All filters on a query are ANDed together.
type Filter struct {
	Field string
	Value string
}

// Builder accumulates a platform list query. The zero value is not
// usable; construct with New or one of the per-resource constructors.
//
// A Builder is a plain value object with no hidden state: all
// validation happens synchronously in the mutating methods, and
// ToParams performs no I/O.
type Builder struct {
	resource    ResourceType
	supported   []string
	fieldSet    map[string]bool
	filters     []Filter
	sortField   string
	sortDesc    bool
	offset      int // -1 when unset
	limit       int // 0 when unset
	allVersions bool
}

// New creates a query builder for the given resource type.
func New(resource ResourceType) (*Builder, error) {
	fields, err := SupportedFields(resource)
	if err != nil {
		return nil, err
	}
	return &Builder{
		resource:  resource,
		supported: fields,
		fieldSet:  make(map[string]bool),
		offset:    -1,
	}, nil
}

// NewAnalytics creates a query builder for the analytics catalog.
func NewAnalytics() *Builder {
	b, _ := New(ResourceAnalytics)
	return b
}

// NewData creates a query builder for uploaded data.
func NewData() *Builder {
	b, _ := New(ResourceData)
	return b
}

// NewJobs creates a query builder for jobs.
func NewJobs() *Builder {
	b, _ := New(ResourceJobs)
	return b
}

// Resource returns the resource type this builder targets.
func (b *Builder) Resource() ResourceType {
	return b.resource
}

// AddField adds the given field to the projection. Duplicate additions
// collapse; projections always render in the canonical field order.
// Returns InvalidFieldError if the field is not supported.
func (b *Builder) AddField(field string) error {
	if err := b.checkField(field); err != nil {
		return err
	}
	b.fieldSet[field] = true
	return nil
}

// AddFields adds the given fields to the projection. If any field is
// unsupported, no fields are added and InvalidFieldError is returned.
func (b *Builder) AddFields(fields ...string) error {
	for _, field := range fields {
		if err := b.checkField(field); err != nil {
			return err
		}
	}
	for _, field := range fields {
		b.fieldSet[field] = true
	}
	return nil
}

// AddAllFields adds every supported field to the projection.
func (b *Builder) AddAllFields() {
	for _, field := range b.supported {
		b.fieldSet[field] = true
	}
}

// AddSearch adds a search filter scoped to the given field. Multiple
// filters AND together. Returns InvalidFieldError if the field is not
// supported.
func (b *Builder) AddSearch(field, value string) error {
	if err := b.checkField(field); err != nil {
		return err
	}
	b.filters = append(b.filters, Filter{Field: field, Value: value})
	return nil
}

// AddSearchAny adds an unscoped search filter that matches the value
// against any field.
func (b *Builder) AddSearchAny(value string) {
	b.filters = append(b.filters, Filter{Value: value})
}

// AddSearchOr adds a single filter matching any of the given values on
// the given field.
func (b *Builder) AddSearchOr(field string, values ...string) error {
	return b.AddSearch(field, strings.Join(values, "|"))
}

// Filters returns the accumulated search filters in insertion order.
func (b *Builder) Filters() []Filter {
	return b.filters
}

// SortBy sets the sort key and direction. Calling it again overwrites
// the previous setting. Returns InvalidFieldError if the field is not
// supported.
func (b *Builder) SortBy(field string, descending bool) error {
	if err := b.checkField(field); err != nil {
		return err
	}
	b.sortField = field
	b.sortDesc = descending
	return nil
}

// SetOffset sets the record offset. Returns InvalidArgumentError if
// offset is negative.
func (b *Builder) SetOffset(offset int) error {
	if offset < 0 {
		return &InvalidArgumentError{
			Arg:    "offset",
			Reason: "must be non-negative, got " + strconv.Itoa(offset),
		}
	}
	b.offset = offset
	return nil
}

// SetLimit sets the maximum number of records to return. Unset means
// the server default applies. Returns InvalidArgumentError if limit is
// not positive.
func (b *Builder) SetLimit(limit int) error {
	if limit <= 0 {
		return &InvalidArgumentError{
			Arg:    "limit",
			Reason: "must be positive, got " + strconv.Itoa(limit),
		}
	}
	b.limit = limit
	return nil
}

// SetAllVersions controls whether an analytics query returns all
// versions of each analytic rather than only the latest. Returns
// InvalidArgumentError for non-analytics builders.
func (b *Builder) SetAllVersions(allVersions bool) error {
	if b.resource != ResourceAnalytics {
		return &InvalidArgumentError{
			Arg:    "all_versions",
			Reason: "only supported for analytics queries",
		}
	}
	b.allVersions = allVersions
	return nil
}

// ToParams renders the query as request parameters for the transport.
// It is pure and deterministic: calling it twice without mutating the
// builder yields identical output.
func (b *Builder) ToParams() url.Values {
	params := url.Values{}

	if len(b.fieldSet) > 0 {
		fields := make([]string, 0, len(b.fieldSet))
		for _, field := range b.supported {
			if b.fieldSet[field] {
				fields = append(fields, field)
			}
		}
		params.Set("fields", strings.Join(fields, ","))
	}

	if len(b.filters) > 0 {
		params.Set("search", EncodeSearch(b.filters))
	}

	if b.sortField != "" {
		direction := "asc"
		if b.sortDesc {
			direction = "desc"
		}
		params.Set("sort", b.sortField+":"+direction)
	}

	if b.offset >= 0 {
		params.Set("offset", strconv.Itoa(b.offset))
	}
	if b.limit > 0 {
		params.Set("limit", strconv.Itoa(b.limit))
	}
	if b.allVersions {
		params.Set("all_versions", "true")
	}

	return params
}

// String renders the query as a URL-encoded string.
func (b *Builder) String() string {
	return b.ToParams().Encode()
}

func (b *Builder) checkField(field string) error {
	for _, supported := range b.supported {
		if field == supported {
			return nil
		}
	}
	return &InvalidFieldError{Resource: b.resource, Field: field}
}
