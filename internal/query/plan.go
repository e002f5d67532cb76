// Package query turns raw list-request parameters into a deterministic
// filter/order/paginate plan and runs it against a record store.
package query

import (
	"math"
	"strconv"
	"strings"

	"catalogapi/internal/apperror"
	"catalogapi/internal/model"
)

// Kind names a listable resource.
type Kind string

const (
	KindRegion    Kind = "region"
	KindPatron    Kind = "patron"
	KindPublisher Kind = "publisher"
	KindBook      Kind = "book"
)

// Request parameter names.
const (
	ParamOrdering = "ordering"
	ParamPage     = "page"
	ParamPageSize = "pagesize"
)

// Direction is the sort direction of a plan.
type Direction int

const (
	DirectionNone Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// ValueKind is the type a filter value must parse as.
type ValueKind int

const (
	Text ValueKind = iota
	Date
	Integer
	// Integer32 is an integer that must fit a 32-bit column.
	Integer32
)

// Field is a filterable field and the kind of value it accepts.
type Field struct {
	Name string
	Kind ValueKind
}

// Resource describes which fields of a kind are filterable, in priority
// order, and which single field it sorts on.
type Resource struct {
	Kind      Kind
	Filters   []Field
	SortField string
}

var (
	Region = Resource{
		Kind:      KindRegion,
		Filters:   []Field{{Name: "name", Kind: Text}, {Name: "code", Kind: Text}},
		SortField: "code",
	}
	Patron = Resource{
		Kind: KindPatron,
		Filters: []Field{
			{Name: "first_name", Kind: Text},
			{Name: "birthday", Kind: Date},
			{Name: "date_of_joining", Kind: Date},
		},
		SortField: "birthday",
	}
	Publisher = Resource{
		Kind:      KindPublisher,
		Filters:   []Field{{Name: "name", Kind: Text}, {Name: "region", Kind: Integer}},
		SortField: "region",
	}
	Book = Resource{
		Kind: KindBook,
		Filters: []Field{
			{Name: "title", Kind: Text},
			{Name: "year_of_release", Kind: Integer32},
			{Name: "id", Kind: Integer},
		},
		SortField: "id",
	}
)

// Defaults is the page and page size used when a request omits either value
// or supplies one that is not a positive integer.
type Defaults struct {
	Page     int
	PageSize int
}

// Clause is a single equality filter.
type Clause struct {
	Field string
	Value string
}

// Plan is the resolved query for one list request.
type Plan struct {
	Kind      Kind
	Filters   []Clause
	SortField string
	Direction Direction
	Page      int
	PageSize  int
}

// Offset is the number of records skipped before the page starts. A product
// that does not fit an int saturates at math.MaxInt and is past any end.
func (p Plan) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Limit is the maximum number of records in the page.
func (p Plan) Limit() int {
	return p.PageSize
}

// Params is the raw query string of a list request.
type Params map[string]string

// Compose builds the plan for res from params. Only pagination values fall
// back to defaults; a malformed filter value fails with a validation error.
func Compose(res Resource, params Params, def Defaults) (Plan, error) {
	plan := Plan{
		Kind:      res.Kind,
		SortField: res.SortField,
		Direction: parseOrdering(params[ParamOrdering]),
	}

	clause, err := firstFilter(res, params)
	if err != nil {
		return Plan{}, err
	}
	if clause != nil {
		plan.Filters = []Clause{*clause}
	}

	page, ok := parsePagination(params)
	if !ok {
		page = pagination{page: def.Page, size: def.PageSize}
	}
	plan.Page, plan.PageSize = page.page, page.size
	return plan, nil
}

// firstFilter returns the first non-empty filter in priority order. Later
// fields are ignored even when present.
func firstFilter(res Resource, params Params) (*Clause, error) {
	for _, f := range res.Filters {
		v := strings.TrimSpace(params[f.Name])
		if v == "" {
			continue
		}
		if err := checkValue(f, v); err != nil {
			return nil, err
		}
		return &Clause{Field: f.Name, Value: v}, nil
	}
	return nil, nil
}

func checkValue(f Field, v string) error {
	switch f.Kind {
	case Date:
		if _, err := model.ParseDate(v); err != nil {
			return apperror.Invalid(f.Name, "must be a date in YYYY-MM-DD format")
		}
	case Integer:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return apperror.Invalid(f.Name, "must be an integer")
		}
	case Integer32:
		if _, err := strconv.ParseInt(v, 10, 32); err != nil {
			return apperror.Invalid(f.Name, "must be an integer between -2147483648 and 2147483647")
		}
	}
	return nil
}

func parseOrdering(v string) Direction {
	switch v {
	case "asc":
		return Ascending
	case "desc":
		return Descending
	default:
		return DirectionNone
	}
}

type pagination struct {
	page int
	size int
}

// parsePagination reports ok only when both page and pagesize are positive
// integers. Any failure discards both values.
func parsePagination(params Params) (pagination, bool) {
	page, ok := positiveInt(params[ParamPage])
	if !ok {
		return pagination{}, false
	}
	size, ok := positiveInt(params[ParamPageSize])
	if !ok {
		return pagination{}, false
	}
	return pagination{page: page, size: size}, true
}

func positiveInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
