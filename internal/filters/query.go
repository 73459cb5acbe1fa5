package filters

import (
	"net/url"
	"strconv"
)

// Query is the complete search state carried by a URL.
type Query struct {
	Text        string
	Tags        Selection
	Ingredients Selection
	Page        int
	Advanced    bool
}

// NewQuery returns an empty query on page 1.
func NewQuery() Query {
	return Query{Tags: Selection{}, Ingredients: Selection{}, Page: 1}
}

// ParseQuery decodes the search state held in v.
func ParseQuery(v url.Values) Query {
	tags, ings := Decode(v)
	return Query{
		Text:        v.Get(ParamQuery),
		Tags:        tags,
		Ingredients: ings,
		Page:        PageFrom(v),
		Advanced:    v.Get(ParamAdvanced) == "true",
	}
}

// Values encodes q. Empty text is omitted, page 1 is written explicitly, and adv is only written
// when the panel is visible.
func (q Query) Values() url.Values {
	v := Encode(q.tags(), q.ingredients())
	if q.Text != "" {
		v.Set(ParamQuery, q.Text)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set(ParamPage, strconv.Itoa(page))
	if q.Advanced {
		v.Set(ParamAdvanced, "true")
	}
	return v
}

// String is the encoded query string.
func (q Query) String() string {
	return q.Values().Encode()
}

// HasFilters reports whether any tag or ingredient preference is set.
func (q Query) HasFilters() bool {
	return len(q.Tags) > 0 || len(q.Ingredients) > 0
}

// Equal compares the search-affecting fields; Advanced is ignored.
func (q Query) Equal(o Query) bool {
	return q.Text == o.Text && q.Page == o.Page &&
		q.tags().Equal(o.tags()) && q.ingredients().Equal(o.ingredients())
}

func (q Query) tags() Selection {
	if q.Tags == nil {
		return Selection{}
	}
	return q.Tags
}

func (q Query) ingredients() Selection {
	if q.Ingredients == nil {
		return Selection{}
	}
	return q.Ingredients
}

// SearchParams builds the backend search parameters for q at the given page size.
//
// Both page and skip are sent so the request works against backends that paginate by either.
func SearchParams(q Query, pageSize int) url.Values {
	v := Encode(q.tags(), q.ingredients())
	if q.Text != "" {
		v.Set(ParamQuery, q.Text)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set(ParamPage, strconv.Itoa(page))
	v.Set("skip", strconv.Itoa((page-1)*pageSize))
	v.Set("limit", strconv.Itoa(pageSize))
	return v
}
