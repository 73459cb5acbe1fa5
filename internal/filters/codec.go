package filters

import (
	"net/url"
	"strconv"
	"strings"
)

// URL query parameter names.
const (
	ParamQuery    = "query"
	ParamPage     = "page"
	ParamAdvanced = "adv"
	ParamTagInc   = "tag_inc"
	ParamTagExc   = "tag_exc"
	ParamIngInc   = "ing_inc"
	ParamIngExc   = "ing_exc"
)

var filterParams = []string{ParamTagInc, ParamTagExc, ParamIngInc, ParamIngExc}

// Encode writes one repeated parameter value per selected item. Names are emitted in sorted order
// so equal selections always produce the same query string.
func Encode(tags, ingredients Selection) url.Values {
	v := url.Values{}
	addAll(v, ParamTagInc, tags.Included())
	addAll(v, ParamTagExc, tags.Excluded())
	addAll(v, ParamIngInc, ingredients.Included())
	addAll(v, ParamIngExc, ingredients.Excluded())
	return v
}

func addAll(v url.Values, key string, names []string) {
	for _, n := range names {
		v.Add(key, n)
	}
}

// Decode rebuilds both selections from v. Include parameters are applied before exclude
// parameters, so a name listed under both ends up excluded. Existing links depend on this order;
// whether it was ever meant as a rule is unconfirmed.
func Decode(v url.Values) (tags, ingredients Selection) {
	tags, ingredients = Selection{}, Selection{}
	for _, n := range v[ParamTagInc] {
		tags[n] = Include
	}
	for _, n := range v[ParamIngInc] {
		ingredients[n] = Include
	}
	for _, n := range v[ParamTagExc] {
		tags[n] = Exclude
	}
	for _, n := range v[ParamIngExc] {
		ingredients[n] = Exclude
	}
	return tags, ingredients
}

// ReplaceFilters returns a copy of v with every filter parameter replaced by the encoding of
// tags and ingredients. Other parameters are kept.
func ReplaceFilters(v url.Values, tags, ingredients Selection) url.Values {
	out := Clone(v)
	for _, p := range filterParams {
		out.Del(p)
	}
	for k, vals := range Encode(tags, ingredients) {
		out[k] = vals
	}
	return out
}

// IsSearchRelevant reports whether v holds anything that should trigger a search: a query
// parameter or any filter parameter.
func IsSearchRelevant(v url.Values) bool {
	if v.Has(ParamQuery) {
		return true
	}
	for _, p := range filterParams {
		if v.Has(p) {
			return true
		}
	}
	return false
}

// Clone deep-copies v.
func Clone(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// ParseLocation accepts a bare query string ("query=soup&page=2"), one with a leading "?", or a
// full URL, and returns its query parameters.
func ParseLocation(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	return url.ParseQuery(raw)
}

// PageFrom reads the page parameter, defaulting to 1 for missing or invalid values.
func PageFrom(v url.Values) int {
	page, err := strconv.Atoi(v.Get(ParamPage))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
