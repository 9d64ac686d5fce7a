package supabase

import (
	"net/url"
	"strings"
)

// filter builds PostgREST query strings.
type filter struct {
	v url.Values
}

func newFilter() *filter {
	return &filter{v: url.Values{}}
}

func (f *filter) selectCols(cols string) *filter {
	f.v.Set("select", cols)
	return f
}

func (f *filter) eq(col, val string) *filter {
	f.v.Add(col, "eq."+val)
	return f
}

func (f *filter) isNull(col string) *filter {
	f.v.Add(col, "is.null")
	return f
}

// in quotes each value so commas and parentheses inside ids stay literal.
func (f *filter) in(col string, vals []string) *filter {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = quote(v)
	}
	f.v.Add(col, "in.("+strings.Join(quoted, ",")+")")
	return f
}

// eqOrNull matches rows where col equals val or is null.
func (f *filter) eqOrNull(col, val string) *filter {
	f.v.Add("or", "("+col+".eq."+quote(val)+","+col+".is.null)")
	return f
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

func (f *filter) orderDesc(col string) *filter {
	f.v.Set("order", col+".desc.nullslast")
	return f
}

func (f *filter) values() url.Values {
	return f.v
}
