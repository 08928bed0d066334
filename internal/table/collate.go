package table

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

var caserPool = sync.Pool{
	New: func() any {
		c := cases.Fold()
		return &c
	},
}

// fold applies Unicode case folding. A Caser keeps state, so concurrent
// callers each borrow their own.
func fold(s string) string {
	c := caserPool.Get().(*cases.Caser)
	defer caserPool.Put(c)

	return c.String(s)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatValue(*t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		raw := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed, true
			}
		}
	}

	return time.Time{}, false
}

// sortKey is a field value parsed once for sorting.
type sortKey struct {
	num     float64
	hasNum  bool
	at      time.Time
	hasTime bool
	text    string
}

type keyed[T any] struct {
	record T
	key    sortKey
}

func keyOf(kind Kind, v any) sortKey {
	k := sortKey{text: fold(formatValue(v))}
	switch kind {
	case KindNumber:
		k.num, k.hasNum = toFloat(v)
	case KindDate:
		k.at, k.hasTime = toTime(v)
	}

	return k
}

func (k sortKey) compare(other sortKey) int {
	switch {
	case k.hasNum && other.hasNum:
		return cmp.Compare(k.num, other.num)
	case k.hasTime && other.hasTime:
		return k.at.Compare(other.at)
	}

	// Unparseable numbers and dates fall back to text ordering.
	return strings.Compare(k.text, other.text)
}

func compareValues(kind Kind, a any, b any) int {
	return keyOf(kind, a).compare(keyOf(kind, b))
}

// Matches reports whether any schema field of record contains term, ignoring
// case. An empty term matches everything.
func Matches[T any](schema Schema[T], record T, term string) bool {
	return matchesFolded(schema, record, fold(term))
}

func matchesFolded[T any](schema Schema[T], record T, needle string) bool {
	if needle == "" {
		return true
	}

	return lo.SomeBy(schema.Fields, func(f Field[T]) bool {
		return strings.Contains(fold(formatValue(f.Value(record))), needle)
	})
}

// Filter returns the records matching term in their original order. The
// input slice is never modified.
func Filter[T any](schema Schema[T], records []T, term string) []T {
	needle := fold(term)
	return lo.Filter(records, func(record T, _ int) bool {
		return matchesFolded(schema, record, needle)
	})
}

// SortStable orders records in place by field. Records that compare equal
// keep their relative order in both directions. Each value is parsed and
// folded once.
func SortStable[T any](records []T, field Field[T], dir Direction) {
	items := make([]keyed[T], len(records))
	for i, record := range records {
		items[i] = keyed[T]{record: record, key: keyOf(field.Kind, field.Value(record))}
	}

	slices.SortStableFunc(items, func(a keyed[T], b keyed[T]) int {
		c := a.key.compare(b.key)
		if dir == Descending {
			return -c
		}
		return c
	})

	for i := range items {
		records[i] = items[i].record
	}
}
