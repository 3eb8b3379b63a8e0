package models

import (
	"fmt"
	"strings"
)

// TypeID is the numeric market identifier of an inventory item.
type TypeID int64

// PriceSource names the tier a quote came from.
type PriceSource string

const (
	SourceESI         PriceSource = "esi"
	SourceFuzzwork    PriceSource = "fuzzwork"
	SourceEVEMarketer PriceSource = "evemarketer"
)

// PriceQuote holds the best hub prices for one item. Nil fields are unknown.
type PriceQuote struct {
	BuyMax  *float64    `json:"buyMax,omitempty"`
	SellMin *float64    `json:"sellMin,omitempty"`
	Source  PriceSource `json:"source"`
}

// HasAny reports whether at least one side is known.
func (q PriceQuote) HasAny() bool {
	return q.BuyMax != nil || q.SellMin != nil
}

// Split returns sell-buy and its ratio to sell. ok is false unless both sides are known.
func (q PriceQuote) Split() (diff, ratio float64, ok bool) {
	if q.BuyMax == nil || q.SellMin == nil {
		return 0, 0, false
	}
	diff = *q.SellMin - *q.BuyMax
	return diff, diff / *q.SellMin, true
}

// SortKey is a sortable column of the label table.
type SortKey string

const (
	SortByLabel SortKey = "label"
	SortByCount SortKey = "count"
	SortBySum   SortKey = "sum"
)

// SortDir is ascending or descending.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// SortState is the current ordering of the label table.
type SortState struct {
	Key SortKey `json:"key"`
	Dir SortDir `json:"dir"`
}

// DefaultSort orders by sum, largest first.
func DefaultSort() SortState {
	return SortState{Key: SortBySum, Dir: Desc}
}

// Toggle applies a header click: the same key flips direction, a new key
// starts descending, except label which starts ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Dir == Asc {
			s.Dir = Desc
		} else {
			s.Dir = Asc
		}
		return s
	}
	s.Key = key
	if key == SortByLabel {
		s.Dir = Asc
	} else {
		s.Dir = Desc
	}
	return s
}

// ParseSortState validates user supplied key/dir. Empty dir picks the key's default.
func ParseSortState(key, dir string) (SortState, error) {
	st := SortState{Key: SortKey(strings.ToLower(strings.TrimSpace(key)))}
	switch st.Key {
	case "":
		st.Key = SortBySum
	case SortByLabel, SortByCount, SortBySum:
	default:
		return SortState{}, fmt.Errorf("unknown sort key %q", key)
	}

	switch SortDir(strings.ToLower(strings.TrimSpace(dir))) {
	case "":
		st.Dir = Desc
		if st.Key == SortByLabel {
			st.Dir = Asc
		}
	case Asc:
		st.Dir = Asc
	case Desc:
		st.Dir = Desc
	default:
		return SortState{}, fmt.Errorf("unknown sort direction %q", dir)
	}
	return st, nil
}
