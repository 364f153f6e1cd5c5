package domain

import (
	"fmt"
	"strings"
)

type Cuisine int

const (
	CuisineAll Cuisine = iota
	CuisineKorean
	CuisineJapanese
	CuisineChinese
	CuisineWestern
	CuisineSnack
)

// Cuisines lists every filter in display order.
var Cuisines = []Cuisine{CuisineAll, CuisineKorean, CuisineJapanese, CuisineChinese, CuisineWestern, CuisineSnack}

var cuisineInfo = map[Cuisine]struct {
	code  string
	label string
}{
	CuisineAll:      {"all", "전체"},
	CuisineKorean:   {"korean", "한식"},
	CuisineJapanese: {"japanese", "일식"},
	CuisineChinese:  {"chinese", "중식"},
	CuisineWestern:  {"western", "양식"},
	CuisineSnack:    {"snack", "분식"},
}

// String returns the stable code used in forms and flags.
func (c Cuisine) String() string {
	if info, ok := cuisineInfo[c]; ok {
		return info.code
	}
	return fmt.Sprintf("cuisine(%d)", int(c))
}

// Label is the category word shown to users and sent to the model.
func (c Cuisine) Label() string {
	return cuisineInfo[c].label
}

// Keyword is the nearby-search keyword; empty means no keyword filter.
func (c Cuisine) Keyword() string {
	if c == CuisineAll {
		return ""
	}
	return c.Label()
}

// ParseCuisine accepts either the code ("korean") or the label ("한식").
func ParseCuisine(s string) (Cuisine, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CuisineAll, nil
	}
	for _, c := range Cuisines {
		info := cuisineInfo[c]
		if strings.EqualFold(s, info.code) || s == info.label {
			return c, nil
		}
	}
	return CuisineAll, fmt.Errorf("unknown cuisine %q", s)
}
