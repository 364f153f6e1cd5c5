package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/vbonduro/lunchroulette/internal/domain"
)

// renderCard prints a search result the way the web result card shows it.
func renderCard(w io.Writer, result domain.SearchResult) error {
	var b strings.Builder

	switch result.State {
	case domain.StateFailure:
		fmt.Fprintf(&b, "error: %s\n", result.Message())
		if result.Candidate != nil {
			fmt.Fprintf(&b, "selected: %s\n", result.Candidate.Name)
		}
	case domain.StateSuccess:
		p := result.Place
		fmt.Fprintf(&b, "%s\n", p.Name())
		if v := p.Vicinity(); v != "" {
			fmt.Fprintf(&b, "%s\n", v)
		}
		if r := p.Rating(); r != nil {
			fmt.Fprintf(&b, "%s %.1f\n", domain.Stars(*r), *r)
		}
		fmt.Fprintf(&b, "%s\n", domain.PriceSymbols(p.Detail.PriceLevel))
		if p.Detail.Phone != "" {
			fmt.Fprintf(&b, "%s\n", p.Detail.Phone)
		}
		if result.Description != nil {
			fmt.Fprintf(&b, "\n%s\n", result.Description.Text)
		} else if msg := result.Message(); msg != "" {
			fmt.Fprintf(&b, "\n(%s)\n", msg)
		}
	default:
		fmt.Fprintf(&b, "%s\n", result.State)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
