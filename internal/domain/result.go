package domain

import (
	"errors"
	"fmt"
)

type ResultState int

const (
	StateIdle ResultState = iota
	StateLoading
	StateSuccess
	StateFailure
)

func (s ResultState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SearchResult is the view model of one search. Only the fields belonging to
// State are meaningful; results are replaced wholesale, never patched.
type SearchResult struct {
	State ResultState

	// Success. Description is nil when generation failed, in which case
	// DescriptionReason says why.
	Place             Place
	Description       *MenuDescription
	DescriptionReason Reason

	// Failure. Candidate is set when a candidate had already been chosen
	// before the failure (detail fetch failed).
	Reason    Reason
	Err       error
	Candidate *PlaceCandidate
}

func Idle() SearchResult {
	return SearchResult{State: StateIdle}
}

func Loading() SearchResult {
	return SearchResult{State: StateLoading}
}

func Success(place Place, description *MenuDescription, descriptionReason Reason) SearchResult {
	return SearchResult{
		State:             StateSuccess,
		Place:             place,
		Description:       description,
		DescriptionReason: descriptionReason,
	}
}

// Failure builds a failed result; err is wrapped so errors.Is matches the
// reason's sentinel.
func Failure(reason Reason, err error) SearchResult {
	sentinel := reason.Err()
	switch {
	case err == nil:
		err = sentinel
	case !errors.Is(err, sentinel):
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return SearchResult{State: StateFailure, Reason: reason, Err: err}
}

// Message is the user-facing error line for the result, if any.
func (r SearchResult) Message() string {
	switch {
	case r.State == StateFailure:
		return r.Reason.Message()
	case r.State == StateSuccess && r.Description == nil && r.DescriptionReason != "":
		return r.DescriptionReason.Message()
	default:
		return ""
	}
}
