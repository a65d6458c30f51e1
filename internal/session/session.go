// Package session holds the per-user state of one analysis session: the
// current query, the last result or error, and the loading flag.
//
// A State is owned by a single goroutine (the UI loop). It is replaced
// wholesale on every submission and never shared.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pders01/rsrch/internal/analysis"
	"github.com/pders01/rsrch/internal/render"
)

var (
	ErrEmptyQuery = errors.New("query cannot be empty")
	ErrBusy       = errors.New("an analysis is already running")
)

type State struct {
	query   string
	result  string
	err     string
	loading bool
}

func New() *State {
	return &State{}
}

func (s *State) Query() string   { return s.query }
func (s *State) Result() string  { return s.result }
func (s *State) Err() string     { return s.err }
func (s *State) Loading() bool   { return s.loading }
func (s *State) HasResult() bool { return s.result != "" }
func (s *State) HasError() bool  { return s.err != "" }

// Blocks renders the current result.
func (s *State) Blocks() []render.Block {
	return render.Render(s.result)
}

// Begin starts a submission. It fails while another one is in flight.
func (s *State) Begin(query string) error {
	if s.loading {
		return ErrBusy
	}
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	s.query = query
	s.result = ""
	s.err = ""
	s.loading = true
	return nil
}

// Complete records the outcome of the submission started by Begin. Exactly
// one of result and error is kept.
func (s *State) Complete(answer string, err error) {
	s.loading = false
	if err != nil {
		s.result = ""
		s.err = Message(err)
		return
	}
	s.result = answer
	s.err = ""
}

// Reset clears everything, including the query.
func (s *State) Reset() {
	*s = State{}
}

// Run performs a full submission synchronously. The loading flag is cleared
// on every exit path; a panicking submitter is reported as an error.
func (s *State) Run(ctx context.Context, sub analysis.Submitter, query string) (err error) {
	if err := s.Begin(query); err != nil {
		return err
	}

	var answer string
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis aborted: %v", r)
		}
		s.Complete(answer, err)
	}()

	answer, err = sub.Submit(ctx, query)
	return err
}

// Message converts a submission error into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return analysis.FallbackMessage
}
