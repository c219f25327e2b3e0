// Package wedding generates structured wedding venue plans and refreshes
// individual plan sections.
package wedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"venue-tagger/internal/services/extract"
	"venue-tagger/internal/services/llm"
)

const (
	planTemperature    = 0.7
	planMaxTokens      = 2000
	refreshTemperature = 0.8
	refreshMaxTokens   = 800
)

type Service struct {
	llm       llm.Completer
	retrier   *llm.Retrier
	extractor *extract.Extractor
}

func NewService(completer llm.Completer, retrier *llm.Retrier, extractor *extract.Extractor) *Service {
	if extractor == nil {
		extractor = extract.New()
	}
	return &Service{
		llm:       completer,
		retrier:   retrier,
		extractor: extractor,
	}
}

// Plan generates a complete six-section plan near req.Location.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*WeddingPlan, error) {
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return nil, ErrMissingLocation
	}

	completion := llm.Request{
		Messages:    planPrompt(location, req.Budget, req.Attendees),
		Temperature: llm.Temperature(planTemperature),
		MaxTokens:   planMaxTokens,
	}

	var plan WeddingPlan
	err := s.retrier.Do(ctx, "wedding_plan", func(ctx context.Context) error {
		content, err := s.llm.Complete(ctx, completion)
		if err != nil {
			return err
		}
		plan = WeddingPlan{}
		if err := s.extractor.DecodeValid(content, extract.ShapeObject, &plan); err != nil {
			logRejected(err, "wedding_plan")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate wedding plan: %w", err)
	}

	event := log.Info().Str("location", location)
	withCounts(event, req.Budget, req.Attendees).Msg("Generated wedding plan")
	return &plan, nil
}

// Refresh asks for a different option for one section of an existing plan.
func (s *Service) Refresh(ctx context.Context, req SectionRefreshRequest) (*RefreshResult, error) {
	location := strings.TrimSpace(req.Location)
	current := bytes.TrimSpace(req.CurrentContent)
	if location == "" || req.SectionType == "" || isBlank(current) {
		return nil, ErrMissingParameters
	}
	section, ok := ParseSection(req.SectionType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, req.SectionType)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, current); err != nil {
		return nil, fmt.Errorf("%w: currentContent is not valid JSON", ErrMissingParameters)
	}

	completion := llm.Request{
		Messages:    refreshPrompt(location, req.Budget, req.Attendees, section, compact.String()),
		Temperature: llm.Temperature(refreshTemperature),
		MaxTokens:   refreshMaxTokens,
	}

	var result RefreshResult
	err := s.retrier.Do(ctx, "wedding_refresh", func(ctx context.Context) error {
		content, err := s.llm.Complete(ctx, completion)
		if err != nil {
			return err
		}
		if section.IsList() {
			var opts venueOptions
			if err := s.extractor.DecodeValid(content, extract.ShapeArray, &opts); err != nil {
				logRejected(err, "wedding_refresh")
				return err
			}
			result.NewContent = opts.Venues
			return nil
		}
		var venue VenueInfo
		if err := s.extractor.DecodeValid(content, extract.ShapeObject, &venue); err != nil {
			logRejected(err, "wedding_refresh")
			return err
		}
		result.NewContent = &venue
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh %s: %w", section, err)
	}

	event := log.Info().Str("section", string(section)).Str("location", location)
	withCounts(event, req.Budget, req.Attendees).Msg("Refreshed wedding section")
	return &result, nil
}

// isBlank reports whether currentContent counts as not supplied: absent,
// null, false, "" or 0. Malformed JSON is left for json.Compact to reject.
func isBlank(raw []byte) bool {
	if len(raw) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case float64:
		return v == 0
	}
	return false
}

// logRejected records the raw completion behind an extraction failure.
func logRejected(err error, operation string) {
	raw, ok := extract.RawCompletion(err)
	if !ok {
		return
	}
	log.Error().
		Err(err).
		Str("operation", operation).
		Str("completion", raw).
		Msg("Failed to parse model response")
}

func withCounts(e *zerolog.Event, budget, attendees *int64) *zerolog.Event {
	if b, ok := positive(budget); ok {
		e = e.Str("budget", "$"+formatCount(b))
	}
	if a, ok := positive(attendees); ok {
		e = e.Str("guests", formatCount(a))
	}
	return e
}
