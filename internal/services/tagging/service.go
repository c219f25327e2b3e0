// Package tagging extracts topical tags from uploaded PDF documents.
package tagging

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"venue-tagger/internal/cache"
	"venue-tagger/internal/services/extract"
	"venue-tagger/internal/services/llm"
	"venue-tagger/internal/services/pdf"
)

const (
	DefaultTextLimit   = 2000
	DefaultWorkTimeout = 2 * time.Minute
)

// Cache is the subset of cache.RedisCache used for tag results.
type Cache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) ([]byte, error)
}

// Document is an uploaded file, consumed once per request.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Options struct {
	MaxUploadSize int64
	TextLimit     int
	CacheTTL      time.Duration
	// WorkTimeout bounds a generation shared by concurrent identical uploads.
	WorkTimeout   time.Duration
}

// Service runs the tag extraction flow: text extraction, prompt, completion, split.
type Service struct {
	text    pdf.TextExtractor
	llm     llm.Completer
	retrier *llm.Retrier
	cache   Cache
	opts    Options
	group   singleflight.Group
}

// NewService creates a tagging Service. cache may be nil.
func NewService(text pdf.TextExtractor, completer llm.Completer, retrier *llm.Retrier, c Cache, opts Options) *Service {
	if opts.TextLimit <= 0 {
		opts.TextLimit = DefaultTextLimit
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.TagsTTL
	}
	if opts.WorkTimeout <= 0 {
		opts.WorkTimeout = DefaultWorkTimeout
	}
	return &Service{
		text:    text,
		llm:     completer,
		retrier: retrier,
		cache:   c,
		opts:    opts,
	}
}

// Tag validates doc and returns its ordered tag list.
func (s *Service) Tag(ctx context.Context, doc Document) ([]string, error) {
	if len(doc.Data) == 0 {
		return nil, ErrMissingFile
	}
	if s.opts.MaxUploadSize > 0 && int64(len(doc.Data)) > s.opts.MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	if !pdf.IsPDF(doc.ContentType, doc.Data) {
		return nil, ErrInvalidFileType
	}

	sum := sha1.Sum(doc.Data)
	digest := hex.EncodeToString(sum[:])

	// The shared call outlives any single caller; each caller waits on its own ctx.
	ch := s.group.DoChan(digest, func() (interface{}, error) {
		workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.WorkTimeout)
		defer cancel()
		return s.tagCached(workCtx, digest, doc.Data)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug().Str("sha1", digest).Msg("Tag request shared an in-flight result")
		}
		return res.Val.([]string), nil
	}
}

func (s *Service) tagCached(ctx context.Context, digest string, data []byte) ([]string, error) {
	if s.cache == nil {
		return s.generate(ctx, data)
	}

	var (
		tags      []string
		generated bool
	)
	raw, err := s.cache.GetOrSet(ctx, cache.TagsKey(digest, s.llm.Model()), s.opts.CacheTTL, func() (interface{}, error) {
		generated = true
		t, err := s.generate(ctx, data)
		tags = t
		return t, err
	})
	if err != nil {
		if generated {
			return nil, err
		}
		log.Warn().Err(err).Str("sha1", digest).Msg("Tag cache unavailable, generating directly")
		return s.generate(ctx, data)
	}
	if generated {
		return tags, nil
	}

	if err := json.Unmarshal(raw, &tags); err != nil {
		log.Warn().Err(err).Str("sha1", digest).Msg("Discarding corrupt cached tags")
		return s.generate(ctx, data)
	}
	log.Debug().Str("sha1", digest).Msg("Tags served from cache")
	return tags, nil
}

func (s *Service) generate(ctx context.Context, data []byte) ([]string, error) {
	text, err := s.text.ExtractText(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoExtractableText
	}

	log.Info().
		Int("document_bytes", len(data)).
		Int("text_chars", len(text)).
		Msg("Extracted document text")

	req := llm.Request{Messages: tagPrompt(text, s.opts.TextLimit)}

	var tags []string
	err = s.retrier.Do(ctx, "tag", func(ctx context.Context) error {
		content, err := s.llm.Complete(ctx, req)
		if err != nil {
			return err
		}
		tags = extract.Tags(content)
		if len(tags) == 0 {
			return ErrNoTags
		}
		return nil
	})
	if errors.Is(err, llm.ErrNoContent) {
		return nil, ErrNoTags
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate tags: %w", err)
	}
	return tags, nil
}
