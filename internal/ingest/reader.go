package ingest

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"gitlab.com/wikidex/wikidex/internal/normalize"
	"gitlab.com/wikidex/wikidex/internal/pipeline"
	"gitlab.com/wikidex/wikidex/internal/wikidump"
)

// perPageTimeout bounds how long normalization of a single page may run
// before the page is dropped, per spec.md §4.1's Reader stage contract.
const perPageTimeout = 60 * time.Second

// readArticles streams normalized articles out of the dump at path. It has
// a custom fan shape (one input file, many streamed outputs, each raced
// against a timeout) that doesn't fit pipeline.Stage's one-call contract,
// matching how original_source's WikipediaDumpReader overrides link
// instead of transform for the same reason. It runs on g rather than a
// bare goroutine so a dump-open or dump-read failure is a real pipeline
// failure reported through g.Wait, not a silently empty result.
func readArticles(g *errgroup.Group, ctx context.Context, logger zerolog.Logger, path string, limit int, articleIDs *pipeline.IDCounter) <-chan normalizedArticle {
	out := make(chan normalizedArticle)
	log := logger.With().Str("stage", "Reader").Logger()

	g.Go(func() error {
		defer close(out)

		date, errE := wikidump.DateFromFilename(path)
		if errE != nil {
			return errors.WithMessage(errE, "could not determine dump date")
		}

		file, err := os.Open(path)
		if err != nil {
			return errors.WithMessage(errors.WithStack(err), "could not open dump")
		}
		defer file.Close()

		reader := wikidump.NewReader(file)

		count := 0
		for {
			if limit > 0 && count >= limit {
				break
			}

			page, ok, errE := reader.Next()
			if errE != nil {
				return errors.WithMessage(errE, "dump read failed")
			}
			if !ok {
				break
			}
			count++

			article, ok := normalizeWithTimeout(ctx, log, page.Title, page.Text(), perPageTimeout)
			if !ok {
				continue
			}

			select {
			case out <- normalizedArticle{
				ArticleID: articleIDs.Next(),
				Title:     page.Title,
				Text:      article,
				Date:      date,
			}:
			case <-ctx.Done():
				return errors.WithStack(ctx.Err())
			}
		}

		return nil
	})

	return out
}

// normalizeWithTimeout races normalize.Normalize against timeout, dropping
// the page with a logged warning if it runs too long. The timeout is
// parameterized so tests can exercise the drop path without waiting out
// perPageTimeout.
func normalizeWithTimeout(ctx context.Context, log zerolog.Logger, title, markup string, timeout time.Duration) (string, bool) {
	type result struct {
		text string
		errE errors.E
	}
	done := make(chan result, 1)

	go func() {
		text, errE := normalize.Normalize(markup)
		done <- result{text: text, errE: errE}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.errE != nil {
			log.Error().Err(r.errE).Str("title", title).Msg("normalization failed")
			return "", false
		}
		return r.text, true
	case <-timer.C:
		log.Warn().Str("title", title).Dur("timeout", timeout).Msg("normalization took too long, dropping page")
		return "", false
	case <-ctx.Done():
		return "", false
	}
}
