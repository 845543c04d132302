package taskrun

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// progressThreshold is the number of removals above which clean shows a progress bar.
const progressThreshold = 50

// resolvePatternLists expands shell glob patterns (with ** support) relative to base.
// Patterns that match nothing are dropped; plain paths are returned as-is. base itself
// is never parsed as shell text.
func resolvePatternLists(base string, patterns []string) ([]string, error) {
	result := []string{}
	cfg := expand.Config{
		Env:      expand.ListEnviron("PWD=" + base),
		ReadDir:  shellReadDir,
		GlobStar: true,
		NullGlob: true,
	}

	parser := syntax.NewParser()
	for _, item := range patterns {
		if !filepath.IsAbs(item) {
			// the leading ./ lets a top-level ** match base itself
			item = "./" + filepath.ToSlash(item)
		} else {
			item = filepath.ToSlash(item)
		}

		words := make([]*syntax.Word, 0)
		err := parser.Words(strings.NewReader(item), func(w *syntax.Word) bool {
			words = append(words, w)
			return true
		})
		if err != nil {
			return nil, eris.Wrapf(err, "failed to parse pattern %s", item)
		}

		matches, err := expand.Fields(&cfg, words...)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to resolve pattern %s", item)
		}

		for _, match := range matches {
			match = filepath.FromSlash(match)
			if !filepath.IsAbs(match) {
				match = filepath.Join(base, match)
			}
			result = append(result, match)
		}
	}
	return result, nil
}

func newProgressBar(length int, out io.Writer, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.NewOptions(length,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// cleanTask removes everything matched by the task's clean patterns. Missing entries
// are not an error.
func cleanTask(ctx context.Context, task *Task, opts Options) error {
	if len(task.Clean) == 0 {
		return nil
	}

	matches, err := resolvePatternLists(task.Base, task.Clean)
	if err != nil {
		return eris.Wrapf(err, "failed to resolve clean patterns of %s", task.Short)
	}

	existing := make([]string, 0, len(matches))
	for _, item := range matches {
		_, err := os.Lstat(item)
		if err == nil {
			existing = append(existing, item)
		} else if !eris.Is(err, os.ErrNotExist) {
			return eris.Wrapf(err, "failed to check %s", item)
		}
	}

	if len(existing) == 0 {
		log(ctx).Info().Str("task", task.Short).Msg("nothing to clean")
		return nil
	}

	var bar *progressbar.ProgressBar
	if !opts.DryRun && len(existing) > progressThreshold {
		bar = newProgressBar(len(existing), opts.stderr(), "cleaning")
	}

	for _, item := range existing {
		rel, relErr := filepath.Rel(task.Base, item)
		if relErr != nil {
			rel = item
		}

		log(ctx).Debug().Str("task", task.Short).Str("path", item).Msgf("remove %s", rel)
		if opts.DryRun {
			log(ctx).Info().Str("task", task.Short).Bool("command", true).Msgf("rm -rf %s", rel)
			continue
		}

		// a parent directory matched earlier may already have taken this entry with it
		if err := os.RemoveAll(item); err != nil && !eris.Is(err, os.ErrNotExist) {
			return eris.Wrapf(err, "could not delete %s", item)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if !opts.DryRun {
		log(ctx).Info().Str("task", task.Short).Msgf("removed %d entries", len(existing))
	}
	return nil
}
