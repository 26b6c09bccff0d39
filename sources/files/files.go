// Package files walks a directory tree and yields its text documents.
package files

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/fatih/semgroup"

	"github.com/attunehq/nudge/logging"
	"github.com/attunehq/nudge/sources"
	"github.com/attunehq/nudge/sources/file"
)

// Target is a file found by the walk.
type Target struct {
	Path    string
	Symlink string
}

// DocumentFunc receives each document. It may be called concurrently.
type DocumentFunc func(file.Document) error

// Files yields documents from every regular text file under Path.
type Files struct {
	Path           string
	FollowSymlinks bool
	MaxFileSize    int64
	Sema           *semgroup.Group
}

// targets yields walk targets to a callback func
func (s *Files) targets(ctx context.Context, yield func(Target) error) error {
	// Symlinks are resolved by hand below, so fastwalk must not follow them.
	conf := &fastwalk.Config{Follow: false}

	if info, err := os.Stat(s.Path); err == nil && info.Mode().IsRegular() {
		return yield(Target{Path: s.Path})
	}

	err := fastwalk.Walk(conf, s.Path, func(path string, d fs.DirEntry, err error) error {
		target := Target{Path: path}
		logger := logging.With().Str("path", path).Logger()

		if err != nil {
			if os.IsPermission(err) {
				logger.Warn().Err(errors.New("permission denied")).Msg("skipping directory")
				return fastwalk.SkipDir
			}
			logger.Warn().Err(err).Msg("skipping")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if sources.ShouldSkipDir(s.Path, path) {
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.Type() == fs.ModeSymlink {
			if !s.FollowSymlinks {
				logger.Debug().Msg("skipping symlink: follow symlinks disabled")
				return nil
			}
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				logger.Error().Err(err).Msg("skipping symlink: could not evaluate")
				return nil
			}
			if info, err := os.Stat(realPath); err != nil || info.IsDir() {
				logger.Debug().Str("target", realPath).Msg("skipping symlink: target is directory")
				return nil
			}
			target = Target{Path: realPath, Symlink: path}
		} else if !d.Type().IsRegular() {
			return nil
		}

		return yield(target)
	})

	// A missing root is logged rather than failing the whole check.
	if err != nil && os.IsNotExist(err) {
		logging.Warn().Err(err).Str("path", s.Path).Msg("skipping")
		return nil
	}
	return err
}

// Documents reads every target on the semaphore and hands text documents
// to yield. Binary, oversized and unreadable files are skipped.
func (s *Files) Documents(ctx context.Context, yield DocumentFunc) error {
	var wg sync.WaitGroup

	err := s.targets(ctx, func(target Target) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		wg.Add(1)
		s.Sema.Go(func() error {
			defer wg.Done()
			logger := logging.With().Str("path", target.Path).Logger()
			logger.Trace().Msg("reading file")

			doc, err := file.Read(target.Path, s.MaxFileSize)
			switch {
			case errors.Is(err, file.ErrBinary):
				logger.Trace().Msg("skipping binary file")
				return nil
			case errors.Is(err, file.ErrTooLarge):
				logger.Warn().Err(err).Msg("skipping file")
				return nil
			case err != nil:
				if os.IsPermission(err) {
					logger.Warn().Msg("skipping file: permission denied")
				} else {
					logger.Warn().Err(err).Msg("skipping file")
				}
				return nil
			}
			if target.Symlink != "" {
				doc.Path = target.Symlink
				doc.Symlink = target.Symlink
			}
			return yield(doc)
		})
		return nil
	})

	wg.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
