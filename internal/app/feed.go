package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"snooze-web/internal/story"
	"snooze-web/internal/view"
)

// FeedParser is satisfied by *gofeed.Parser.
type FeedParser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// NewFeedParser returns a gofeed parser with bounded dial and read timeouts.
func NewFeedParser(timeout time.Duration) *gofeed.Parser {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: timeout,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	fp := gofeed.NewParser()
	fp.Client = &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	return fp
}

var ErrNoFeedParser = errors.New("feed import is not configured")

type ImportResult struct {
	Feed     string
	Imported []story.Story
	Skipped  int
}

// ImportFeed submits up to the configured limit of feed items as stories of
// the signed-in viewer. Items without a title or link are skipped. Views are
// refreshed once at the end.
func (a *App) ImportFeed(ctx context.Context, st *State, feedURL string) (ImportResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.viewer == nil {
		return ImportResult{}, story.ErrNotSignedIn
	}
	if a.feeds == nil {
		return ImportResult{}, ErrNoFeedParser
	}
	feedURL = strings.TrimSpace(feedURL)
	if err := (story.NewStory{Title: "feed", Author: "feed", URL: feedURL}).Validate(); err != nil {
		return ImportResult{}, &story.ValidationError{Field: "feed_url", Reason: "must be an absolute http(s) URL"}
	}

	feed, err := a.feeds.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		a.logger.Warn("feed fetch failed", zap.String("feed", feedURL), zap.Error(err))
		return ImportResult{}, fmt.Errorf("reading feed %s: %w: %v", feedURL, story.ErrNetwork, err)
	}

	res := ImportResult{Feed: feed.Title}
	var stopErr error
	for _, item := range feed.Items {
		if len(res.Imported) >= a.opts.ImportLimit {
			res.Skipped++
			continue
		}
		ns := story.NewStory{
			Title:  strings.TrimSpace(item.Title),
			Author: itemAuthor(feed, item),
			URL:    strings.TrimSpace(item.Link),
		}
		if ns.Validate() != nil {
			res.Skipped++
			continue
		}
		created, err := a.stories.Add(ctx, st.viewer, ns)
		if err != nil {
			var serr *story.ServerError
			if errors.As(err, &serr) && serr.Status < http.StatusInternalServerError {
				res.Skipped++
				continue
			}
			stopErr = fmt.Errorf("importing %s: %w", feedURL, err)
			break
		}
		st.viewer.AddOwnStory(created)
		res.Imported = append(res.Imported, created)
	}

	fields := []zap.Field{
		zap.String("feed", feedURL),
		zap.Int("imported", len(res.Imported)),
		zap.Int("skipped", res.Skipped),
	}
	if stopErr != nil {
		a.logger.Warn("feed import stopped", append(fields, zap.Error(stopErr))...)
	} else {
		a.logger.Info("feed imported", fields...)
	}

	// Whatever was created before a failure still shows up.
	if err := a.refreshLocked(ctx, st, view.KindOwn, view.KindAll); err != nil && stopErr == nil {
		return res, err
	}
	return res, stopErr
}

func itemAuthor(feed *gofeed.Feed, item *gofeed.Item) string {
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	for _, p := range feed.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	if t := strings.TrimSpace(feed.Title); t != "" {
		return t
	}
	return "unknown"
}
