// Package youtube wraps the YouTube Data API v3 for metadata retrieval and
// content verification, and YouTube's timedtext endpoint for transcripts.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ytnotes/resolve"
	"ytnotes/retry"
)

// detailsBatchSize is the Data API limit for IDs per videos.list call.
const detailsBatchSize = 50

// pageSize is the maximum page size for list endpoints.
const pageSize = 50

// Client is a YouTube Data API v3 client. All calls are rate limited
// client-side and retried per the configured backoff policy.
type Client struct {
	svc      *youtube.Service
	limiter  *rate.Limiter
	retryCfg retry.Config
	log      *logrus.Logger
}

// NewClient creates a Data API client authenticated by API key. Extra options
// (custom endpoint, HTTP client) are passed through to the service, which
// tests use to point at a fake server.
func NewClient(ctx context.Context, apiKey string, retryCfg retry.Config, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	svcOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		svc: svc,
		// The Data API default quota is 10k units/day; 5 req/s keeps bursts
		// from burning it on large channels.
		limiter:  rate.NewLimiter(rate.Limit(5), 5),
		retryCfg: retryCfg,
		log:      logrus.StandardLogger(),
	}, nil
}

// VerifyInput issues a single search across video, playlist, and channel
// types and maps the top hit to a content reference. Absence of results, an
// unrecognized kind, and transport failures all surface as ErrNotFound,
// because inability to verify is equivalent to non-verification.
func (c *Client) VerifyInput(ctx context.Context, input string) (resolve.Ref, error) {
	var ref resolve.Ref

	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.svc.Search.List([]string{"id"}).
			Q(input).
			Type("video,playlist,channel").
			MaxResults(1).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		if len(resp.Items) == 0 {
			return resolve.ErrNotFound
		}

		id := resp.Items[0].Id
		switch id.Kind {
		case "youtube#video":
			ref = resolve.Ref{Kind: resolve.KindVideo, ID: id.VideoId}
		case "youtube#playlist":
			ref = resolve.Ref{Kind: resolve.KindPlaylist, ID: id.PlaylistId}
		case "youtube#channel":
			ref = resolve.Ref{Kind: resolve.KindChannel, ID: id.ChannelId}
		default:
			c.log.WithField("kind", id.Kind).Warn("search returned unknown kind")
			return resolve.ErrNotFound
		}

		if ref.ID == "" {
			return resolve.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, resolve.ErrNotFound) {
			c.log.WithError(err).WithField("input", input).Error("api verification failed")
		}
		return resolve.Ref{}, resolve.ErrNotFound
	}

	return ref, nil
}

// SearchChannelID resolves a handle or custom channel name to its canonical
// channel ID via a channel-typed search. An empty ID with nil error means no
// channel matched.
func (c *Client) SearchChannelID(ctx context.Context, query string) (string, error) {
	var channelID string

	err := c.do(ctx, func(ctx context.Context) error {
		resp, err := c.svc.Search.List([]string{"id"}).
			Q(query).
			Type("channel").
			MaxResults(1).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) > 0 && resp.Items[0].Id != nil {
			channelID = resp.Items[0].Id.ChannelId
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("channel search for %q: %w", query, err)
	}

	return channelID, nil
}

// VideoDetails fetches metadata for the given video IDs, batching requests at
// the API's 50-ID limit. A failing batch is logged and skipped so one bad
// batch does not lose the rest.
func (c *Client) VideoDetails(ctx context.Context, ids []string) ([]*youtube.Video, error) {
	var videos []*youtube.Video

	for start := 0; start < len(ids); start += detailsBatchSize {
		end := start + detailsBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		err := c.do(ctx, func(ctx context.Context) error {
			resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
				Id(batch...).
				Context(ctx).
				Do()
			if err != nil {
				return err
			}
			videos = append(videos, resp.Items...)
			return nil
		})
		if err != nil {
			c.log.WithError(err).WithField("batch", batch).Error("video details batch failed")
		}
	}

	c.log.WithFields(logrus.Fields{"requested": len(ids), "fetched": len(videos)}).Debug("fetched video details")
	return videos, nil
}

// PlaylistVideos returns every item in a playlist, draining all pages before
// returning.
func (c *Client) PlaylistVideos(ctx context.Context, playlistID string) ([]*youtube.PlaylistItem, error) {
	var items []*youtube.PlaylistItem
	pageToken := ""

	for {
		err := c.do(ctx, func(ctx context.Context) error {
			call := c.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(pageSize).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}

			resp, err := call.Do()
			if err != nil {
				return err
			}
			items = append(items, resp.Items...)
			pageToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list playlist %s: %w", playlistID, err)
		}
		if pageToken == "" {
			break
		}
	}

	c.log.WithFields(logrus.Fields{"playlist": playlistID, "videos": len(items)}).Info("fetched playlist items")
	return items, nil
}

// ChannelPlaylists returns every playlist owned by a channel, draining all
// pages before returning.
func (c *Client) ChannelPlaylists(ctx context.Context, channelID string) ([]*youtube.Playlist, error) {
	var playlists []*youtube.Playlist
	pageToken := ""

	for {
		err := c.do(ctx, func(ctx context.Context) error {
			call := c.svc.Playlists.List([]string{"snippet", "contentDetails"}).
				ChannelId(channelID).
				MaxResults(pageSize).
				Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}

			resp, err := call.Do()
			if err != nil {
				return err
			}
			playlists = append(playlists, resp.Items...)
			pageToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list channel playlists %s: %w", channelID, err)
		}
		if pageToken == "" {
			break
		}
	}

	c.log.WithFields(logrus.Fields{"channel": channelID, "playlists": len(playlists)}).Info("fetched channel playlists")
	return playlists, nil
}

// do applies the rate limit and retry policy around one API call.
func (c *Client) do(ctx context.Context, fn func(context.Context) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return retry.Do(ctx, c.retryCfg, classifyAPIError, fn)
}

// classifyAPIError maps Data API failures onto the retryable set. Quota and
// rate-limit rejections retry (they may clear), as do 5xx and transport
// errors; everything else is terminal.
func classifyAPIError(err error) retry.Kind {
	if errors.Is(err, resolve.ErrNotFound) {
		return retry.KindTerminal
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return retry.KindRateLimited
		case apiErr.Code == 403 && hasReason(apiErr, "quotaExceeded", "rateLimitExceeded", "userRateLimitExceeded"):
			return retry.KindRateLimited
		case apiErr.Code >= 500:
			return retry.KindUpstream
		}
		return retry.KindTerminal
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return retry.KindConnection
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return retry.KindConnection
	}

	return retry.KindTerminal
}

func hasReason(apiErr *googleapi.Error, reasons ...string) bool {
	for _, item := range apiErr.Errors {
		for _, reason := range reasons {
			if item.Reason == reason {
				return true
			}
		}
	}
	// Some backends only carry the reason in the message.
	for _, reason := range reasons {
		if strings.Contains(apiErr.Message, reason) {
			return true
		}
	}
	return false
}
