// Package processor orchestrates the pipeline for one resolved piece of
// content: fetch metadata, fetch transcript, summarize, write the note.
// Videos are processed strictly one at a time.
package processor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	ytapi "google.golang.org/api/youtube/v3"

	"ytnotes/llm"
	"ytnotes/notes"
	"ytnotes/youtube"
)

// metadataClient is the slice of the Data API client the processor needs.
type metadataClient interface {
	VideoDetails(ctx context.Context, ids []string) ([]*ytapi.Video, error)
	PlaylistVideos(ctx context.Context, playlistID string) ([]*ytapi.PlaylistItem, error)
	ChannelPlaylists(ctx context.Context, channelID string) ([]*ytapi.Playlist, error)
}

type transcriptClient interface {
	GetTranscript(ctx context.Context, videoID string) ([]youtube.Segment, error)
}

type summarizer interface {
	Summarize(ctx context.Context, req llm.SummaryRequest) string
	ExtractKeywords(ctx context.Context, req llm.KeywordsRequest) []string
}

type noteWriter interface {
	WriteVideoNote(video *ytapi.Video, transcript, summary string, keywords []string, outputDir string) (string, error)
}

// Options control a single processing run.
type Options struct {
	OutputDir string
	Overwrite bool
	// MaxDepth caps how many of a channel's playlists are processed.
	// Zero means all of them.
	MaxDepth int
	// Limit caps how many new videos a playlist run processes. Zero means
	// no cap.
	Limit int
}

// Processor walks videos, playlists and channels and writes one note per
// video.
type Processor struct {
	yt          metadataClient
	transcripts transcriptClient
	model       summarizer
	writer      noteWriter
	maxKeywords int
	log         *logrus.Logger
}

// New creates a Processor. maxKeywords caps the keywords requested from the
// model for each video.
func New(yt metadataClient, transcripts transcriptClient, model summarizer, writer noteWriter, maxKeywords int) *Processor {
	return &Processor{
		yt:          yt,
		transcripts: transcripts,
		model:       model,
		writer:      writer,
		maxKeywords: maxKeywords,
		log:         logrus.StandardLogger(),
	}
}

// ProcessVideo handles a single video. An existing note is skipped unless
// opts.Overwrite is set.
func (p *Processor) ProcessVideo(ctx context.Context, videoID string, opts Options) error {
	if !opts.Overwrite {
		existing := notes.ExistingVideoIDs(opts.OutputDir)
		if _, ok := existing[videoID]; ok {
			p.log.WithField("video", videoID).Info("note already exists, skipping")
			return nil
		}
	}
	return p.processOne(ctx, videoID, opts.OutputDir)
}

// processOne runs the full pipeline for one video id. The skip-if-exists
// check must already have happened.
func (p *Processor) processOne(ctx context.Context, videoID, outputDir string) error {
	log := p.log.WithField("video", videoID)
	log.Info("processing video")

	details, err := p.yt.VideoDetails(ctx, []string{videoID})
	if err != nil {
		return fmt.Errorf("fetch video details: %w", err)
	}
	if len(details) == 0 {
		return fmt.Errorf("video %s not found", videoID)
	}
	video := details[0]

	// A missing or blocked transcript is not fatal, the note is written
	// without one.
	var transcript string
	segments, err := p.transcripts.GetTranscript(ctx, videoID)
	if err != nil {
		log.WithError(err).Warn("transcript fetch failed, writing note without transcript")
	} else {
		transcript = youtube.FormatTranscript(segments)
	}

	summary := p.model.Summarize(ctx, llm.SummaryRequest{Transcript: transcript})
	keywords := p.model.ExtractKeywords(ctx, llm.KeywordsRequest{
		Transcript:  transcript,
		MaxKeywords: p.maxKeywords,
	})

	path, err := p.writer.WriteVideoNote(video, transcript, summary, keywords, outputDir)
	if err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	log.WithField("path", path).Info("video processed")
	return nil
}

// ProcessPlaylist handles every video of a playlist, skipping ones that
// already have notes unless opts.Overwrite is set. A failing video is logged
// and does not stop the rest of the playlist.
func (p *Processor) ProcessPlaylist(ctx context.Context, playlistID string, opts Options) error {
	log := p.log.WithField("playlist", playlistID)
	log.Info("processing playlist")

	items, err := p.yt.PlaylistVideos(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("fetch playlist %s: %w", playlistID, err)
	}
	if len(items) == 0 {
		log.Info("playlist is empty")
		return nil
	}

	var videoIDs []string
	for _, item := range items {
		if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
			log.WithField("item", item.Id).Warn("playlist item has no video id, skipping")
			continue
		}
		videoIDs = append(videoIDs, item.ContentDetails.VideoId)
	}

	if !opts.Overwrite {
		existing := notes.ExistingVideoIDs(opts.OutputDir)
		fresh := videoIDs[:0]
		for _, id := range videoIDs {
			if _, ok := existing[id]; !ok {
				fresh = append(fresh, id)
			}
		}
		if skipped := len(videoIDs) - len(fresh); skipped > 0 {
			log.WithField("skipped", skipped).Info("skipping videos with existing notes")
		}
		videoIDs = fresh
	}

	if opts.Limit > 0 && len(videoIDs) > opts.Limit {
		log.WithFields(logrus.Fields{"limit": opts.Limit, "found": len(videoIDs)}).Info("applying video limit")
		videoIDs = videoIDs[:opts.Limit]
	}
	if len(videoIDs) == 0 {
		log.Info("no new videos to process")
		return nil
	}

	processed := 0
	for i, id := range videoIDs {
		log.WithFields(logrus.Fields{"video": id, "position": fmt.Sprintf("%d/%d", i+1, len(videoIDs))}).Info("processing playlist video")
		if err := p.processOne(ctx, id, opts.OutputDir); err != nil {
			log.WithError(err).WithField("video", id).Error("video failed, continuing with playlist")
			continue
		}
		processed++
	}
	log.WithField("processed", processed).Info("playlist done")
	return nil
}

// ProcessChannel handles a channel's playlists in order, up to opts.MaxDepth
// of them. A failing playlist is logged and does not stop the rest.
func (p *Processor) ProcessChannel(ctx context.Context, channelID string, opts Options) error {
	log := p.log.WithField("channel", channelID)
	log.Info("processing channel")

	playlists, err := p.yt.ChannelPlaylists(ctx, channelID)
	if err != nil {
		return fmt.Errorf("fetch channel playlists %s: %w", channelID, err)
	}
	if len(playlists) == 0 {
		log.Warn("channel has no playlists")
		return nil
	}

	if opts.MaxDepth > 0 && len(playlists) > opts.MaxDepth {
		log.WithFields(logrus.Fields{"max_depth": opts.MaxDepth, "found": len(playlists)}).Info("limiting playlists")
		playlists = playlists[:opts.MaxDepth]
	}

	for i, pl := range playlists {
		title := ""
		if pl.Snippet != nil {
			title = pl.Snippet.Title
		}
		log.WithFields(logrus.Fields{
			"playlist": pl.Id,
			"title":    title,
			"position": fmt.Sprintf("%d/%d", i+1, len(playlists)),
		}).Info("processing channel playlist")
		if err := p.ProcessPlaylist(ctx, pl.Id, opts); err != nil {
			log.WithError(err).WithField("playlist", pl.Id).Error("playlist failed, continuing with channel")
		}
	}
	log.Info("channel done")
	return nil
}
