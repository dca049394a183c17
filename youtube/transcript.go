package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Segment is one timed piece of a video transcript.
type Segment struct {
	OffsetSeconds int
	Text          string
}

// TranscriptClient fetches transcripts from YouTube's timedtext endpoint.
type TranscriptClient struct {
	httpClient *http.Client
	baseURL    string
	lang       string
	log        *logrus.Logger
}

// NewTranscriptClient creates a transcript client with the given request
// timeout. Transcripts are requested in English.
func NewTranscriptClient(timeout time.Duration) *TranscriptClient {
	return &TranscriptClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://www.youtube.com/api/timedtext",
		lang:       "en",
		log:        logrus.StandardLogger(),
	}
}

// timedtextResponse is the raw json3 timedtext payload.
type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	TStartMs int64          `json:"tStartMs"`
	Segs     []timedtextSeg `json:"segs,omitempty"`
}

type timedtextSeg struct {
	UTF8 string `json:"utf8"`
}

// GetTranscript returns the ordered transcript segments for a video. A video
// with captions disabled or missing yields an empty transcript, not an error:
// notes are still written without one.
func (tc *TranscriptClient) GetTranscript(ctx context.Context, videoID string) ([]Segment, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video id is required")
	}

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", tc.lang)
	params.Set("fmt", "json3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tc.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build timedtext request: %w", err)
	}

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timedtext request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusForbidden:
		// Captions disabled, missing, or region locked: an empty transcript.
		tc.log.WithFields(logrus.Fields{"video": videoID, "status": resp.StatusCode}).Warn("transcript unavailable")
		return nil, nil
	default:
		return nil, fmt.Errorf("timedtext returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read timedtext response: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}

	segments, err := parseTimedtext(body)
	if err != nil {
		return nil, fmt.Errorf("parse timedtext response: %w", err)
	}
	return segments, nil
}

// parseTimedtext converts a json3 payload into ordered segments.
func parseTimedtext(body []byte) ([]Segment, error) {
	var payload timedtextResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	var segments []Segment
	for _, event := range payload.Events {
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}

		t := strings.TrimSpace(strings.ReplaceAll(text.String(), "\n", " "))
		if t == "" {
			continue
		}

		segments = append(segments, Segment{
			OffsetSeconds: int(event.TStartMs / 1000),
			Text:          t,
		})
	}
	return segments, nil
}

// FormatTranscript renders segments as timestamp-annotated lines in the form
// "[mm:ss] text". This is the transcript string the summarization pipeline
// and the note body consume.
func FormatTranscript(segments []Segment) string {
	if len(segments) == 0 {
		return ""
	}

	lines := make([]string, len(segments))
	for i, seg := range segments {
		lines[i] = fmt.Sprintf("[%02d:%02d] %s", seg.OffsetSeconds/60, seg.OffsetSeconds%60, seg.Text)
	}
	return strings.Join(lines, "\n")
}
