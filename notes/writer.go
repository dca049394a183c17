// Package notes assembles and writes markdown notes with YAML frontmatter
// into a vault directory.
package notes

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"google.golang.org/api/youtube/v3"
)

// frontmatter is the metadata block at the top of every note. Field order
// here is the order in the emitted YAML.
type frontmatter struct {
	Title                string   `yaml:"title"`
	Date                 string   `yaml:"date,omitempty"`
	YoutubeID            string   `yaml:"youtube_id"`
	Channel              string   `yaml:"channel"`
	ChannelID            string   `yaml:"channel_id,omitempty"`
	URL                  string   `yaml:"url"`
	Description          string   `yaml:"description"`
	Tags                 []string `yaml:"tags,omitempty"`
	CategoryID           string   `yaml:"category_id,omitempty"`
	Thumbnail            string   `yaml:"thumbnail,omitempty"`
	DefaultLanguage      string   `yaml:"default_language,omitempty"`
	DefaultAudioLanguage string   `yaml:"default_audio_language,omitempty"`
	Keywords             []string `yaml:"keywords,omitempty"`
}

// Writer renders video notes into a vault directory.
type Writer struct {
	defaultAuthor string
	log           *logrus.Logger
}

// NewWriter creates a Writer. defaultAuthor fills the channel field when the
// video metadata carries none.
func NewWriter(defaultAuthor string) *Writer {
	return &Writer{
		defaultAuthor: defaultAuthor,
		log:           logrus.StandardLogger(),
	}
}

// WriteVideoNote assembles the note for one video and writes it atomically.
// Keywords already present in the video's tags (case-insensitively) are not
// repeated in the keywords field. Returns the path of the written file.
func (w *Writer) WriteVideoNote(video *youtube.Video, transcript, summary string, keywords []string, outputDir string) (string, error) {
	if video == nil || video.Snippet == nil {
		return "", fmt.Errorf("video metadata is missing a snippet")
	}

	snippet := video.Snippet
	title := snippet.Title
	if title == "" {
		title = "untitled"
	}
	channel := snippet.ChannelTitle
	if channel == "" {
		channel = w.defaultAuthor
	}

	fm := frontmatter{
		Title:                title,
		Date:                 snippet.PublishedAt,
		YoutubeID:            video.Id,
		Channel:              channel,
		ChannelID:            snippet.ChannelId,
		URL:                  fmt.Sprintf("https://youtu.be/%s", video.Id),
		Description:          snippet.Description,
		Tags:                 snippet.Tags,
		CategoryID:           snippet.CategoryId,
		DefaultLanguage:      snippet.DefaultLanguage,
		DefaultAudioLanguage: snippet.DefaultAudioLanguage,
		Keywords:             newKeywords(keywords, snippet.Tags),
	}
	if snippet.Thumbnails != nil && snippet.Thumbnails.Default != nil {
		fm.Thumbnail = snippet.Thumbnails.Default.Url
	}

	fmBytes, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fmBytes)
	b.WriteString("---\n")
	fmt.Fprintf(&b, "![Youtube Video](https://img.youtube.com/vi/%s/0.jpg)\n", video.Id)
	fmt.Fprintf(&b, "[Watch on YouTube](https://youtu.be/%s)\n\n", video.Id)
	b.WriteString("## Summary\n\n")
	b.WriteString(summary)
	b.WriteString("\n\n## Transcript\n\n")
	if transcript == "" {
		b.WriteString("*Transcript not available.*")
	} else {
		b.WriteString(transcript)
	}
	b.WriteString("\n")

	path := filepath.Join(outputDir, noteFilename(snippet.PublishedAt, title))
	if err := atomicWrite(path, []byte(b.String())); err != nil {
		return "", fmt.Errorf("write note: %w", err)
	}

	w.log.WithFields(logrus.Fields{"video": video.Id, "path": path}).Info("wrote note")
	return path, nil
}

// noteFilename builds "YYYY-MM-DD-<slug>.md" from the publish timestamp and
// title.
func noteFilename(publishedAt, title string) string {
	date := publishedAt
	if len(date) > 10 {
		date = date[:10]
	}
	if date == "" {
		return Slugify(title) + ".md"
	}
	return fmt.Sprintf("%s-%s.md", date, Slugify(title))
}

// newKeywords filters out keywords already covered by the video's own tags,
// comparing case-insensitively.
func newKeywords(keywords, tags []string) []string {
	if len(keywords) == 0 {
		return nil
	}

	existing := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		existing[strings.ToLower(tag)] = struct{}{}
	}

	var out []string
	for _, kw := range keywords {
		if _, ok := existing[strings.ToLower(kw)]; ok {
			continue
		}
		out = append(out, kw)
	}
	return out
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify creates a filesystem-safe slug from a title.
func Slugify(text string) string {
	return strings.Trim(nonSlugRe.ReplaceAllString(strings.ToLower(text), "-"), "-")
}
