// Package ytnotes turns YouTube content into summarized markdown notes.
//
// Given a video, playlist, or channel reference, it fetches metadata and
// transcripts, produces an LLM summary and keywords, and writes one
// frontmatter-tagged markdown note per video into a vault directory.
//
// Overview
//
// The pipeline is assembled from the sub-packages:
//
//   - resolve: classify free-form input (URL, bare ID, @handle) into a
//     canonical (kind, id) reference
//   - youtube: Data API client plus timedtext transcript client
//   - llm: chunked summarization and keyword extraction against any
//     OpenAI-compatible endpoint
//   - notes: markdown note assembly and vault scanning
//   - processor: orchestration of videos, playlists, and channels
//   - config: environment-based configuration
//   - retry: exponential backoff retry logic
//
// Configuration
//
// Settings are read from the environment, with a .env file loaded first if
// present:
//
//   - YOUTUBE_API_KEY: Data API key (required)
//   - VAULT_PATH: directory notes are written into
//   - DEFAULT_AUTHOR: channel name fallback
//   - API_ENDPOINT: OpenAI-compatible endpoint base URL
//   - API_KEY: key for that endpoint (optional for local servers)
//   - MODEL: model name, drives timeout and chunking budget
//   - MAX_KEYWORDS: keyword cap per note
//   - CHUNK_OVERLAP: character overlap between transcript chunks
//   - REQUEST_TIMEOUT: metadata and transcript HTTP timeout
//   - MAX_RETRIES, INITIAL_RETRY_DELAY, MAX_RETRY_DELAY,
//     RETRY_EXPONENTIAL_BASE: retry tuning
//
// Quick Start
//
// Process a playlist from the command line:
//
//	ytnotes process https://www.youtube.com/playlist?list=PLxxxxxxxx
//
// Or drive the pipeline programmatically:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	yt, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey, cfg.Retry)
//	if err != nil {
//		log.Fatal(err)
//	}
//	ref, err := resolve.New(yt).Resolve(ctx, "@SomeChannel")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%s %s\n", ref.Kind, ref.ID)
//
package ytnotes
