package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ytnotes/config"
	"ytnotes/llm"
	"ytnotes/notes"
	"ytnotes/processor"
	"ytnotes/resolve"
	"ytnotes/youtube"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "process":
		cmdProcess(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		// Assume a bare URL or ID was given without the subcommand
		cmdProcess(os.Args[1:])
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytnotes - summarize YouTube content into markdown notes

Usage:
  ytnotes process [flags] <url-or-id>   Process a video, playlist, or channel
  ytnotes help                          Show this help message

The input may be any YouTube URL, a bare video/playlist/channel ID, or an
@handle. Playlists and channels are expanded and each video gets one note.

Examples:
  ytnotes process https://youtu.be/dQw4w9WgXcQ
  ytnotes process PLxxxxxxxxxxxxxxxxxx --limit 5
  ytnotes process @SomeChannel --max-depth 2 --output-dir ~/vault
  ytnotes process dQw4w9WgXcQ --overwrite

For help on specific command: ytnotes <command> -h
`)
}

func cmdProcess(args []string) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	outputDir := fs.String("output-dir", "", "Directory to write notes into (default: VAULT_PATH)")
	overwrite := fs.Bool("overwrite", false, "Rewrite notes that already exist")
	maxDepth := fs.Int("max-depth", 0, "Maximum playlists to process for a channel (0 = all)")
	limit := fs.Int("limit", 0, "Maximum new videos to process for a playlist (0 = all)")
	dryRun := fs.Bool("dry-run", false, "Resolve the input and print the plan without processing")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	fs.BoolVar(verbose, "v", false, "Enable debug logging (shorthand)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytnotes process [flags] <url-or-id>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing url-or-id\n")
		fs.Usage()
		os.Exit(1)
	}

	input := argv[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log := logrus.WithField("run_id", uuid.NewString())

	dir := *outputDir
	if dir == "" {
		dir = cfg.VaultPath
	}

	ctx := context.Background()

	ytClient, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey, cfg.Retry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating YouTube client: %v\n", err)
		os.Exit(1)
	}

	resolver := resolve.New(ytClient)
	ref, err := resolver.Resolve(ctx, input)
	if err != nil {
		if errors.Is(err, resolve.ErrNotFound) {
			log.WithField("input", input).Error("could not determine content type")
			fmt.Fprintf(os.Stderr, "Error: could not resolve %q to a video, playlist, or channel\n", input)
		} else {
			fmt.Fprintf(os.Stderr, "Error resolving input: %v\n", err)
		}
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{"kind": ref.Kind, "id": ref.ID}).Info("input resolved")

	if *dryRun {
		fmt.Printf("Would process %s %s\n", ref.Kind, ref.ID)
		fmt.Printf("  output dir: %s\n", dir)
		fmt.Printf("  model:      %s\n", cfg.Model)
		if *overwrite {
			fmt.Println("  overwrite:  yes")
		}
		if ref.Kind == resolve.KindPlaylist && *limit > 0 {
			fmt.Printf("  limit:      %d videos\n", *limit)
		}
		if ref.Kind == resolve.KindChannel && *maxDepth > 0 {
			fmt.Printf("  max depth:  %d playlists\n", *maxDepth)
		}
		return
	}

	model, err := llm.NewClient(llm.ClientConfig{
		Endpoint:     cfg.APIEndpoint,
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		ChunkOverlap: cfg.ChunkOverlap,
		Retry:        cfg.Retry,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating model client: %v\n", err)
		os.Exit(1)
	}

	transcripts := youtube.NewTranscriptClient(cfg.RequestTimeout)
	writer := notes.NewWriter(cfg.DefaultAuthor)
	proc := processor.New(ytClient, transcripts, model, writer, cfg.MaxKeywords)

	opts := processor.Options{
		OutputDir: dir,
		Overwrite: *overwrite,
		MaxDepth:  *maxDepth,
		Limit:     *limit,
	}

	switch ref.Kind {
	case resolve.KindVideo:
		err = proc.ProcessVideo(ctx, ref.ID, opts)
	case resolve.KindPlaylist:
		err = proc.ProcessPlaylist(ctx, ref.ID, opts)
	case resolve.KindChannel:
		err = proc.ProcessChannel(ctx, ref.ID, opts)
	default:
		err = fmt.Errorf("unsupported content kind %q", ref.Kind)
	}
	if err != nil {
		log.WithError(err).Error("processing failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
