package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/panjf2000/ants/v2"

	"github.com/sukalov/lyricsquiz/internal/artifact"
	"github.com/sukalov/lyricsquiz/internal/audio"
	"github.com/sukalov/lyricsquiz/internal/config"
	"github.com/sukalov/lyricsquiz/internal/export"
	"github.com/sukalov/lyricsquiz/internal/logger"
	"github.com/sukalov/lyricsquiz/internal/lyrics"
)

type options struct {
	title   string
	audio   string
	out     string
	workers int
	url     string
	inputs  []string
}

func main() {
	cfg := config.CLI()
	logger.Setup(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	opts, err := parseFlags(os.Args[1:], cfg.Workers)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func parseFlags(args []string, workers int) (options, error) {
	var opts options
	fs := flag.NewFlagSet("lyricsquiz", flag.ContinueOnError)
	fs.StringVar(&opts.title, "title", "", "game title (single input only)")
	fs.StringVar(&opts.audio, "audio", "", "audio file embedded in every game")
	fs.StringVar(&opts.out, "out", "", "output directory; a single game goes to stdout when empty")
	fs.IntVar(&opts.workers, "workers", workers, "export workers for batches")
	fs.StringVar(&opts.url, "url", "", "import lyrics from an amdm.ru page and print them")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: lyricsquiz [options] <lyrics.txt|-> [more.txt...]\n")
		fmt.Fprintf(fs.Output(), "       lyricsquiz -url https://amdm.ru/akkordi/...\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.inputs = fs.Args()

	if opts.url == "" && len(opts.inputs) == 0 {
		fs.Usage()
		return opts, errors.New("no lyrics file given")
	}
	if opts.workers < 1 {
		return opts, fmt.Errorf("workers must be positive, got %d", opts.workers)
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	if opts.url != "" {
		return importLyrics(ctx, opts.url, stdout)
	}

	var src *audio.Source
	if opts.audio != "" {
		f, err := os.Open(opts.audio)
		if err != nil {
			return fmt.Errorf("failed to open audio: %w", err)
		}
		src, err = audio.FromReader(f, filepath.Base(opts.audio))
		f.Close()
		if err != nil {
			return err
		}
	}

	jobs := make([]export.Job, 0, len(opts.inputs))
	for _, input := range opts.inputs {
		text, err := readInput(input, stdin)
		if err != nil {
			return err
		}
		jobs = append(jobs, export.Job{Title: titleFor(input, opts, src), Lyrics: text, Audio: src})
	}

	if len(jobs) == 1 && opts.out == "" {
		job := jobs[0]
		_, err := io.WriteString(stdout, artifact.Generate(job.Title, lyrics.Parse(job.Lyrics), job.Audio))
		return err
	}

	return exportBatch(ctx, opts, jobs, stdout)
}

func exportBatch(ctx context.Context, opts options, jobs []export.Job, stdout io.Writer) error {
	dir := opts.out
	if dir == "" {
		dir = "."
	}

	pool, err := ants.NewPool(opts.workers, ants.WithPanicHandler(func(p interface{}) {
		logger.L().Error().Interface("panic", p).Msg("panic in export worker")
	}))
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	failed := 0
	for _, res := range export.NewExporter(dir, pool).Export(ctx, jobs) {
		if res.Err != nil {
			failed++
			logger.L().Error().Err(res.Err).Str("title", res.Job.Title).Msg("export failed")
			continue
		}
		fmt.Fprintf(stdout, "%s\t%d\n", res.Path, res.Words)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d games failed to export", failed, len(jobs))
	}
	return nil
}

func importLyrics(ctx context.Context, url string, stdout io.Writer) error {
	result, err := lyrics.NewService().ExtractLyrics(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", url, err)
	}
	logger.L().Info().Str("url", url).Str("title", result.Title).Int("chars", len(result.Text)).Msg("lyrics imported")
	_, err = fmt.Fprintln(stdout, result.Text)
	return err
}

func readInput(input string, stdin io.Reader) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("failed to read lyrics: %w", err)
	}
	return string(data), nil
}

// titleFor uses -title for a single input, then the audio tags, then the file name
func titleFor(input string, opts options, src *audio.Source) string {
	if opts.title != "" && len(opts.inputs) == 1 {
		return opts.title
	}
	if src != nil && src.Title != "" && len(opts.inputs) == 1 {
		return src.Title
	}
	if input == "-" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
}
