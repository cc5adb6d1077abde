package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/sukalov/lyricsquiz/internal/artifact"
	"github.com/sukalov/lyricsquiz/internal/audio"
	"github.com/sukalov/lyricsquiz/internal/logger"
	"github.com/sukalov/lyricsquiz/internal/lyrics"
)

// Job is one game document to build
type Job struct {
	Title  string
	Lyrics string
	Audio  *audio.Source
}

type Result struct {
	Job   Job
	Path  string
	Words int
	Err   error
}

// Exporter writes game documents into a directory using a shared worker pool
type Exporter struct {
	dir  string
	pool *ants.Pool
}

func NewExporter(dir string, pool *ants.Pool) *Exporter {
	return &Exporter{dir: dir, pool: pool}
}

// Export builds every job and returns the results in job order. File names
// are derived from titles and made unique within the batch.
func (e *Exporter) Export(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	names := uniqueNames(jobs)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		for i, job := range jobs {
			results[i] = Result{Job: job, Err: fmt.Errorf("failed to create output dir: %w", err)}
		}
		return results
	}

	var wg sync.WaitGroup
	for i, job := range jobs {
		results[i].Job = job
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		path := filepath.Join(e.dir, names[i])
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			results[i] = write(ctx, job, path)
		})
		if err != nil {
			wg.Done()
			results[i].Err = fmt.Errorf("failed to submit export job: %w", err)
		}
	}
	wg.Wait()

	return results
}

func write(ctx context.Context, job Job, path string) Result {
	res := Result{Job: job, Path: path}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	model := lyrics.Parse(job.Lyrics)
	res.Words = len(model.Words)

	doc := artifact.Generate(job.Title, model, job.Audio)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		res.Err = fmt.Errorf("failed to write %s: %w", path, err)
		return res
	}

	logger.L().Debug().Str("path", path).Int("words", res.Words).Msg("game exported")
	return res
}

func uniqueNames(jobs []Job) []string {
	names := make([]string, len(jobs))
	seen := make(map[string]int)
	for i, job := range jobs {
		name := artifact.FileName(job.Title)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = strings.TrimSuffix(name, "_game.html") + "_" + strconv.Itoa(n) + "_game.html"
		}
		names[i] = name
	}
	return names
}
