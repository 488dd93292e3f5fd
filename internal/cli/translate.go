package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aomame/internal/adapter/cache"
	"aomame/internal/adapter/chunker"
	"aomame/internal/adapter/fs"
	"aomame/internal/adapter/memstore"
	"aomame/internal/adapter/provider"
	"aomame/internal/adapter/store"
	"aomame/internal/port"
	"aomame/internal/usecase"
)

var (
	translateAPI        string
	translateKey        string
	translateInput      string
	translateOutput     string
	translateSLang      string
	translateTLang      string
	translateCacheSize  int
	translateGlob       string
	translateOutDir     string
	translateWorkers    int
	translateMemory     bool
	translateDedupe     bool
	translateNoProgress bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate lines from a file, stdin or a directory tree",
	Long: `Translate text line by line. Every input line produces exactly one output
line. Input is read in caches of --cache-size lines, and each cache is
batched under the provider's request limits.

With a positional argument the text is translated as a single unit and
printed. With --glob every matching file under -i (default: working
directory) is translated into --out-dir, keeping relative paths.

Examples:
  aomame translate -a google --tlang fr -i notes.txt -o notes.fr.txt
  cat notes.txt | aomame translate -a microsoft --slang en --tlang de
  aomame translate -a systran --slang auto --tlang es --glob "docs/**/*.txt" --out-dir es
  aomame translate -a google --tlang ja "Good morning"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().StringVarP(&translateAPI, "api", "a", provider.ProviderGoogle,
		"provider: "+strings.Join(provider.Names(), ", "))
	translateCmd.Flags().StringVar(&translateKey, "key", "", "API key (default from the provider's api_key_env)")
	translateCmd.Flags().StringVarP(&translateInput, "input", "i", "", "input file, or root directory with --glob (default stdin)")
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "output file (default stdout)")
	translateCmd.Flags().StringVar(&translateSLang, "slang", "", `source language; empty lets the provider detect it, "auto" detects locally`)
	translateCmd.Flags().StringVar(&translateTLang, "tlang", "", "target language (required)")
	translateCmd.Flags().IntVar(&translateCacheSize, "cache-size", 0, "lines per input cache (default from config)")
	translateCmd.Flags().StringVar(&translateGlob, "glob", "", "translate every file matching this pattern")
	translateCmd.Flags().StringVar(&translateOutDir, "out-dir", "", "output directory for --glob")
	translateCmd.Flags().IntVar(&translateWorkers, "workers", 0, "batches in flight (default from config)")
	translateCmd.Flags().BoolVar(&translateMemory, "memory", false, "serve repeated lines from the translation memory")
	translateCmd.Flags().BoolVar(&translateDedupe, "dedupe", false, "translate repeated lines once per run")
	translateCmd.Flags().BoolVar(&translateNoProgress, "no-progress", false, "disable the progress bar")
	translateCmd.MarkFlagRequired("tlang")
}

// translateJob is one input/output pair of a translate run.
type translateJob struct {
	input  string // "" or "-" for stdin
	output string // "" or "-" for stdout
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()
	ctx := cmd.Context()

	tgt, err := normalizeLang(translateTLang)
	if err != nil {
		return err
	}
	autoSrc := strings.EqualFold(translateSLang, "auto")
	var src string
	if !autoSrc {
		if src, err = normalizeLang(translateSLang); err != nil {
			return err
		}
	}

	var tr port.Translator
	tr, err = newTranslator(translateAPI, translateKey)
	if err != nil {
		return err
	}
	// Resolve the segmenter before wrapping, the memory decorator hides
	// the provider's own boundary capability.
	seg := provider.SegmenterFor(tr)

	var mem memoryCounter
	if translateMemory || cfg.Memory.Enabled {
		bolt, err := openMemory(cfg.MemoryPath(GetRootDir()), log)
		if err != nil {
			return err
		}
		defer bolt.Close()
		tr = cache.NewMemoTranslator(tr, bolt, log)
		mem = bolt
	} else if translateDedupe {
		dedupe := memstore.NewMemory()
		tr = cache.NewMemoTranslator(tr, dedupe, log)
		mem = dedupe
	}

	workers := cfg.Translate.Workers
	if translateWorkers > 0 {
		workers = translateWorkers
	}
	cacheSize := cfg.Translate.CacheSize
	if translateCacheSize > 0 {
		cacheSize = translateCacheSize
	}
	retry := usecase.RetryPolicy{Attempts: cfg.Translate.RetryAttempts, Delay: cfg.Translate.RetryDelay}

	if len(args) == 1 {
		uc := usecase.NewTranslateUseCase(tr, seg, usecase.TranslateConfig{Retry: retry}, log)
		if autoSrc {
			src, _ = detectLocalLang(args[0])
		}
		out, err := uc.TranslateText(ctx, args[0], src, tgt)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		fmt.Println(out)
		return nil
	}

	jobs, err := translateJobs()
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	var progress usecase.ProgressFunc
	if !translateNoProgress {
		bar = newTranslateBar(countJobLines(jobs))
		progress = func(units int) { bar.Add(units) }
	}

	run := &translateRun{
		uc: usecase.NewTranslateUseCase(tr, seg, usecase.TranslateConfig{
			Retry:    retry,
			Workers:  workers,
			Progress: progress,
		}, log),
		src:       src,
		tgt:       tgt,
		autoSrc:   autoSrc,
		cacheSize: cacheSize,
		logger:    log,
	}

	start := time.Now()
	total := 0
	for _, job := range jobs {
		n, err := run.file(ctx, job)
		total += n
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	fields := []zap.Field{
		zap.String("provider", tr.Name()),
		zap.Int("files", len(jobs)),
		zap.Int("lines", total),
		zap.String("elapsed", formatDuration(time.Since(start))),
	}
	if mem != nil {
		if n, err := mem.Count(); err == nil {
			fields = append(fields, zap.Int("memory_entries", n))
		}
	}
	log.Info("Translation complete", fields...)
	return nil
}

// memoryCounter is satisfied by both translation memories.
type memoryCounter interface {
	Count() (int, error)
}

// translateJobs resolves the flags into input/output pairs.
func translateJobs() ([]translateJob, error) {
	if translateGlob == "" {
		if translateOutDir != "" {
			return nil, errors.New("--out-dir requires --glob")
		}
		return []translateJob{{input: translateInput, output: translateOutput}}, nil
	}
	if translateOutDir == "" {
		return nil, errors.New("--glob requires --out-dir")
	}
	if translateOutput != "" {
		return nil, errors.New("--output cannot be combined with --glob")
	}

	root := translateInput
	if root == "" {
		root = GetRootDir()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	outDir, err := filepath.Abs(translateOutDir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	var excludes []string
	if rel, err := filepath.Rel(absRoot, outDir); err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		excludes = append(excludes, filepath.ToSlash(rel)+"/**")
	}

	files, err := fs.NewWalker([]string{translateGlob}, excludes).Walk(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", absRoot, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match %q under %s", translateGlob, absRoot)
	}

	jobs := make([]translateJob, len(files))
	for i, f := range files {
		jobs[i] = translateJob{
			input:  f.Path,
			output: filepath.Join(outDir, filepath.FromSlash(f.RelPath)),
		}
	}
	return jobs, nil
}

func openMemory(path string, log *zap.Logger) (*store.BoltMemory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create memory directory: %w", err)
	}
	mem, err := store.NewBoltMemory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open translation memory: %w", err)
	}
	result, err := mem.Prepare()
	if err != nil {
		mem.Close()
		return nil, err
	}
	if result.NeedsRebuild || result.NeedsMigration {
		log.Info("Translation memory prepared", zap.String("reason", result.Reason), zap.String("path", path))
	}
	return mem, nil
}

// translateRun streams inputs through one configured use case.
type translateRun struct {
	uc        *usecase.TranslateUseCase
	src       string
	tgt       string
	autoSrc   bool
	cacheSize int
	logger    *zap.Logger
}

func (r *translateRun) file(ctx context.Context, job translateJob) (int, error) {
	var in io.Reader = os.Stdin
	if job.input != "" && job.input != "-" {
		f, err := os.Open(job.input)
		if err != nil {
			return 0, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if job.output != "" && job.output != "-" {
		if err := os.MkdirAll(filepath.Dir(job.output), 0755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(job.output)
		if err != nil {
			return 0, fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	r.logger.Debug("Translating", zap.String("input", job.input), zap.String("output", job.output))
	return r.stream(ctx, in, out)
}

// stream translates in cache by cache and writes one line per input line.
func (r *translateRun) stream(ctx context.Context, in io.Reader, out io.Writer) (int, error) {
	w := bufio.NewWriter(out)
	lines := 0
	for lineCache, err := range chunker.NewLineChunker(r.cacheSize).Chunks(in) {
		if err != nil {
			return lines, fmt.Errorf("failed to read input: %w", err)
		}

		src := r.src
		if r.autoSrc {
			var confidence float64
			src, confidence = detectLocalLang(strings.Join(lineCache, "\n"))
			r.logger.Debug("Detected source language", zap.String("lang", src), zap.Float64("confidence", confidence))
		}

		translated, err := r.uc.TranslateLines(ctx, lineCache, src, r.tgt)
		if err != nil {
			return lines, err
		}
		for _, line := range translated {
			w.WriteString(line)
			w.WriteByte('\n')
		}
		lines += len(translated)
	}
	return lines, w.Flush()
}

func newTranslateBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("lines"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetDescription("[cyan]Translating[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

// countJobLines returns the number of lines across file inputs, or -1 when
// any input is stdin and the total is unknown.
func countJobLines(jobs []translateJob) int {
	total := 0
	for _, job := range jobs {
		if job.input == "" || job.input == "-" {
			return -1
		}
		n, err := countLines(job.input)
		if err != nil {
			return -1
		}
		total += n
	}
	return total
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, 64*1024)
	lines := 0
	last := byte('\n')
	for {
		n, err := f.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if last != '\n' {
		lines++
	}
	return lines, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
