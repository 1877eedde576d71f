// Command voicegate is a batch tool that removes silence from audio files
// using a smoothed voice-activity detector and reports the resulting speech
// segments plus an optional spectrum profile for display.
//
// Usage:
//
//	voicegate [-config config.yaml] [-out dir] [-jobs n] input.wav...
//
// Each input produces <name>_gated.wav and <name>_gated.json next to the
// configured output directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/voicegate/internal/config"
	"github.com/MrWong99/voicegate/internal/observe"
	"github.com/MrWong99/voicegate/internal/wavefile"
	"github.com/MrWong99/voicegate/pkg/audio"
	"github.com/MrWong99/voicegate/pkg/classifier"
	"github.com/MrWong99/voicegate/pkg/classifier/energy"
	"github.com/MrWong99/voicegate/pkg/classifier/silero"
	"github.com/MrWong99/voicegate/pkg/spectrum"
	"github.com/MrWong99/voicegate/pkg/vad"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "path to the YAML configuration file (defaults apply when omitted)")
	outDir := flag.String("out", ".", "directory for gated audio and metadata")
	jobs := flag.Int("jobs", runtime.GOMAXPROCS(0), "number of files processed concurrently")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "voicegate: no input files; usage: voicegate [flags] input.wav...")
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "voicegate: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := observe.DefaultMetrics()
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	if addr := cfg.Metrics.ListenAddr; addr != "" {
		go serveMetrics(addr)
	}

	// ── Classifier engine + pipeline ──────────────────────────────────────────
	engine, err := buildEngine(cfg)
	if err != nil {
		slog.Error("failed to build classifier engine", "err", err)
		return 1
	}

	var opts []vad.PipelineOption
	if cfg.Audio.PadShortClips {
		opts = append(opts, vad.WithPadShortClips())
	}
	if cfg.Spectrum.Enabled {
		opts = append(opts, vad.WithSpectrum(cfg.SpectrumSettings()))
	}
	pipeline, err := vad.NewPipeline(engine, cfg.VADSettings(), opts...)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		return 1
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("failed to create output directory", "dir", *outDir, "err", err)
		return 1
	}

	slog.Info("voicegate starting",
		"inputs", flag.NArg(),
		"jobs", *jobs,
		"classifier", cfg.Classifier.Name,
		"sample_rate", cfg.Audio.SampleRate,
		"vad_enabled", cfg.VAD.Enabled,
	)

	// ── Batch processing ──────────────────────────────────────────────────────
	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*jobs)
	for _, input := range flag.Args() {
		input := input
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := processFile(gctx, cfg, pipeline, metrics, input, *outDir); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				failed.Add(1)
				slog.Error("processing failed", "input", input, "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("batch error", "err", err)
		return 1
	}
	if n := failed.Load(); n > 0 {
		slog.Warn("finished with failures", "failed", n, "total", flag.NArg())
		return 1
	}
	slog.Info("done", "processed", flag.NArg())
	return 0
}

// clipMetadata is the JSON sidecar written next to each gated file.
type clipMetadata struct {
	Input             string        `json:"input"`
	Output            string        `json:"output"`
	SampleRate        int           `json:"sample_rate"`
	OriginalDuration  float64       `json:"original_duration"`
	ProcessedDuration float64       `json:"processed_duration"`
	Gated             bool          `json:"gated"`
	NumSegments       int           `json:"num_segments"`
	Segments          []vad.Segment `json:"segments"`
	Spectrum          []float64     `json:"spectrum,omitempty"`
}

// processFile gates one input file and writes the output WAV plus metadata.
func processFile(ctx context.Context, cfg *config.Config, pipeline *vad.Pipeline, metrics *observe.Metrics, input, outDir string) error {
	start := time.Now()
	metrics.ActiveClips.Add(ctx, 1)
	defer metrics.ActiveClips.Add(ctx, -1)

	clip, err := readInput(input, cfg.Audio.SampleRate)
	if err != nil {
		metrics.RecordClip(ctx, observe.StatusError, time.Since(start), 0, 0)
		return err
	}
	originalRate := clip.SampleRate
	clip.Samples = audio.ResampleMono(clip.Samples, clip.SampleRate, cfg.Audio.SampleRate)
	clip.SampleRate = cfg.Audio.SampleRate

	var res *vad.Result
	if cfg.VAD.Enabled {
		res, err = pipeline.Process(ctx, clip)
		if err != nil {
			metrics.RecordClip(ctx, observe.StatusError, time.Since(start), 0, 0)
			return err
		}
	} else {
		res = &vad.Result{
			Clip:              clip,
			OriginalDuration:  clip.Duration(),
			ProcessedDuration: clip.Duration(),
		}
		if cfg.Spectrum.Enabled {
			res.Spectrum, err = spectrum.Summarize(clip.Samples, cfg.SpectrumSettings())
			if err != nil {
				metrics.RecordClip(ctx, observe.StatusError, time.Since(start), 0, 0)
				return err
			}
		}
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	wavPath := filepath.Join(outDir, base+"_gated.wav")
	jsonPath := filepath.Join(outDir, base+"_gated.json")

	if err := wavefile.Write(wavPath, res.Clip); err != nil {
		metrics.RecordClip(ctx, observe.StatusError, time.Since(start), res.FramesProcessed, 0)
		return err
	}

	meta := clipMetadata{
		Input:             input,
		Output:            wavPath,
		SampleRate:        res.Clip.SampleRate,
		OriginalDuration:  res.OriginalDuration.Seconds(),
		ProcessedDuration: res.ProcessedDuration.Seconds(),
		Gated:             res.Gated,
		NumSegments:       len(res.Segments),
		Segments:          res.Segments,
		Spectrum:          res.Spectrum,
	}
	if err := writeJSON(jsonPath, meta); err != nil {
		metrics.RecordClip(ctx, observe.StatusError, time.Since(start), res.FramesProcessed, len(res.Segments))
		return err
	}

	status := observe.StatusGated
	if !res.Gated {
		status = observe.StatusFallback
	}
	metrics.RecordClip(ctx, status, time.Since(start), res.FramesProcessed, len(res.Segments))

	slog.Info("clip processed",
		"input", input,
		"output", wavPath,
		"original_rate", originalRate,
		"gated", res.Gated,
		"segments", len(res.Segments),
		"duration", res.ProcessedDuration,
		"took", time.Since(start),
	)
	return nil
}

// readInput decodes a WAV container, or treats .pcm/.raw files as headerless
// s16le mono at the configured sample rate.
func readInput(path string, rawRate int) (audio.Clip, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcm", ".raw":
		b, err := os.ReadFile(path)
		if err != nil {
			return audio.Clip{}, err
		}
		return audio.Clip{Samples: audio.BytesToFloat32(b), SampleRate: rawRate}, nil
	default:
		return wavefile.Read(path)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %q: %w", path, err)
	}
	return f.Close()
}

// buildEngine instantiates the configured classifier engine.
func buildEngine(cfg *config.Config) (classifier.Engine, error) {
	switch cfg.Classifier.Name {
	case "", "energy":
		return &energy.Engine{
			NoiseFloorRMS: cfg.Classifier.NoiseFloorRMS,
			FullScaleRMS:  cfg.Classifier.FullScaleRMS,
		}, nil
	case "silero":
		var opts []silero.Option
		if cfg.Classifier.LibraryPath != "" {
			opts = append(opts, silero.WithLibraryPath(cfg.Classifier.LibraryPath))
		}
		return silero.New(cfg.Classifier.ModelPath, opts...)
	default:
		return nil, fmt.Errorf("unknown classifier %q (valid: %v)", cfg.Classifier.Name, config.ValidClassifierNames)
	}
}

// serveMetrics exposes the Prometheus /metrics endpoint. Runs until the
// process exits; errors are logged, not fatal.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Warn("metrics endpoint error", "err", err)
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
