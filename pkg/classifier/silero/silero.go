// Package silero implements a speech probability classifier backed by an
// exported Silero VAD ONNX model, run through ONNX Runtime.
//
// The ONNX Runtime shared library is loaded dynamically at session-creation
// time; the package compiles without it. The expected model contract is the
// export used by the diarization preprocessing service: a single "input"
// tensor of shape [1, frameSamples] float32 and a single probability output.
package silero

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/MrWong99/voicegate/pkg/classifier"
)

// EnvLibraryPath is the environment variable consulted for the ONNX Runtime
// shared library location when no explicit path is configured.
const EnvLibraryPath = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// ortInitOnce ensures the ONNX Runtime environment is initialized exactly
// once. ortInitErr is stored at package scope so subsequent NewSession calls
// surface the failure instead of proceeding with an uninitialized runtime.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// Engine creates Silero classifier sessions from a model file.
type Engine struct {
	modelPath   string
	libraryPath string
}

// Compile-time assertion that Engine satisfies classifier.Engine.
var _ classifier.Engine = (*Engine)(nil)

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithLibraryPath sets the path to the ONNX Runtime shared library
// (libonnxruntime.so / .dylib). When unset, the EnvLibraryPath environment
// variable is consulted; when that is also unset, the system default library
// search path is used.
func WithLibraryPath(path string) Option {
	return func(e *Engine) { e.libraryPath = path }
}

// New creates an Engine that loads the Silero ONNX model from modelPath.
// The model file is read per session; the runtime environment is shared.
func New(modelPath string, opts ...Option) (*Engine, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("silero: model path must not be empty")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("silero: model file: %w", err)
	}
	e := &Engine{modelPath: modelPath}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewSession initializes the ONNX Runtime (once per process), allocates the
// input/output tensors for the configured frame size, and opens an inference
// session on the model.
func (e *Engine) NewSession(cfg classifier.Config) (classifier.Session, error) {
	if cfg.FrameSamples <= 0 {
		return nil, fmt.Errorf("silero: frame size %d is invalid", cfg.FrameSamples)
	}

	ortInitOnce.Do(func() {
		libPath := e.libraryPath
		if libPath == "" {
			libPath = os.Getenv(EnvLibraryPath)
		}
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("silero: initialize ONNX runtime: %w", ortInitErr)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.FrameSamples)))
	if err != nil {
		return nil, fmt.Errorf("silero: create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("silero: create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		e.modelPath,
		[]string{"input"},
		[]string{"output"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		nil, // default session options
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("silero: create session: %w", err)
	}

	return &ortSession{
		cfg:          cfg,
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// ortSession holds a live ONNX session with its reused tensors.
type ortSession struct {
	cfg classifier.Config

	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32] // [1, frameSamples]
	outputTensor *ort.Tensor[float32] // [1, 1]
}

var _ classifier.Session = (*ortSession)(nil)

// Classify runs one inference on exactly one frame and returns the speech
// probability. The tensor buffers are reused between calls.
func (s *ortSession) Classify(frame []float32) (float64, error) {
	if err := classifier.CheckFrame(s.cfg, frame); err != nil {
		return 0, err
	}
	if s.session == nil {
		return 0, fmt.Errorf("silero: session is closed")
	}

	copy(s.inputTensor.GetData(), frame)
	if err := s.session.Run(); err != nil {
		return 0, fmt.Errorf("silero: inference: %w", err)
	}
	prob := float64(s.outputTensor.GetData()[0])
	if err := classifier.CheckProbability(prob); err != nil {
		return 0, fmt.Errorf("silero: model output %.6f: %w", prob, err)
	}
	return prob, nil
}

// Reset is a no-op for the exported model, which carries no recurrent state
// across calls in this contract.
func (s *ortSession) Reset() {}

// Close releases the ONNX session and tensors. Safe to call multiple times.
func (s *ortSession) Close() error {
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
		s.inputTensor = nil
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
		s.outputTensor = nil
	}
	return nil
}
