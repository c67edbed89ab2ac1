package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer/shader"
)

var (
	// ErrUnknownProgram is returned when a pass selects a program the library does not hold.
	ErrUnknownProgram = errors.New("unknown shading program")
	// ErrProgramInputs is returned when a pass binds more textures than its program declares.
	ErrProgramInputs = errors.New("program declares too few texture inputs")
)

// ProgramLibrary maps the program selectors recorded on graph passes to shading programs.
type ProgramLibrary interface {
	// Register stores a shader under a program selector, replacing any previous one.
	//
	// Parameters:
	//   - program: the selector recorded as render_graph.Pass.Program
	//   - s: the shading program
	//
	// Returns:
	//   - error: an error if s is nil
	Register(program uint32, s shader.Shader) error

	// RegisterSource pre-processes WGSL source and registers the resulting shader.
	//
	// Parameters:
	//   - program: the selector recorded as render_graph.Pass.Program
	//   - key: the shader key
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - error: an error if the source is invalid
	RegisterSource(program uint32, key, source string) error

	// RegisterPath reads WGSL source from a file and registers the resulting shader.
	//
	// Parameters:
	//   - program: the selector recorded as render_graph.Pass.Program
	//   - key: the shader key
	//   - path: the kernel file
	//
	// Returns:
	//   - error: an error if the file cannot be read or the source is invalid
	RegisterPath(program uint32, key, path string) error

	// Program returns the shader registered under a selector.
	//
	// Parameters:
	//   - program: the selector
	//
	// Returns:
	//   - shader.Shader: the shader, nil if none
	//   - bool: true if the selector is registered
	Program(program uint32) (shader.Shader, bool)

	// Len returns the number of registered programs.
	//
	// Returns:
	//   - int: the program count
	Len() int
}

type programLibrary struct {
	mu       *sync.Mutex
	pp       shader.PreProcessor
	programs map[uint32]shader.Shader
}

var _ ProgramLibrary = &programLibrary{}

// NewProgramLibrary creates an empty ProgramLibrary.
//
// Parameters:
//   - pp: the pre-processor used by RegisterSource and RegisterPath, nil for the default
//
// Returns:
//   - ProgramLibrary: the new library
func NewProgramLibrary(pp shader.PreProcessor) ProgramLibrary {
	if pp == nil {
		pp = shader.NewPreProcessor()
	}
	return &programLibrary{
		mu:       &sync.Mutex{},
		pp:       pp,
		programs: make(map[uint32]shader.Shader),
	}
}

func (l *programLibrary) Register(program uint32, s shader.Shader) error {
	if s == nil {
		return fmt.Errorf("program %d: nil shader", program)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs[program] = s
	return nil
}

func (l *programLibrary) RegisterSource(program uint32, key, source string) error {
	s, err := shader.NewShader(key, source, l.pp)
	if err != nil {
		return fmt.Errorf("program %d: %w", program, err)
	}
	return l.Register(program, s)
}

func (l *programLibrary) RegisterPath(program uint32, key, path string) error {
	s, err := shader.NewShaderFromPath(key, path, l.pp)
	if err != nil {
		return fmt.Errorf("program %d: %w", program, err)
	}
	return l.Register(program, s)
}

func (l *programLibrary) Program(program uint32) (shader.Shader, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.programs[program]
	return s, ok
}

func (l *programLibrary) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.programs)
}

// resolveProgram returns the program for a pass, checking that it can sample all of the pass's inputs.
func resolveProgram(l ProgramLibrary, program uint32, inputs int) (shader.Shader, error) {
	s, ok := l.Program(program)
	if !ok {
		return nil, fmt.Errorf("program %d: %w", program, ErrUnknownProgram)
	}
	if s.TextureBindings() < inputs {
		return nil, fmt.Errorf("program %d (%s) declares %d textures, pass binds %d: %w",
			program, s.Key(), s.TextureBindings(), inputs, ErrProgramInputs)
	}
	return s, nil
}
