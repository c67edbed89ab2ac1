package bokeh

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// ProgramRegistry stores WGSL kernels under the program selectors recorded on graph passes.
// renderer.ProgramLibrary satisfies it.
type ProgramRegistry interface {
	RegisterPath(program uint32, key, path string) error
}

// FileName returns the kernel file name for the variant, e.g. "circular_horizontal_mrt.wgsl".
func (p ShaderPass) FileName() string {
	var b strings.Builder
	name := p.String()
	for i, r := range name {
		if unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(rune(name[i-1])) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	b.WriteString(".wgsl")
	return b.String()
}

// LoadPrograms registers one kernel per ShaderPass from dir, reading the file named by FileName.
//
// Parameters:
//   - reg: the registry to fill
//   - dir: the directory holding the kernels
//
// Returns:
//   - error: an error if a kernel is missing or fails to register
func LoadPrograms(reg ProgramRegistry, dir string) error {
	for i := range ShaderPassCount {
		p := ShaderPass(i)
		path := filepath.Join(dir, p.FileName())
		if err := reg.RegisterPath(uint32(p), "bokeh/"+p.String(), path); err != nil {
			return fmt.Errorf("kernel %s: %w", p, err)
		}
	}
	return nil
}
