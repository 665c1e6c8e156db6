package goocio

import (
	"fmt"
	"strings"
)

// GpuLanguage selects the shading dialect emitted by the code generators.
type GpuLanguage int

const (
	GpuLanguageGLSL12 GpuLanguage = iota
	GpuLanguageGLSL13
)

func (l GpuLanguage) String() string {
	switch l {
	case GpuLanguageGLSL12:
		return "glsl_1.2"
	case GpuLanguageGLSL13:
		return "glsl_1.3"
	}
	return fmt.Sprintf("GpuLanguage(%d)", int(l))
}

// GpuShaderText accumulates shader source with indentation tracking. Each
// NewLine call emits one indented line; numeric helpers format constants the
// way the selected dialect expects them.
type GpuShaderText struct {
	lang   GpuLanguage
	sb     strings.Builder
	indent int
}

func NewGpuShaderText(lang GpuLanguage) *GpuShaderText {
	return &GpuShaderText{lang: lang}
}

func (ss *GpuShaderText) Indent() { ss.indent++ }
func (ss *GpuShaderText) Dedent() {
	if ss.indent > 0 {
		ss.indent--
	}
}

// NewLine appends one line at the current indentation. An empty format emits
// a blank line without indentation.
func (ss *GpuShaderText) NewLine(format string, args ...any) {
	if format == "" {
		ss.sb.WriteByte('\n')
		return
	}
	ss.sb.WriteString(strings.Repeat("  ", ss.indent))
	fmt.Fprintf(&ss.sb, format, args...)
	ss.sb.WriteByte('\n')
}

func (ss *GpuShaderText) String() string { return ss.sb.String() }

// FloatConst renders a float literal with an explicit decimal point so the
// shader compiler never sees an integer where a float is meant.
func (ss *GpuShaderText) FloatConst(v float64) string {
	s := fmt.Sprintf("%.7g", v)
	if !strings.ContainsAny(s, ".einf") {
		s += "."
	}
	return s
}

func (ss *GpuShaderText) Vec3fKeyword() string { return "vec3" }
func (ss *GpuShaderText) Vec4fKeyword() string { return "vec4" }

func (ss *GpuShaderText) Vec3fConst(x, y, z float64) string {
	return fmt.Sprintf("%s(%s, %s, %s)", ss.Vec3fKeyword(),
		ss.FloatConst(x), ss.FloatConst(y), ss.FloatConst(z))
}

func (ss *GpuShaderText) Vec4fConst(x, y, z, w float64) string {
	return fmt.Sprintf("%s(%s, %s, %s, %s)", ss.Vec4fKeyword(),
		ss.FloatConst(x), ss.FloatConst(y), ss.FloatConst(z), ss.FloatConst(w))
}

// Dot4 renders a four-term dot product of the named pixel with a row of
// coefficients.
func (ss *GpuShaderText) Dot4(pix string, a, b, c, d float64) string {
	return fmt.Sprintf("dot(%s, %s)", pix, ss.Vec4fConst(a, b, c, d))
}

// Tex1DFunc names the 1D texture sampling function of the dialect.
func (ss *GpuShaderText) Tex1DFunc() string {
	if ss.lang == GpuLanguageGLSL13 {
		return "texture"
	}
	return "texture1D"
}

// Tex3DFunc names the 3D texture sampling function of the dialect.
func (ss *GpuShaderText) Tex3DFunc() string {
	if ss.lang == GpuLanguageGLSL13 {
		return "texture"
	}
	return "texture3D"
}

// Sampler1DDecl renders a uniform declaration for a 1D texture.
func (ss *GpuShaderText) Sampler1DDecl(name string) string {
	return fmt.Sprintf("uniform sampler1D %s;", name)
}

// Sampler3DDecl renders a uniform declaration for a 3D texture.
func (ss *GpuShaderText) Sampler3DDecl(name string) string {
	return fmt.Sprintf("uniform sampler3D %s;", name)
}
