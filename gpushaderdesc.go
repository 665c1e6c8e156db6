package goocio

import (
	"fmt"
	"strings"
)

// GpuTexture is a lookup texture registered by the code generators. The host
// application uploads Values to the GPU under SamplerName before using the
// generated program.
type GpuTexture struct {
	SamplerName string
	// Length is the entry count for a 1D texture and the edge length for a
	// 3D texture.
	Length int
	Dim    int // 1 or 3
	Values []float32
}

// GpuShaderDesc collects the pieces of a generated shader program: resource
// declarations, helper functions, the processing function body, and the
// textures the host must bind. A legacy description models a constrained
// target that owns exactly one 3D lookup texture.
type GpuShaderDesc struct {
	lang           GpuLanguage
	functionName   string
	pixelName      string
	resourcePrefix string

	legacy  bool
	edgeLen int

	declarations strings.Builder
	helpers      strings.Builder
	functionBody strings.Builder
	declared     map[string]bool

	textures []GpuTexture

	shaderText string
	cacheID    string
}

// NewGpuShaderDesc returns a description for a full-featured target.
func NewGpuShaderDesc(lang GpuLanguage) *GpuShaderDesc {
	return &GpuShaderDesc{
		lang:           lang,
		functionName:   "OCIODisplay",
		pixelName:      "outColor",
		resourcePrefix: "ocio",
		declared:       map[string]bool{},
	}
}

// NewLegacyGpuShaderDesc returns a description for a legacy target whose
// single 3D lookup texture has the given edge length.
func NewLegacyGpuShaderDesc(lang GpuLanguage, edgeLen int) *GpuShaderDesc {
	d := NewGpuShaderDesc(lang)
	d.legacy = true
	d.edgeLen = edgeLen
	return d
}

func (d *GpuShaderDesc) GetLanguage() GpuLanguage { return d.lang }
func (d *GpuShaderDesc) GetFunctionName() string  { return d.functionName }
func (d *GpuShaderDesc) GetPixelName() string     { return d.pixelName }
func (d *GpuShaderDesc) IsLegacy() bool           { return d.legacy }
func (d *GpuShaderDesc) GetEdgeLen() int          { return d.edgeLen }

func (d *GpuShaderDesc) SetFunctionName(name string) { d.functionName = name }
func (d *GpuShaderDesc) SetPixelName(name string)    { d.pixelName = name }
func (d *GpuShaderDesc) SetResourcePrefix(p string)  { d.resourcePrefix = p }

// GetTextures lists the textures registered so far.
func (d *GpuShaderDesc) GetTextures() []GpuTexture { return d.textures }

// AddTexture1D registers a 1D lookup texture and returns its sampler name.
func (d *GpuShaderDesc) AddTexture1D(length int, values []float32) (string, error) {
	if d.legacy {
		return "", throwf("the legacy shader description only supports the 3D LUT texture")
	}
	name := fmt.Sprintf("%s_lut1d_%d", d.resourcePrefix, len(d.textures))
	d.addDeclaration((&GpuShaderText{lang: d.lang}).Sampler1DDecl(name))
	d.textures = append(d.textures, GpuTexture{
		SamplerName: name,
		Length:      length,
		Dim:         1,
		Values:      values,
	})
	return name, nil
}

// AddTexture3D registers a 3D lookup texture and returns its sampler name.
// A legacy description accepts exactly one, with the configured edge length.
func (d *GpuShaderDesc) AddTexture3D(edgeLen int, values []float32) (string, error) {
	if d.legacy {
		if len(d.textures) > 0 {
			return "", throwf("the legacy shader description already has its 3D LUT texture")
		}
		if edgeLen != d.edgeLen {
			return "", throwf("3D LUT edge length %d does not match the legacy target %d",
				edgeLen, d.edgeLen)
		}
	}
	name := fmt.Sprintf("%s_lut3d_%d", d.resourcePrefix, len(d.textures))
	d.addDeclaration((&GpuShaderText{lang: d.lang}).Sampler3DDecl(name))
	d.textures = append(d.textures, GpuTexture{
		SamplerName: name,
		Length:      edgeLen,
		Dim:         3,
		Values:      values,
	})
	return name, nil
}

// addDeclaration records a resource declaration once, no matter how many
// generators ask for it.
func (d *GpuShaderDesc) addDeclaration(decl string) {
	if d.declared[decl] {
		return
	}
	d.declared[decl] = true
	d.declarations.WriteString(decl)
	d.declarations.WriteByte('\n')
}

// AddToDeclareShaderCode appends resource declarations, deduplicated on the
// full text.
func (d *GpuShaderDesc) AddToDeclareShaderCode(code string) {
	d.addDeclaration(strings.TrimRight(code, "\n"))
}

// AddToHelperShaderCode appends helper functions emitted above the main
// processing function.
func (d *GpuShaderDesc) AddToHelperShaderCode(code string) {
	d.helpers.WriteString(code)
}

// AddToFunctionShaderCode appends statements to the processing function body.
func (d *GpuShaderDesc) AddToFunctionShaderCode(code string) {
	d.functionBody.WriteString(code)
}

// Finalize assembles the complete shader text and fixes the cache identity.
// Calling it again after more code was added rebuilds both.
func (d *GpuShaderDesc) Finalize() {
	var sb strings.Builder
	if d.declarations.Len() > 0 {
		sb.WriteString(d.declarations.String())
		sb.WriteByte('\n')
	}
	if d.helpers.Len() > 0 {
		sb.WriteString(d.helpers.String())
		sb.WriteByte('\n')
	}
	sb.WriteString(d.functionBody.String())
	d.shaderText = sb.String()
	d.cacheID = fmt.Sprintf("<GpuShaderDesc %s fn=%s pix=%s legacy=%t len=%d>",
		d.lang, d.functionName, d.pixelName, d.legacy, len(d.shaderText))
}

// GetShaderText returns the assembled program; Finalize must run first.
func (d *GpuShaderDesc) GetShaderText() string { return d.shaderText }

// GetCacheID returns the identity fixed by Finalize.
func (d *GpuShaderDesc) GetCacheID() string { return d.cacheID }
