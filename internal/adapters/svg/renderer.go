// Package svg renders QR symbols as two-tone SVG markup.
package svg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/qrship/internal/domain"
	"github.com/bft-labs/qrship/internal/ports"
)

// Defaults for Renderer.
const (
	DefaultMinDimension = 200
	DefaultDarkColor    = "#000000"
	DefaultLightColor   = "#ffffff"
)

// Renderer draws every dark module as part of a single path over a light
// background rectangle. Modules are whole units so scanners see crisp edges.
type Renderer struct {
	MinDimension int
	DarkColor    string
	LightColor   string
}

// New returns a Renderer with the default colors and minimum dimension.
func New() *Renderer {
	return &Renderer{
		MinDimension: DefaultMinDimension,
		DarkColor:    DefaultDarkColor,
		LightColor:   DefaultLightColor,
	}
}

// ModuleSize returns the unit size of one module for a symbol of the given width.
func (r *Renderer) ModuleSize(width int) int {
	if width <= 0 {
		return 0
	}
	unit := (r.MinDimension + width - 1) / width
	if unit < 1 {
		unit = 1
	}
	return unit
}

// Render returns the SVG document for symbol.
func (r *Renderer) Render(symbol domain.Symbol) (string, error) {
	size := symbol.Size()
	if size == 0 {
		return "", fmt.Errorf("%w: empty symbol", domain.ErrRender)
	}
	for y, row := range symbol.Modules {
		if len(row) != size {
			return "", fmt.Errorf("%w: row %d has %d modules, want %d", domain.ErrRender, y, len(row), size)
		}
	}

	unit := r.ModuleSize(size)
	dim := strconv.Itoa(unit * size)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" standalone="yes"?>`)
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="` + dim + `" height="` + dim +
		`" viewBox="0 0 ` + dim + ` ` + dim + `" shape-rendering="crispEdges">`)
	b.WriteString(`<path fill="` + r.LightColor + `" d="M0 0h` + dim + `v` + dim + `H0z"/>`)
	b.WriteString(`<path fill="` + r.DarkColor + `" d="`)
	for y, row := range symbol.Modules {
		for x := 0; x < size; {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < size && row[x] {
				x++
			}
			// one rectangle per horizontal run of dark modules
			fmt.Fprintf(&b, "M%d %dh%dv%dH%dz", start*unit, y*unit, (x-start)*unit, unit, start*unit)
		}
	}
	b.WriteString(`"/></svg>`)
	return b.String(), nil
}

var _ ports.ImageRenderer = (*Renderer)(nil)
