package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"path-tracer/internal/tracer/models"
)

// ============================================================
// Renderer
// ============================================================

type Renderer struct {
	StrokeWidth float64
	// ShowHidden рисует и скрытые пути (для полного экспорта)
	ShowHidden bool
}

func NewRenderer() *Renderer {
	return &Renderer{StrokeWidth: 3}
}

// Render собирает SVG-слой с путями поверх плана размера width x height.
// Без известного размера плана холст охватывает все точки.
func (r *Renderer) Render(paths []models.Path, width, height int) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("no paths to render")
	}

	w, h := float64(width), float64(height)
	if width <= 0 || height <= 0 {
		w, h = r.bounds(paths)
	}

	var elements []string
	for _, p := range paths {
		if !p.Visible && !r.ShowHidden {
			continue
		}
		elements = append(elements, r.renderPath(p)...)
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(w), formatFloat(h), formatFloat(w), formatFloat(h)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

func (r *Renderer) bounds(paths []models.Path) (float64, float64) {
	maxX, maxY := 0.0, 0.0
	for _, p := range paths {
		for _, pt := range p.Points {
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	if maxX <= 0 {
		maxX = 1000
	}
	if maxY <= 0 {
		maxY = 1000
	}
	return maxX, maxY
}

// ============================================================
// Element renderers
// ============================================================

// renderPath - полилиния пути и маркеры начала/конца. Пустой путь не рисуется.
func (r *Renderer) renderPath(p models.Path) []string {
	if len(p.Points) == 0 {
		return nil
	}

	color := p.Color
	if color == "" {
		color = "#000"
	}
	id := fmt.Sprintf("path-%d", p.PathID)

	var out []string
	if len(p.Points) > 1 {
		coords := make([]string, 0, len(p.Points))
		for _, pt := range p.Points {
			coords = append(coords, formatPoint(pt))
		}
		out = append(out, fmt.Sprintf(`<polyline id="%s" points="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linejoin="round">%s</polyline>`,
			id, strings.Join(coords, " "), escape(color), formatFloat(r.StrokeWidth), title(p)))
	}

	first := p.Points[0]
	last := p.Points[len(p.Points)-1]
	out = append(out, fmt.Sprintf(`<circle id="%s-start" cx="%s" cy="%s" r="%s" fill="%s" />`,
		id, formatFloat(first.X), formatFloat(first.Y), formatFloat(r.StrokeWidth*1.5), escape(color)))
	if len(p.Points) > 1 {
		out = append(out, fmt.Sprintf(`<circle id="%s-end" cx="%s" cy="%s" r="%s" fill="none" stroke="%s" />`,
			id, formatFloat(last.X), formatFloat(last.Y), formatFloat(r.StrokeWidth*1.5), escape(color)))
	}
	return out
}

func title(p models.Path) string {
	if p.Name == "" {
		return ""
	}
	return "<title>" + escape(p.Name) + "</title>"
}

// ============================================================
// Formatting helpers
// ============================================================

var xmlEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;", `'`, "&apos;")

func escape(s string) string {
	return xmlEscaper.Replace(s)
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoint(p models.Point) string {
	return formatFloat(p.X) + "," + formatFloat(p.Y)
}
