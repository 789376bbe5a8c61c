package floorplan

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ============================================================
// XML Structures
// ============================================================

type svgRoot struct {
	XMLName xml.Name `xml:"svg"`
	Width   string   `xml:"width,attr"`
	Height  string   `xml:"height,attr"`
	ViewBox string   `xml:"viewBox,attr"`
}

// ============================================================
// SVG Parser
// ============================================================

// parseSVGSize определяет собственный размер SVG плана: атрибуты
// width/height в абсолютных единицах, иначе viewBox.
func parseSVGSize(r io.Reader) (int, int, error) {
	var svg svgRoot
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&svg); err != nil {
		return 0, 0, fmt.Errorf("decode svg: %w", err)
	}

	w, wok := parseLength(svg.Width)
	h, hok := parseLength(svg.Height)
	if wok && hok {
		return w, h, nil
	}

	vw, vh, ok := parseViewBox(svg.ViewBox)
	if !ok {
		return 0, 0, fmt.Errorf("svg has no usable width/height or viewBox")
	}
	// Одна из сторон задана явно - вторую берем по пропорции viewBox
	switch {
	case wok:
		return w, int(math.Round(float64(w) * vh / vw)), nil
	case hok:
		return int(math.Round(float64(h) * vw / vh)), h, nil
	}
	return int(math.Round(vw)), int(math.Round(vh)), nil
}

func parseLength(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	s = strings.TrimSuffix(s, "px")
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || val <= 0 {
		return 0, false
	}
	return int(math.Round(val)), true
}

func parseViewBox(s string) (float64, float64, bool) {
	s = strings.ReplaceAll(s, ",", " ")
	parts := strings.Fields(s)
	if len(parts) != 4 {
		return 0, 0, false
	}

	var nums [4]float64
	for i, part := range parts {
		val, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, 0, false
		}
		nums[i] = val
	}
	if nums[2] <= 0 || nums[3] <= 0 {
		return 0, 0, false
	}
	return nums[2], nums[3], true
}
