package floorplan

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ============================================================
// Floor Plan
// ============================================================

// Meta - собственный размер изображения плана. Координаты точек пишутся
// именно в этом пространстве, а не в экранном.
type Meta struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	ContentType string `json:"contentType"`
}

// DecodeMeta определяет формат и размер загруженного плана.
func DecodeMeta(data []byte, filename string) (Meta, error) {
	if len(data) == 0 {
		return Meta{}, fmt.Errorf("empty floor plan")
	}

	if isSVG(data, filename) {
		w, h, err := parseSVGSize(bytes.NewReader(data))
		if err != nil {
			return Meta{}, err
		}
		return Meta{Width: w, Height: h, Format: "svg", ContentType: "image/svg+xml"}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Meta{}, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Meta{}, fmt.Errorf("invalid image size %dx%d", cfg.Width, cfg.Height)
	}
	return Meta{Width: cfg.Width, Height: cfg.Height, Format: format, ContentType: "image/" + format}, nil
}

func isSVG(data []byte, filename string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".svg") {
		return true
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}

// ============================================================
// Preview
// ============================================================

// Preview уменьшает растровый план так, чтобы большая сторона не превышала
// maxSide, и кодирует его в PNG. SVG возвращается как есть.
func Preview(data []byte, meta Meta, maxSide int) ([]byte, string, error) {
	if meta.Format == "svg" {
		return data, meta.ContentType, nil
	}
	if maxSide <= 0 || (meta.Width <= maxSide && meta.Height <= maxSide) {
		return data, meta.ContentType, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	scale := float64(maxSide) / float64(max(meta.Width, meta.Height))
	w := max(1, int(float64(meta.Width)*scale))
	h := max(1, int(float64(meta.Height)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

// DataURL кодирует изображение для хранения внутри JSON сессии.
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
