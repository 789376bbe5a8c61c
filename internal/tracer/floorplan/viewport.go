package floorplan

// ============================================================
// Viewport
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport - прямоугольник, в котором план отображен на поверхности рисования.
// Указатель вне него не записывается.
type Viewport struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

func (v Viewport) Contains(p Point) bool {
	if !v.Valid() {
		return false
	}
	return p.X >= v.Left && p.X <= v.Left+v.Width &&
		p.Y >= v.Top && p.Y <= v.Top+v.Height
}

// ToImage переводит точку поверхности рисования в пиксели изображения плана.
// Без известного размера изображения используется размер viewport.
func (v Viewport) ToImage(p Point, imageWidth, imageHeight int) Point {
	sx, sy := 1.0, 1.0
	if imageWidth > 0 && imageHeight > 0 {
		sx = float64(imageWidth) / v.Width
		sy = float64(imageHeight) / v.Height
	}
	return Point{
		X: (p.X - v.Left) * sx,
		Y: (p.Y - v.Top) * sy,
	}
}
