package state

import (
	"path-tracer/internal/tracer/models"
)

// ============================================================
// Path Store
// ============================================================

func (s *State) CurrentPathID() int { return s.currentPathID }

// Paths возвращает глубокую копию всех путей.
func (s *State) Paths() []models.Path {
	out := make([]models.Path, len(s.paths))
	for i, p := range s.paths {
		out[i] = p.Clone()
	}
	return out
}

func (s *State) Path(pathID int) (models.Path, bool) {
	if p := s.find(pathID); p != nil {
		return p.Clone(), true
	}
	return models.Path{}, false
}

func (s *State) CurrentPath() (models.Path, bool) {
	return s.Path(s.currentPathID)
}

// LastPoint - последняя точка текущего пути.
func (s *State) LastPoint() (models.Point, bool) {
	p := s.find(s.currentPathID)
	if p == nil {
		return models.Point{}, false
	}
	return p.LastPoint()
}

// PointCount - число точек текущего пути.
func (s *State) PointCount() int {
	if p := s.find(s.currentPathID); p != nil {
		return len(p.Points)
	}
	return 0
}

func (s *State) HasRecordedPoints() bool {
	return models.HasRecordedPoints(s.paths)
}

func (s *State) find(pathID int) *models.Path {
	for i := range s.paths {
		if s.paths[i].PathID == pathID {
			return &s.paths[i]
		}
	}
	return nil
}

// CreatePath добавляет пустой путь и делает его текущим.
func (s *State) CreatePath(color string) int {
	if color == "" {
		color = DefaultColor
	}
	id := s.nextPathID
	s.nextPathID++
	s.paths = append(s.paths, newPath(id, color))
	s.currentPathID = id
	return id
}

// AppendPoint добавляет точку в текущий путь. Если запись выключена или
// текущего пути нет (гонка смены режима и событий указателя) - ничего не делает.
func (s *State) AppendPoint(pt models.Point) bool {
	if !s.shouldTrackMouse {
		return false
	}
	p := s.find(s.currentPathID)
	if p == nil {
		return false
	}
	pt.PathID = p.PathID
	p.Points = append(p.Points, pt)
	return true
}

// TruncateToTime удаляет все точки с time > maxTime. Возвращает число удаленных.
func (s *State) TruncateToTime(pathID int, maxTime float64) int {
	p := s.find(pathID)
	if p == nil {
		return 0
	}
	kept := p.Points[:0]
	for _, pt := range p.Points {
		if pt.Time <= maxTime {
			kept = append(kept, pt)
		}
	}
	removed := len(p.Points) - len(kept)
	p.Points = kept
	return removed
}

// TruncateToCount оставляет первые maxCount точек.
func (s *State) TruncateToCount(pathID, maxCount int) int {
	p := s.find(pathID)
	if p == nil {
		return 0
	}
	if maxCount < 0 {
		maxCount = 0
	}
	if maxCount >= len(p.Points) {
		return 0
	}
	removed := len(p.Points) - maxCount
	p.Points = p.Points[:maxCount]
	return removed
}

// AppendSyntheticRun добавляет count точек в позиции base со временем
// base.Time + i*step, i=1..count. Время считается умножением, без накопления
// ошибки от повторного сложения.
func (s *State) AppendSyntheticRun(pathID int, base models.Point, count int, step float64) int {
	p := s.find(pathID)
	if p == nil || count <= 0 {
		return 0
	}
	for i := 1; i <= count; i++ {
		p.Points = append(p.Points, models.Point{
			X:      base.X,
			Y:      base.Y,
			Time:   base.Time + float64(i)*step,
			PathID: p.PathID,
		})
	}
	return count
}

// Undo удаляет n последних точек текущего пути.
func (s *State) Undo(n int) int {
	return s.TruncateToCount(s.currentPathID, s.PointCount()-n)
}

func (s *State) SetVisibility(pathID int, visible bool) bool {
	p := s.find(pathID)
	if p == nil {
		return false
	}
	p.Visible = visible
	return true
}

func (s *State) SetColor(pathID int, color string) bool {
	p := s.find(pathID)
	if p == nil {
		return false
	}
	p.Color = color
	return true
}

func (s *State) Rename(pathID int, name string) bool {
	p := s.find(pathID)
	if p == nil {
		return false
	}
	p.Name = name
	return true
}

// Delete удаляет путь. Хранилище никогда не остается пустым: после удаления
// последнего пути создается новый с id 1 и цветом по умолчанию.
func (s *State) Delete(pathID int) bool {
	idx := -1
	for i := range s.paths {
		if s.paths[i].PathID == pathID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	s.paths = append(s.paths[:idx], s.paths[idx+1:]...)
	if len(s.paths) == 0 {
		s.resetPaths()
		return true
	}
	if s.currentPathID == pathID {
		s.currentPathID = s.paths[len(s.paths)-1].PathID
	}
	return true
}

// Restore заменяет пути восстановленными из сохраненной сессии.
func (s *State) Restore(paths []models.Path, currentPathID int) {
	if len(paths) == 0 {
		s.resetPaths()
		return
	}

	s.paths = make([]models.Path, len(paths))
	maxID := 0
	for i, p := range paths {
		cp := p.Clone()
		for j := range cp.Points {
			cp.Points[j].PathID = cp.PathID
		}
		s.paths[i] = cp
		if cp.PathID > maxID {
			maxID = cp.PathID
		}
	}
	s.nextPathID = maxID + 1

	if s.find(currentPathID) != nil {
		s.currentPathID = currentPathID
	} else {
		s.currentPathID = s.paths[len(s.paths)-1].PathID
	}
}
