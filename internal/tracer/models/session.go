package models

// ============================================================
// Session snapshot
// ============================================================

// Snapshot - неизменяемый срез состояния записи для сохранения и отдачи клиенту.
type Snapshot struct {
	Paths            []Path  `json:"paths"`
	CurrentPathID    int     `json:"currentPathId"`
	VideoTime        float64 `json:"videoTime"`
	ShouldTrackMouse bool    `json:"shouldTrackMouse"`
	IsDrawing        bool    `json:"isDrawing"`
	IsVideoPlaying   bool    `json:"isVideoPlaying"`
	IsJumping        bool    `json:"isJumping"`
	ImageWidth       int     `json:"imageWidth"`
	ImageHeight      int     `json:"imageHeight"`
}

// HasRecordedPoints - есть ли хотя бы одна точка в каком-либо пути.
func (s Snapshot) HasRecordedPoints() bool {
	return HasRecordedPoints(s.Paths)
}

func HasRecordedPoints(paths []Path) bool {
	for _, p := range paths {
		if len(p.Points) > 0 {
			return true
		}
	}
	return false
}

// SavedSession - формат, записываемый в хранилище.
type SavedSession struct {
	Paths          []Path  `json:"paths"`
	CurrentPathID  int     `json:"currentPathId"`
	VideoTime      float64 `json:"videoTime"`
	Config         Config  `json:"config"`
	ImageWidth     int     `json:"imageWidth"`
	ImageHeight    int     `json:"imageHeight"`
	Timestamp      int64   `json:"timestamp"` // unix ms
	FloorPlanImage string  `json:"floorPlanImage,omitempty"`
}
