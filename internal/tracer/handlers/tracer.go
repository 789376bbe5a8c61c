package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"path-tracer/internal/tracer/export"
	"path-tracer/internal/tracer/floorplan"
	"path-tracer/internal/tracer/models"
	"path-tracer/internal/tracer/recorder"
	"path-tracer/internal/tracer/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Tracer Handler
// ============================================================

type TracerHandler struct {
	registry *service.Registry
}

func NewTracerHandler(registry *service.Registry) *TracerHandler {
	return &TracerHandler{registry: registry}
}

type createRequest struct {
	ID string `json:"id"`
}

type frameRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type undoRequest struct {
	Count int `json:"count"`
}

type pathRequest struct {
	Color string `json:"color"`
}

type pathPatchRequest struct {
	Name    *string `json:"name"`
	Color   *string `json:"color"`
	Visible *bool   `json:"visible"`
}

// workspace находит пространство по :id; при ошибке ответ уже отправлен.
func (h *TracerHandler) workspace(c fiber.Ctx) (*service.Workspace, bool) {
	ws, err := h.registry.Get(c.Params("id"))
	if err != nil {
		c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "workspace not found"})
		return nil, false
	}
	return ws, true
}

// decode разбирает необязательное JSON-тело.
func decode(c fiber.Ctx, v any) bool {
	if len(c.Body()) == 0 {
		return true
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		return false
	}
	return true
}

// ============================================================
// Workspaces
// ============================================================

// CreateWorkspace заводит рабочее пространство и сообщает о сохраненной сессии.
func (h *TracerHandler) CreateWorkspace(c fiber.Ctx) error {
	var req createRequest
	if !decode(c, &req) {
		return nil
	}

	ws := h.registry.Create(req.ID)
	_, recoverable := ws.RecoverableSession(c.Context())

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":          ws.ID,
		"state":       ws.View(),
		"recoverable": recoverable,
	})
}

func (h *TracerHandler) GetWorkspace(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}
	return c.JSON(ws.View())
}

func (h *TracerHandler) DeleteWorkspace(c fiber.Ctx) error {
	if err := h.registry.Remove(c.Params("id")); err != nil {
		if errors.Is(err, service.ErrWorkspaceNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "workspace not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateConfig применяет настройки записи. Отсутствующие поля остаются прежними.
func (h *TracerHandler) UpdateConfig(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	view, err := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		cfg := rec.Config()
		if err := json.Unmarshal(c.Body(), &cfg); err != nil {
			return false, err
		}
		rec.UpdateConfig(cfg)
		return false, nil
	})
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	return c.JSON(view)
}

// ============================================================
// Floor plan & viewport
// ============================================================

// UploadFloorPlan принимает план (svg/png/jpeg). Все пути сбрасываются.
func (h *TracerHandler) UploadFloorPlan(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	view, err := ws.LoadFloorPlan(data, fileHeader.Filename)
	if err != nil {
		log.Printf("[TRACER] floor plan rejected: %v", err)
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(http.StatusCreated).JSON(view)
}

// GetFloorPlan отдает загруженный файл плана.
func (h *TracerHandler) GetFloorPlan(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	path, contentType, ok := ws.PlanFile()
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "floor plan not found"})
	}
	c.Set("Content-Type", contentType)
	return c.SendFile(path)
}

// SetViewport задает прямоугольник, в котором отрисован план.
func (h *TracerHandler) SetViewport(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	var req floorplan.Viewport
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}
	if !decode(c, &req) {
		return nil
	}
	if !req.Valid() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "viewport must have positive size"})
	}

	view, _ := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		rec.SetViewport(req)
		return false, nil
	})
	return c.JSON(view)
}

// ============================================================
// Recording
// ============================================================

// VideoEvent принимает событие видеоэлемента клиента.
func (h *TracerHandler) VideoEvent(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	var ev recorder.VideoEvent
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}
	if !decode(c, &ev) {
		return nil
	}

	view, err := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		err := rec.HandleVideoEvent(ev)
		return ev.Type == recorder.EventSeeked, err
	})
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "state": view})
	}
	return c.JSON(view)
}

// Toggle включает или выключает запись.
func (h *TracerHandler) Toggle(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	view, err := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		err := rec.ToggleDrawing(c.Context())
		return !rec.State().ShouldTrackMouse(), err
	})
	if err != nil {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error(), "state": view})
	}
	return c.JSON(view)
}

// Frame - кадр с позицией указателя.
func (h *TracerHandler) Frame(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	var req frameRequest
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}
	if !decode(c, &req) {
		return nil
	}

	recorded := false
	view, _ := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		recorded = rec.Tick(floorplan.Point{X: req.X, Y: req.Y})
		return recorded, nil
	})
	return c.JSON(fiber.Map{"recorded": recorded, "state": view})
}

func (h *TracerHandler) Rewind(c fiber.Ctx) error {
	return h.seek(c, (*recorder.Seeker).Rewind)
}

func (h *TracerHandler) FastForward(c fiber.Ctx) error {
	return h.seek(c, (*recorder.Seeker).FastForward)
}

func (h *TracerHandler) seek(c fiber.Ctx, op func(*recorder.Seeker) bool) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	applied := false
	view, _ := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		applied = op(rec.Seeker())
		return applied, nil
	})
	return c.JSON(fiber.Map{"applied": applied, "state": view})
}

// Undo удаляет последние точки текущего пути.
func (h *TracerHandler) Undo(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	req := undoRequest{Count: 1}
	if !decode(c, &req) {
		return nil
	}
	if req.Count <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "count must be positive"})
	}

	removed := 0
	view, _ := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		removed = rec.Undo(req.Count)
		return removed > 0, nil
	})
	return c.JSON(fiber.Map{"removed": removed, "state": view})
}

// ============================================================
// Paths
// ============================================================

func (h *TracerHandler) ListPaths(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}
	return c.JSON(fiber.Map{"paths": ws.Paths()})
}

// CreatePath начинает новый путь и делает его текущим.
func (h *TracerHandler) CreatePath(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	var req pathRequest
	if !decode(c, &req) {
		return nil
	}

	pathID := 0
	view, _ := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		pathID = rec.NewPath(req.Color)
		return false, nil
	})
	return c.Status(http.StatusCreated).JSON(fiber.Map{"pathId": pathID, "state": view})
}

func (h *TracerHandler) UpdatePath(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	pathID, err := strconv.Atoi(c.Params("pathId"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid path id"})
	}

	var req pathPatchRequest
	if !decode(c, &req) {
		return nil
	}

	found := false
	view, _ := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		st := rec.State()
		_, found = st.Path(pathID)
		if !found {
			return false, nil
		}
		if req.Name != nil {
			st.Rename(pathID, *req.Name)
		}
		if req.Color != nil {
			st.SetColor(pathID, *req.Color)
		}
		if req.Visible != nil {
			st.SetVisibility(pathID, *req.Visible)
		}
		return true, nil
	})
	if !found {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "path not found"})
	}
	return c.JSON(view)
}

// ExportSVG отдает пути слоем SVG в координатах плана.
func (h *TracerHandler) ExportSVG(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	snap := ws.Snapshot()
	renderer := export.NewRenderer()
	renderer.ShowHidden = c.Query("hidden") == "true"

	svg, err := renderer.Render(snap.Paths, snap.ImageWidth, snap.ImageHeight)
	if err != nil {
		log.Printf("[EXPORT] Render error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

func (h *TracerHandler) DeletePath(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	pathID, err := strconv.Atoi(c.Params("pathId"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid path id"})
	}

	deleted := false
	view, _ := ws.Apply(func(rec *recorder.Recorder) (bool, error) {
		deleted = rec.DeletePath(pathID)
		return deleted, nil
	})
	if !deleted {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "path not found"})
	}
	return c.JSON(view)
}

// ============================================================
// Session
// ============================================================

func (h *TracerHandler) SaveSession(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}
	return c.JSON(fiber.Map{"saved": ws.SaveSession(c.Context())})
}

// RecoverSession сообщает, есть ли сессия для восстановления, без применения.
func (h *TracerHandler) RecoverSession(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	saved, ok := ws.RecoverableSession(c.Context())
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "no recoverable session"})
	}
	return c.JSON(recoverPayload(saved))
}

func recoverPayload(saved *models.SavedSession) fiber.Map {
	points := 0
	for _, p := range saved.Paths {
		points += len(p.Points)
	}
	return fiber.Map{
		"timestamp":     saved.Timestamp,
		"paths":         len(saved.Paths),
		"points":        points,
		"videoTime":     saved.VideoTime,
		"hasFloorPlan":  saved.FloorPlanImage != "",
		"currentPathId": saved.CurrentPathID,
	}
}

func (h *TracerHandler) RestoreSession(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}

	view, ok := ws.RestoreSession(c.Context())
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "no recoverable session"})
	}
	return c.JSON(view)
}

func (h *TracerHandler) ClearSession(c fiber.Ctx) error {
	ws, ok := h.workspace(c)
	if !ok {
		return nil
	}
	ws.ClearSession(c.Context())
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Routes
// ============================================================

// Register подключает маршруты трекера к приложению.
func (h *TracerHandler) Register(app *fiber.App) {
	ws := app.Group("/workspaces")

	ws.Post("/", h.CreateWorkspace)
	ws.Get("/:id", h.GetWorkspace)
	ws.Delete("/:id", h.DeleteWorkspace)
	ws.Put("/:id/config", h.UpdateConfig)

	ws.Post("/:id/floorplan", h.UploadFloorPlan)
	ws.Get("/:id/floorplan", h.GetFloorPlan)
	ws.Put("/:id/viewport", h.SetViewport)

	ws.Post("/:id/video", h.VideoEvent)
	ws.Post("/:id/toggle", h.Toggle)
	ws.Post("/:id/frames", h.Frame)
	ws.Post("/:id/rewind", h.Rewind)
	ws.Post("/:id/forward", h.FastForward)
	ws.Post("/:id/undo", h.Undo)

	ws.Get("/:id/paths", h.ListPaths)
	ws.Post("/:id/paths", h.CreatePath)
	ws.Patch("/:id/paths/:pathId", h.UpdatePath)
	ws.Delete("/:id/paths/:pathId", h.DeletePath)
	ws.Get("/:id/export/svg", h.ExportSVG)

	ws.Post("/:id/session/save", h.SaveSession)
	ws.Get("/:id/session/recover", h.RecoverSession)
	ws.Post("/:id/session/restore", h.RestoreSession)
	ws.Delete("/:id/session", h.ClearSession)
}
