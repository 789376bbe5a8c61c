package recorder

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"path-tracer/internal/tracer/floorplan"
	"path-tracer/internal/tracer/models"
	"path-tracer/internal/tracer/sampler"
	"path-tracer/internal/tracer/state"
)

type fakeVideo struct {
	current  float64
	duration float64
	playErr  error
	paused   bool
	plays    int
	seeks    []float64
}

func newFakeVideo(duration float64) *fakeVideo {
	return &fakeVideo{duration: duration, paused: true}
}

func (v *fakeVideo) CurrentTime() float64 { return v.current }
func (v *fakeVideo) Duration() float64 { return v.duration }
func (v *fakeVideo) Seek(t float64) {
	v.current = t
	v.seeks = append(v.seeks, t)
}
func (v *fakeVideo) Play(context.Context) error {
	v.plays++
	if v.playErr != nil {
		return v.playErr
	}
	v.paused = false
	return nil
}
func (v *fakeVideo) Pause() { v.paused = true }

var testViewport = floorplan.Viewport{Left: 0, Top: 0, Width: 100, Height: 100}

func transcriptionRecorder(t *testing.T, video Video) *Recorder {
	t.Helper()
	cfg := models.DefaultConfig()
	cfg.PollingRate = 500
	cfg.JumpSeconds = 5
	rec := New(state.New(), cfg, video)
	rec.SetViewport(testViewport)
	return rec
}

func TestToggleDrawing_Transcription(t *testing.T) {
	video := newFakeVideo(60)
	rec := transcriptionRecorder(t, video)
	st := rec.State()

	if err := rec.ToggleDrawing(context.Background()); err != nil {
		t.Fatalf("Failed to start drawing: %v", err)
	}
	if !st.ShouldTrackMouse() || !st.IsDrawing() || !st.IsVideoPlaying() {
		t.Errorf("Expected all flags on, got %+v", st.Snapshot())
	}
	if video.paused {
		t.Error("Expected video to play")
	}

	if err := rec.ToggleDrawing(context.Background()); err != nil {
		t.Fatalf("Failed to stop drawing: %v", err)
	}
	if st.ShouldTrackMouse() || st.IsDrawing() || st.IsVideoPlaying() {
		t.Errorf("Expected all flags off, got %+v", st.Snapshot())
	}
	if !video.paused {
		t.Error("Expected video to be paused")
	}
}

func TestToggleDrawing_PlayRejectedRollsBack(t *testing.T) {
	video := newFakeVideo(60)
	video.playErr = ErrPlayRejected
	rec := transcriptionRecorder(t, video)

	err := rec.ToggleDrawing(context.Background())
	if !errors.Is(err, ErrPlayRejected) {
		t.Fatalf("Expected ErrPlayRejected, got %v", err)
	}
	snap := rec.State().Snapshot()
	if snap.ShouldTrackMouse || snap.IsDrawing || snap.IsVideoPlaying {
		t.Errorf("Expected rollback to idle, got %+v", snap)
	}
}

func TestToggleDrawing_NoVideo(t *testing.T) {
	rec := transcriptionRecorder(t, nil)
	if err := rec.ToggleDrawing(context.Background()); !errors.Is(err, ErrVideoNotReady) {
		t.Errorf("Expected ErrVideoNotReady, got %v", err)
	}
	if rec.State().ShouldTrackMouse() {
		t.Error("Expected tracking to stay off")
	}
}

func TestVideoEvents_PauseForcesIdle(t *testing.T) {
	for _, event := range []string{EventPause, EventEnded} {
		t.Run(event, func(t *testing.T) {
			rec := transcriptionRecorder(t, newFakeVideo(60))
			rec.ToggleDrawing(context.Background())

			if err := rec.HandleVideoEvent(VideoEvent{Type: event, CurrentTime: 3}); err != nil {
				t.Fatalf("Failed to handle event: %v", err)
			}
			snap := rec.State().Snapshot()
			if snap.ShouldTrackMouse || snap.IsDrawing || snap.IsVideoPlaying {
				t.Errorf("Expected idle after %s, got %+v", event, snap)
			}
		})
	}
}

func TestVideoEvents_Unknown(t *testing.T) {
	rec := transcriptionRecorder(t, newFakeVideo(60))
	if err := rec.HandleVideoEvent(VideoEvent{Type: "volumechange"}); err == nil {
		t.Error("Expected error for unknown event")
	}
}

func TestTick_RecordsVideoTimeInImageSpace(t *testing.T) {
	video := newFakeVideo(60)
	rec := transcriptionRecorder(t, video)
	rec.State().SetImageSize(200, 400)
	rec.ToggleDrawing(context.Background())

	video.current = 1.5
	if !rec.Tick(floorplan.Point{X: 50, Y: 25}) {
		t.Fatal("Expected point to be recorded")
	}

	pt, _ := rec.State().LastPoint()
	if pt.X != 100 || pt.Y != 100 || pt.Time != 1.5 {
		t.Errorf("Unexpected point %+v", pt)
	}

	video.current = 1.75
	if rec.Tick(floorplan.Point{X: 50, Y: 25}) {
		t.Error("Expected sample inside polling interval to be rejected")
	}

	video.current = 3
	if rec.Tick(floorplan.Point{X: 150, Y: 25}) {
		t.Error("Expected pointer outside region to be ignored")
	}
	if rec.State().PointCount() != 1 {
		t.Errorf("Expected 1 point, got %d", rec.State().PointCount())
	}
}

func TestTick_IgnoredWhenNotTracking(t *testing.T) {
	rec := transcriptionRecorder(t, newFakeVideo(60))
	if rec.Tick(floorplan.Point{X: 10, Y: 10}) {
		t.Error("Expected no point while not tracking")
	}
}

func recordAt(t *testing.T, rec *Recorder, video *fakeVideo, times ...float64) {
	t.Helper()
	for _, tm := range times {
		video.current = tm
		if !rec.Tick(floorplan.Point{X: 10, Y: 20}) {
			t.Fatalf("Expected point at %v", tm)
		}
	}
}

func TestFastForward_SynthesizesPoints(t *testing.T) {
	video := newFakeVideo(60)
	rec := transcriptionRecorder(t, video)
	rec.ToggleDrawing(context.Background())
	recordAt(t, rec, video, 9, 10)

	if !rec.Seeker().FastForward() {
		t.Fatal("Expected fast-forward to run")
	}
	if video.current != 15 || rec.State().VideoTime() != 15 {
		t.Errorf("Expected video at 15, got %v / %v", video.current, rec.State().VideoTime())
	}
	if video.paused {
		t.Error("Fast-forward must not pause playback")
	}

	path, _ := rec.State().CurrentPath()
	synthetic := path.Points[2:]
	if len(synthetic) != 10 {
		t.Fatalf("Expected 10 synthetic points, got %d", len(synthetic))
	}
	for i, pt := range synthetic {
		want := 10 + float64(i+1)*0.5
		if pt.Time != want {
			t.Errorf("Synthetic %d: expected %v, got %v", i, want, pt.Time)
		}
		if pt.X != 10 || pt.Y != 20 {
			t.Errorf("Synthetic %d moved: %+v", i, pt)
		}
	}
}

func TestFastForward_ClampsToDuration(t *testing.T) {
	video := newFakeVideo(12)
	video.current = 10
	rec := transcriptionRecorder(t, video)

	rec.Seeker().FastForward()
	if video.current != 12 {
		t.Errorf("Expected clamp to 12, got %v", video.current)
	}
}

func TestSeek_GuardRefusesOverlap(t *testing.T) {
	video := newFakeVideo(60)
	video.current = 20
	rec := transcriptionRecorder(t, video)

	if !rec.Seeker().Rewind() {
		t.Fatal("Expected first rewind")
	}
	if !rec.State().IsJumping() {
		t.Error("Expected isJumping during seek")
	}
	if rec.Seeker().Rewind() || rec.Seeker().FastForward() {
		t.Error("Expected seeks to be refused while jumping")
	}
	if len(video.seeks) != 1 {
		t.Errorf("Expected one seek issued, got %d", len(video.seeks))
	}

	rec.HandleVideoEvent(VideoEvent{Type: EventSeeked, CurrentTime: 15})
	if rec.State().IsJumping() {
		t.Error("Expected guard cleared after seeked")
	}
	if !rec.Seeker().Rewind() {
		t.Error("Expected rewind after seek completed")
	}
	if video.current != 10 {
		t.Errorf("Expected video at 10, got %v", video.current)
	}
}

func TestSeek_UnreadyVideoIsNoop(t *testing.T) {
	for _, d := range []float64{math.NaN(), 0, math.Inf(1)} {
		video := newFakeVideo(d)
		rec := transcriptionRecorder(t, video)
		if rec.Seeker().Rewind() || rec.Seeker().FastForward() {
			t.Errorf("Expected no-op for duration %v", d)
		}
		if rec.State().IsJumping() {
			t.Errorf("Expected guard untouched for duration %v", d)
		}
	}

	rec := transcriptionRecorder(t, nil)
	if rec.Seeker().Rewind() {
		t.Error("Expected no-op without video")
	}
}

func TestRewind_TruncatesAndPauses(t *testing.T) {
	video := newFakeVideo(60)
	rec := transcriptionRecorder(t, video)
	rec.ToggleDrawing(context.Background())
	recordAt(t, rec, video, 1, 2, 3, 4, 5, 6, 7)

	if !rec.Seeker().Rewind() {
		t.Fatal("Expected rewind")
	}
	if video.current != 2 || !video.paused {
		t.Errorf("Expected paused video at 2, got %v paused=%v", video.current, video.paused)
	}
	if rec.State().ShouldTrackMouse() {
		t.Error("Expected recording stopped by rewind")
	}
	path, _ := rec.State().CurrentPath()
	if len(path.Points) != 2 {
		t.Errorf("Expected 2 points left, got %d", len(path.Points))
	}
	for _, pt := range path.Points {
		if pt.Time > 2 {
			t.Errorf("Point after rewind time: %+v", pt)
		}
	}

	video.current = 1
	rec.OnSeeked(1)
	rec.Seeker().Rewind()
	if video.current != 0 {
		t.Errorf("Expected rewind clamp at 0, got %v", video.current)
	}
}

func TestForwardThenRewind_IsInverse(t *testing.T) {
	video := newFakeVideo(100)
	rec := transcriptionRecorder(t, video)
	rec.ToggleDrawing(context.Background())
	recordAt(t, rec, video, 18, 19, 20)
	rec.ToggleDrawing(context.Background())

	startTime := rec.State().VideoTime()
	startCount := rec.State().PointCount()

	rec.Seeker().FastForward()
	rec.OnSeeked(video.current)
	if rec.State().PointCount() == startCount {
		t.Fatal("Expected synthetic points after forward")
	}

	rec.Seeker().Rewind()
	rec.OnSeeked(video.current)

	if rec.State().VideoTime() != startTime {
		t.Errorf("Expected video time %v, got %v", startTime, rec.State().VideoTime())
	}
	if rec.State().PointCount() != startCount {
		t.Errorf("Expected %d points, got %d", startCount, rec.State().PointCount())
	}
}

func speculateRecorder(t *testing.T, cfg models.Config) *Recorder {
	t.Helper()
	cfg.IsTranscriptionMode = false
	rec := New(state.New(), cfg, nil)
	rec.SetViewport(testViewport)
	return rec
}

func TestSpeculate_IndexSamplingAndSteps(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.JumpSteps = 2
	cfg.SpeculateStep = 2
	rec := speculateRecorder(t, cfg)

	if err := rec.ToggleDrawing(context.Background()); err != nil {
		t.Fatalf("Failed to start speculate drawing: %v", err)
	}
	if rec.State().IsVideoPlaying() {
		t.Error("Speculate mode must not touch video flag")
	}

	for i := 0; i < 10; i++ {
		rec.Tick(floorplan.Point{X: float64(i), Y: 5})
	}
	path, _ := rec.State().CurrentPath()
	if len(path.Points) != 5 {
		t.Fatalf("Expected 5 points, got %d", len(path.Points))
	}
	for i, pt := range path.Points {
		if pt.Time != float64(i*2) {
			t.Errorf("Point %d: expected pseudo time %d, got %v", i, i*2, pt.Time)
		}
	}

	if !rec.Seeker().Rewind() {
		t.Fatal("Expected speculate rewind")
	}
	if rec.State().PointCount() != 3 {
		t.Errorf("Expected 3 points after rewind, got %d", rec.State().PointCount())
	}
	rec.Tick(floorplan.Point{X: 1, Y: 1})
	if last, _ := rec.State().LastPoint(); last.Time != 6 {
		t.Errorf("Expected resumed pseudo time 6, got %v", last.Time)
	}

	if !rec.Seeker().FastForward() {
		t.Fatal("Expected speculate forward")
	}
	path, _ = rec.State().CurrentPath()
	if len(path.Points) != 6 {
		t.Fatalf("Expected 6 points after forward, got %d", len(path.Points))
	}
	if path.Points[4].Time != 8 || path.Points[5].Time != 10 {
		t.Errorf("Unexpected synthetic times %v, %v", path.Points[4].Time, path.Points[5].Time)
	}

	ix := rec.Sampler().(*sampler.IndexSampler)
	if ix.PseudoTime() != 12 {
		t.Errorf("Expected sampler resynced to 12, got %v", ix.PseudoTime())
	}
}

func TestSpeculate_ForwardWithoutPointsIsNoop(t *testing.T) {
	rec := speculateRecorder(t, models.DefaultConfig())
	if rec.Seeker().FastForward() || rec.Seeker().Rewind() {
		t.Error("Expected no-op on empty path")
	}
}

func TestSpeculate_AdaptiveUsesWallClock(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.UseAdaptiveSampling = true
	cfg.PollingRate = 250
	cfg.HeartbeatInterval = 1000
	rec := speculateRecorder(t, cfg)

	now := time.Unix(1000, 0)
	rec.SetClock(func() time.Time { return now })
	rec.ToggleDrawing(context.Background())

	rec.Tick(floorplan.Point{X: 10, Y: 10})
	now = now.Add(500 * time.Millisecond)
	rec.Tick(floorplan.Point{X: 50, Y: 10})
	now = now.Add(500 * time.Millisecond)
	rec.Tick(floorplan.Point{X: 50, Y: 10})

	path, _ := rec.State().CurrentPath()
	if len(path.Points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(path.Points))
	}
	if path.Points[1].Time != 0.5 {
		t.Errorf("Expected second point at 0.5s, got %v", path.Points[1].Time)
	}

	rec.Seeker().FastForward()
	path, _ = rec.State().CurrentPath()
	if last := path.Points[len(path.Points)-1].Time; last != 0.5+float64(cfg.JumpSteps) {
		t.Errorf("Expected heartbeat-spaced synthetic run ending at %v, got %v", 0.5+float64(cfg.JumpSteps), last)
	}
}

func TestUpdateConfig(t *testing.T) {
	video := newFakeVideo(60)
	rec := transcriptionRecorder(t, video)
	rec.ToggleDrawing(context.Background())

	cfg := rec.Config()
	cfg.PollingRate = 250
	rec.UpdateConfig(cfg)
	if !rec.State().ShouldTrackMouse() {
		t.Error("Interval change must not stop recording")
	}
	if ts := rec.Sampler().(*sampler.TimeSampler); ts.Interval() != 0.25 {
		t.Errorf("Expected interval 0.25, got %v", ts.Interval())
	}

	cfg.IsTranscriptionMode = false
	rec.UpdateConfig(cfg)
	if rec.State().ShouldTrackMouse() {
		t.Error("Mode switch must stop recording")
	}
	if rec.Sampler().Kind() != sampler.IndexBased {
		t.Errorf("Expected index sampler, got %v", rec.Sampler().Kind())
	}
}

func TestUpdateConfig_ModeSwitchReleasesSeek(t *testing.T) {
	video := newFakeVideo(60)
	rec := transcriptionRecorder(t, video)
	rec.ToggleDrawing(context.Background())
	recordAt(t, rec, video, 1, 2, 3, 4, 5, 6, 7)

	if !rec.Seeker().Rewind() {
		t.Fatal("Expected rewind")
	}
	if !rec.State().IsJumping() {
		t.Fatal("Expected seek in progress before mode switch")
	}

	cfg := rec.Config()
	cfg.IsTranscriptionMode = false
	rec.UpdateConfig(cfg)
	if rec.State().IsJumping() {
		t.Fatal("Expected mode switch to release the seek guard")
	}

	if !rec.Seeker().FastForward() {
		t.Error("Expected speculate forward after mode switch")
	}
	if !rec.Seeker().Rewind() {
		t.Error("Expected speculate rewind after mode switch")
	}
}

func TestLoadVideo_KeepsSpeculatePaths(t *testing.T) {
	rec := speculateRecorder(t, models.DefaultConfig())
	rec.ToggleDrawing(context.Background())
	rec.Tick(floorplan.Point{X: 5, Y: 5})

	if err := rec.HandleVideoEvent(VideoEvent{Type: EventLoadedMetadata, Duration: 30}); err != nil {
		t.Fatalf("Failed to handle event: %v", err)
	}
	if rec.State().PointCount() != 1 {
		t.Errorf("Expected speculate points to survive video load, got %d", rec.State().PointCount())
	}

	video := newFakeVideo(60)
	tr := transcriptionRecorder(t, video)
	tr.ToggleDrawing(context.Background())
	recordAt(t, tr, video, 1)
	tr.HandleVideoEvent(VideoEvent{Type: EventLoadedMetadata, Duration: 60})
	if tr.State().HasRecordedPoints() {
		t.Error("Expected transcription paths to be cleared by new video")
	}
}

func TestRemoteVideo_PendingCommands(t *testing.T) {
	video := NewRemoteVideo()
	video.Seek(4)

	if cmd := video.PendingCommands(); cmd.SeekTo == nil || *cmd.SeekTo != 4 {
		t.Fatalf("Expected pending seek to 4, got %+v", cmd)
	}
	if cmd := video.TakeCommands(); cmd.SeekTo == nil {
		t.Fatal("Expected peek to leave the queue intact")
	}
	if cmd := video.PendingCommands(); !cmd.Empty() {
		t.Errorf("Expected empty queue after take, got %+v", cmd)
	}
}

func TestUndoAndNewPath(t *testing.T) {
	rec := speculateRecorder(t, models.DefaultConfig())
	rec.ToggleDrawing(context.Background())
	for i := 0; i < 4; i++ {
		rec.Tick(floorplan.Point{X: 5, Y: 5})
	}

	if removed := rec.Undo(3); removed != 3 {
		t.Errorf("Expected 3 removed, got %d", removed)
	}
	rec.Tick(floorplan.Point{X: 5, Y: 5})
	if last, _ := rec.State().LastPoint(); last.Time != 1 {
		t.Errorf("Expected time 1 after undo, got %v", last.Time)
	}

	id := rec.NewPath("#fff")
	rec.Tick(floorplan.Point{X: 5, Y: 5})
	last, _ := rec.State().LastPoint()
	if last.PathID != id || last.Time != 0 {
		t.Errorf("Expected new path point at time 0, got %+v", last)
	}
}

func TestLoadFloorPlanClearsPaths(t *testing.T) {
	rec := speculateRecorder(t, models.DefaultConfig())
	rec.ToggleDrawing(context.Background())
	rec.Tick(floorplan.Point{X: 5, Y: 5})

	rec.LoadFloorPlan(floorplan.Meta{Width: 640, Height: 480})
	if rec.State().HasRecordedPoints() {
		t.Error("Expected paths to be cleared")
	}
	if w, h := rec.State().ImageSize(); w != 640 || h != 480 {
		t.Errorf("Expected 640x480, got %dx%d", w, h)
	}
	if rec.State().ShouldTrackMouse() {
		t.Error("Expected recording stopped")
	}
}

func TestRemoteVideo(t *testing.T) {
	video := NewRemoteVideo()
	rec := transcriptionRecorder(t, video)

	if err := rec.ToggleDrawing(context.Background()); !errors.Is(err, ErrVideoNotReady) {
		t.Fatalf("Expected ErrVideoNotReady before metadata, got %v", err)
	}

	rec.HandleVideoEvent(VideoEvent{Type: EventLoadedMetadata, Duration: 30})
	if err := rec.ToggleDrawing(context.Background()); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if cmds := video.TakeCommands(); !cmds.Play {
		t.Errorf("Expected play command, got %+v", cmds)
	}
	if !video.TakeCommands().Empty() {
		t.Error("Expected commands to be drained")
	}

	rec.HandleVideoEvent(VideoEvent{Type: EventPlayRejected, Error: "autoplay"})
	if rec.State().ShouldTrackMouse() {
		t.Error("Expected rejection to reset recording")
	}

	rec.HandleVideoEvent(VideoEvent{Type: EventTimeUpdate, CurrentTime: 8})
	if !rec.Seeker().Rewind() {
		t.Fatal("Expected rewind")
	}
	cmds := video.TakeCommands()
	if cmds.SeekTo == nil || *cmds.SeekTo != 3 || !cmds.Pause {
		t.Errorf("Unexpected commands %+v", cmds)
	}
}
