package presenter

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/soocke/clickmask-go/domain/codec"
	"github.com/soocke/clickmask-go/domain/interaction"
	"github.com/soocke/clickmask-go/domain/oracle"
	"github.com/soocke/clickmask-go/domain/segment"
	"github.com/soocke/clickmask-go/ui/model"
	"github.com/soocke/clickmask-go/ui/overlay"
)

// Oracle is the model boundary used by the controller. oracle.Client implements it.
type Oracle interface {
	Embed(ctx context.Context, img image.Image) (*oracle.EmbeddingHandle, error)
	Infer(ctx context.Context, h *oracle.EmbeddingHandle, points []segment.LabeledPoint) ([]segment.CandidateMask, error)
}

// ImageDecoder loads an image file into memory.
type ImageDecoder func(path string) (image.Image, error)

// MaskWriter persists a mask to path.
type MaskWriter func(path string, m *segment.Mask) error

// FrameRenderer turns a scene into a canvas-sized frame.
type FrameRenderer interface {
	Render(sc overlay.Scene) (*image.RGBA, error)
}

// InteractionView is the UI surface driven by the controller.
type InteractionView interface {
	ShowFrame(img image.Image)
	SetBusy(busy bool, message string)
	ShowError(title, message string)
	// SetSaveEnabled reports whether a mask for the current points exists.
	SetSaveEnabled(enabled bool)
}

const (
	busyEmbedText = "Encoding image..."
	busyInferText = "Computing mask..."
)

type oracleTaskKind int

const (
	oracleTaskEmbed oracleTaskKind = iota + 1
	oracleTaskInfer
)

type oracleTask struct {
	kind       oracleTaskKind
	oracle     Oracle
	timeout    time.Duration
	generation uint64
	revision   uint64
	image      image.Image
	handle     *oracle.EmbeddingHandle
	points     []segment.LabeledPoint
}

type oracleResult struct {
	kind       oracleTaskKind
	generation uint64
	revision   uint64
	handle     *oracle.EmbeddingHandle
	candidates []segment.CandidateMask
	err        error
	duration   time.Duration
}

// InteractionController turns user events into session changes and oracle calls.
//
// All exported methods must be called from the UI goroutine. Oracle calls run on a
// single background worker; their results are applied by Tick and are discarded when
// the session they were started for has been replaced since.
type InteractionController struct {
	Session *model.SessionModel
	Canvas  *model.CanvasModel

	oracle   Oracle
	decode   ImageDecoder
	write    MaskWriter
	renderer FrameRenderer
	view     InteractionView
	mapper   segment.Mapper
	timeout  time.Duration
	logger   *slog.Logger
	machine  *interaction.Machine

	ctx    context.Context
	cancel context.CancelFunc

	workerOnce sync.Once
	closeOnce  sync.Once
	workCh     chan oracleTask
	resultCh   chan oracleResult

	lastInfer time.Duration
}

// NewInteractionController wires a controller. A zero timeout disables per-call deadlines.
func NewInteractionController(session *model.SessionModel, canvas *model.CanvasModel, orc Oracle, decode ImageDecoder, write MaskWriter, renderer FrameRenderer, view InteractionView, mapper segment.Mapper, timeout time.Duration, logger *slog.Logger) *InteractionController {
	if session == nil {
		session = model.NewSessionModel()
	}
	if canvas == nil {
		canvas = model.NewCanvasModel()
	}
	if decode == nil {
		decode = codec.Decode
	}
	if write == nil {
		write = codec.WriteMask
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &InteractionController{
		Session:  session,
		Canvas:   canvas,
		oracle:   orc,
		decode:   decode,
		write:    write,
		renderer: renderer,
		view:     view,
		mapper:   mapper,
		timeout:  timeout,
		logger:   logger,
		machine:  interaction.NewMachine(logger),
		ctx:      ctx,
		cancel:   cancel,
		workCh:   make(chan oracleTask, 1),
		resultCh: make(chan oracleResult, 4),
	}
}

// State returns the current interaction state.
func (c *InteractionController) State() interaction.State { return c.machine.Current() }

// AddListener registers l for state transitions.
func (c *InteractionController) AddListener(l interaction.Listener) { c.machine.AddListener(l) }

// LastInferDuration is the latency of the last applied mask computation.
func (c *InteractionController) LastInferDuration() time.Duration { return c.lastInfer }

// SetMapper changes the fit rules; the next frame uses them.
func (c *InteractionController) SetMapper(m segment.Mapper) {
	c.mapper = m
	c.Redraw()
}

// SetTimeout changes the per-call deadline for later oracle calls.
func (c *InteractionController) SetTimeout(d time.Duration) { c.timeout = d }

// SetOracle switches the model backend. Embeddings do not carry over between
// backends, so a loaded image is embedded again and its points are dropped.
func (c *InteractionController) SetOracle(o Oracle) {
	c.oracle = o
	if c.Session.Loaded() {
		c.logger.Info("oracle changed, re-embedding image", "name", c.Session.Name())
		_ = c.LoadFromImage(c.Session.Name(), c.Session.Image())
	}
}

// LoadImage decodes path and starts a new session for it. A file that cannot be
// decoded leaves the current session untouched.
func (c *InteractionController) LoadImage(path string) error {
	img, err := c.decode(path)
	if err != nil {
		c.logger.Error("load image", "path", path, "error", err)
		c.showError("Error", "Failed to load image")
		return err
	}
	return c.LoadFromImage(path, img)
}

// LoadFromImage replaces the session with img and starts embedding it.
// Any result still pending for the previous session is ignored when it arrives.
// An empty image is reported to the user and leaves the current session alone.
func (c *InteractionController) LoadFromImage(name string, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		err := segment.CodecError("load", errors.Errorf("%s: empty image", name))
		c.logger.Error("load image", "name", name, "error", err)
		c.showError("Error", "Failed to load image")
		return err
	}
	gen := c.Session.Reset(name, img)
	b := img.Bounds()
	c.logger.Info("image loaded", "name", name, "session", c.Session.ID(), "generation", gen, "width", b.Dx(), "height", b.Dy())
	c.Session.SetBusy(model.Embedding)
	c.machine.Transition(interaction.StateEmbedding)
	c.setBusy(true, busyEmbedText)
	c.Redraw()
	c.dispatchTask(oracleTask{kind: oracleTaskEmbed, generation: gen, image: img})
	return nil
}

// Click adds a prompt point at canvas position pt and starts a mask computation.
// Clicks outside Ready are ignored and return nil. Clicks that miss the image
// return segment.ErrOutOfBounds and change nothing.
func (c *InteractionController) Click(pt segment.CanvasPoint, label segment.Polarity) error {
	if !c.machine.Current().AcceptsPrompts() || c.Session.Prompts() == nil {
		c.logger.Debug("click ignored", "state", c.machine.Current().String())
		return nil
	}
	vp, err := c.mapper.Viewport(c.Canvas.Size(), c.Session.ImageSize())
	if err != nil {
		c.logger.Debug("click before layout", "error", err)
		return err
	}
	ip, err := vp.ToImage(pt)
	if err != nil {
		return err
	}
	if err := c.Session.Prompts().AddPoint(ip, label); err != nil {
		c.logger.Debug("click outside image", "x", pt.X, "y", pt.Y, "image_x", ip.X, "image_y", ip.Y)
		return err
	}
	c.logger.Debug("prompt point added", "x", ip.X, "y", ip.Y, "label", label.String(), "points", c.Session.Prompts().Len())
	c.Redraw()
	c.startInfer()
	return nil
}

func (c *InteractionController) startInfer() {
	prompts := c.Session.Prompts()
	points := prompts.Points()
	if len(points) == 0 {
		return
	}
	c.Session.SetBusy(model.Inferring)
	c.machine.Transition(interaction.StateInferring)
	c.setBusy(true, busyInferText)
	c.dispatchTask(oracleTask{
		kind:       oracleTaskInfer,
		generation: c.Session.Generation(),
		revision:   prompts.Revision(),
		handle:     c.Session.Embedding(),
		points:     points,
	})
}

// ClearPrompts drops all points and the mask. It only acts in Ready and
// reports whether it did.
func (c *InteractionController) ClearPrompts() bool {
	if !c.machine.Current().AcceptsPrompts() || c.Session.Prompts() == nil {
		return false
	}
	c.Session.Prompts().Clear()
	c.Redraw()
	return true
}

// HasMask reports whether a mask for the current points exists.
func (c *InteractionController) HasMask() bool { return c.Session.Mask() != nil }

// SuggestedMaskName is the default file name offered by the save dialog.
func (c *InteractionController) SuggestedMaskName() string {
	return codec.SuggestedMaskName(c.Session.Name())
}

// SaveMask writes the current mask to path.
func (c *InteractionController) SaveMask(path string) error {
	m := c.Session.Mask()
	if m == nil {
		c.showError("Error", "No mask available to save!")
		return segment.ErrNoMaskAvailable
	}
	if err := c.write(path, m); err != nil {
		c.logger.Error("save mask", "path", path, "error", err)
		c.showError("Error", "Failed to save mask!")
		return err
	}
	c.logger.Info("mask saved", "path", path, "area", m.Area())
	return nil
}

// Resize records a new canvas size and redraws when it changed.
func (c *InteractionController) Resize(w, h int) {
	if c.Canvas.SetSize(w, h) {
		c.Redraw()
	}
}

// Redraw renders the session onto the canvas. Nothing is drawn before the canvas
// has a size.
func (c *InteractionController) Redraw() {
	if c.view != nil {
		c.view.SetSaveEnabled(c.HasMask())
	}
	if c.renderer == nil || c.view == nil || !c.Canvas.Ready() {
		return
	}
	sc := overlay.Scene{Mapper: c.mapper, Canvas: c.Canvas.Size()}
	if c.Session.Loaded() {
		sc.Image = c.Session.Image()
		sc.Points = c.Session.Points()
		sc.Mask = c.Session.DisplayMask()
		sc.MaskStale = sc.Mask != nil && c.Session.Mask() == nil
		if scale, err := c.mapper.Fit(sc.Canvas, c.Session.ImageSize()); err == nil {
			c.Session.SetScale(scale)
		}
	}
	frame, err := c.renderer.Render(sc)
	if err != nil {
		c.logger.Debug("render skipped", "error", err)
		return
	}
	c.view.ShowFrame(frame)
}

// Tick applies finished oracle results. Call it periodically from the UI goroutine.
func (c *InteractionController) Tick() {
	c.ensureWorker()
	for {
		select {
		case res := <-c.resultCh:
			c.handleResult(res)
		default:
			return
		}
	}
}

// Close stops the worker and cancels a running oracle call.
func (c *InteractionController) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
	})
}

func (c *InteractionController) handleResult(res oracleResult) {
	if !c.Session.Current(res.generation) {
		c.logger.Debug("discarding stale oracle result", "generation", res.generation, "current", c.Session.Generation())
		return
	}
	switch res.kind {
	case oracleTaskEmbed:
		c.applyEmbedding(res)
	case oracleTaskInfer:
		c.applyMask(res)
	}
}

func (c *InteractionController) applyEmbedding(res oracleResult) {
	c.Session.SetBusy(model.Idle)
	c.setBusy(false, "")
	if res.err != nil {
		c.logger.Error("embed image", "session", c.Session.ID(), "error", res.err)
		c.Session.SetEmbedding(nil)
		c.machine.Transition(interaction.StateNoImage)
		c.showError("Error", "Failed to compute image embedding")
		return
	}
	c.Session.SetEmbedding(res.handle)
	c.logger.Info("image embedded", "session", c.Session.ID(), "duration", res.duration)
	c.machine.Transition(interaction.StateReady)
}

func (c *InteractionController) applyMask(res oracleResult) {
	c.Session.SetBusy(model.Idle)
	c.setBusy(false, "")
	c.machine.Transition(interaction.StateReady)
	if res.err != nil {
		c.logger.Error("compute mask", "session", c.Session.ID(), "error", res.err)
		c.Redraw()
		c.showError("Error", "Failed to compute mask")
		return
	}
	prompts := c.Session.Prompts()
	if prompts == nil || prompts.Revision() != res.revision {
		c.logger.Debug("discarding mask for outdated points", "revision", res.revision)
		return
	}
	chosen, err := prompts.SetMask(res.candidates)
	if err != nil {
		c.logger.Error("select mask", "candidates", len(res.candidates), "error", err)
		c.Redraw()
		c.showError("Error", "Failed to compute mask")
		return
	}
	c.lastInfer = res.duration
	c.logger.Debug("mask selected", "score", chosen.Score, "area", chosen.Mask.Area(), "duration", res.duration)
	c.Redraw()
}

func (c *InteractionController) ensureWorker() {
	c.workerOnce.Do(func() {
		go c.runWorker()
	})
}

func (c *InteractionController) runWorker() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case task := <-c.workCh:
			res := c.executeTask(task)
			select {
			case c.resultCh <- res:
			case <-c.ctx.Done():
				return
			}
		}
	}
}

// dispatchTask queues task, replacing a queued task that has not started.
// Only the newest task can still match the session, so the dropped one was stale.
func (c *InteractionController) dispatchTask(task oracleTask) {
	task.oracle, task.timeout = c.oracle, c.timeout
	c.ensureWorker()
	select {
	case c.workCh <- task:
	default:
		select {
		case old := <-c.workCh:
			c.logger.Debug("dropping queued oracle task", "generation", old.generation)
		default:
		}
		select {
		case c.workCh <- task:
		default:
			c.logger.Error("oracle queue full", "generation", task.generation)
		}
	}
}

func (c *InteractionController) executeTask(task oracleTask) (res oracleResult) {
	res = oracleResult{kind: task.kind, generation: task.generation, revision: task.revision}
	defer func() {
		if r := recover(); r != nil {
			res.err = segment.ModelError("worker", fmt.Errorf("panic: %v", r))
		}
	}()
	if task.oracle == nil {
		res.err = segment.ModelError("worker", fmt.Errorf("no oracle configured"))
		return res
	}
	ctx := c.ctx
	if task.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.timeout)
		defer cancel()
	}
	start := time.Now()
	switch task.kind {
	case oracleTaskEmbed:
		res.handle, res.err = task.oracle.Embed(ctx, task.image)
	case oracleTaskInfer:
		res.candidates, res.err = task.oracle.Infer(ctx, task.handle, task.points)
	default:
		res.err = fmt.Errorf("unknown oracle task kind %d", task.kind)
	}
	res.duration = time.Since(start)
	return res
}

func (c *InteractionController) setBusy(busy bool, msg string) {
	if c.view != nil {
		c.view.SetBusy(busy, msg)
	}
}

func (c *InteractionController) showError(title, msg string) {
	if c.view != nil {
		c.view.ShowError(title, msg)
	}
}
