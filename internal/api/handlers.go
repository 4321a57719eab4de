package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pricingdesk/internal/assistant"
	"pricingdesk/internal/datachat"
	"pricingdesk/internal/identity"
	"pricingdesk/internal/models"
	"pricingdesk/internal/pipeline"
	"pricingdesk/internal/session"
	"pricingdesk/internal/volume"
)

// maxUploadBytes bounds a single brochure. The PDFs in scope are product
// brochures of a few MB; anything larger is rejected before parsing.
const maxUploadBytes = 50 << 20

// DataChat is the tabular conversation surface; nil when no data space
// is configured.
type DataChat interface {
	Ask(ctx context.Context, conversationID, question string) (string, *datachat.Answer, error)
}

// Handler exposes the dashboard operations over HTTP. Every mutating
// route responds with the full session view so the client re-renders
// from server state instead of patching its own.
type Handler struct {
	sessions *session.Store
	volume   volume.Store
	runner   *pipeline.Runner
	chat     *assistant.Service
	data     DataChat
	log      *zap.SugaredLogger

	flight singleflight.Group
}

// NewHandler wires the HTTP layer to its collaborators. data may be nil.
func NewHandler(sessions *session.Store, vol volume.Store, runner *pipeline.Runner, chat *assistant.Service, data DataChat, log *zap.SugaredLogger) *Handler {
	return &Handler{
		sessions: sessions,
		volume:   vol,
		runner:   runner,
		chat:     chat,
		data:     data,
		log:      log,
	}
}

// RegisterRoutes attaches all dashboard routes to the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/me", h.me)
	api.POST("/sessions", h.createSession)

	s := api.Group("/sessions/:id")
	s.GET("", h.getSession)
	s.DELETE("", h.dropSession)
	s.POST("/uploads", h.uploadFiles)
	s.DELETE("/uploads/:index", h.deleteFile)
	s.POST("/extract", h.extract)
	s.GET("/features", h.features)
	s.POST("/scenarios", h.addScenario)
	s.DELETE("/scenarios/:sid", h.removeScenario)
	s.POST("/scenarios/:sid/step", h.stepScenario)
	s.POST("/chat", h.postChat)
	s.POST("/chat/reset", h.resetChat)
	s.GET("/chat/summary", h.chatSummary)
	s.POST("/datachat", h.postDataChat)
}

func (h *Handler) me(c *gin.Context) {
	user, _ := identity.FromRequest(c)
	c.JSON(http.StatusOK, gin.H{
		"greeting": user.Greeting(),
		"email":    user.Email,
	})
}

func (h *Handler) createSession(c *gin.Context) {
	state := h.sessions.Create()
	state.Lock()
	defer state.Unlock()
	c.JSON(http.StatusCreated, viewOf(state))
}

func (h *Handler) getSession(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	state.Lock()
	defer state.Unlock()
	c.JSON(http.StatusOK, viewOf(state))
}

// dropSession ends the session and discards its snapshot.
func (h *Handler) dropSession(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	h.sessions.Drop(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// uploadFiles accepts one or more brochures in the "files" multipart
// field. Files are processed independently: one bad file never blocks the
// rest, and every file gets a list entry recording its outcome.
func (h *Handler) uploadFiles(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	results := make([]models.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		results = append(results, h.storeOne(c, fh))
	}

	uploaded := 0
	for _, f := range results {
		if f.Status == models.FileUploaded {
			uploaded++
		}
	}

	state.Lock()
	defer state.Unlock()
	for _, f := range results {
		state.AppendFile(f)
	}
	if uploaded == len(results) {
		state.Status = fmt.Sprintf("✅ %d file(s) uploaded successfully! You can now extract features.", uploaded)
	} else {
		state.Status = fmt.Sprintf("⚠️ %d/%d files uploaded successfully. Check the file list for errors.",
			uploaded, len(results))
	}
	h.sessions.Snapshot(c.Request.Context(), state)
	c.JSON(http.StatusOK, viewOf(state))
}

// storeOne validates and stores a single brochure and reports its
// outcome. Validation failures and storage failures both come back as a
// failed entry rather than an error.
func (h *Handler) storeOne(c *gin.Context, fh *multipart.FileHeader) models.UploadedFile {
	entry := models.UploadedFile{Filename: fh.Filename}

	fail := func(msg string) models.UploadedFile {
		entry.Status = models.FileFailed
		entry.Error = msg
		return entry
	}

	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return fail("only PDF files are accepted")
	}
	if fh.Size > maxUploadBytes {
		return fail(fmt.Sprintf("file exceeds the %d MB limit", maxUploadBytes>>20))
	}

	src, err := fh.Open()
	if err != nil {
		return fail("open upload: " + err.Error())
	}
	defer src.Close()
	content, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return fail("read upload: " + err.Error())
	}
	if len(content) > maxUploadBytes {
		return fail(fmt.Sprintf("file exceeds the %d MB limit", maxUploadBytes>>20))
	}

	pages, err := pdfPageCount(content)
	if err != nil {
		return fail("not a readable PDF: " + err.Error())
	}

	blobPath, err := h.volume.Put(c.Request.Context(), fh.Filename, content)
	if err != nil {
		h.log.Errorw("brochure upload failed", "file", fh.Filename, "error", err)
		return fail(err.Error())
	}

	entry.Status = models.FileUploaded
	entry.StoragePath = blobPath
	entry.Pages = pages
	return entry
}

func pdfPageCount(content []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}

// deleteFile removes the file at the given position. The remaining files
// keep their relative order and indices stay dense. An out-of-range index
// leaves the session unchanged.
func (h *Handler) deleteFile(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file index must be an integer"})
		return
	}

	state.Lock()
	defer state.Unlock()
	removed, ok := state.RemoveFile(index)
	if !ok {
		c.JSON(http.StatusOK, viewOf(state))
		return
	}
	if removed.Status == models.FileUploaded {
		if _, err := h.volume.Delete(c.Request.Context(), removed.Filename); err != nil {
			h.log.Warnw("volume delete failed", "file", removed.Filename, "error", err)
		}
	}
	state.Status = fmt.Sprintf("Removed %s.", removed.Filename)
	h.sessions.Snapshot(c.Request.Context(), state)
	c.JSON(http.StatusOK, viewOf(state))
}

// extract runs the feature extraction pipeline. Concurrent triggers for
// the same session join the in-flight run instead of starting another;
// everyone gets the run's final view. The run is detached from the
// initiating request's context so a joiner's result does not depend on
// the initiator staying connected.
func (h *Handler) extract(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())

	res, _, _ := h.flight.Do(state.ID, func() (any, error) {
		state.Lock()
		files := append([]models.UploadedFile(nil), state.Files...)
		state.Busy = true
		state.Status = extractBusyLabel
		state.Unlock()

		result := h.runner.Run(ctx, files)

		state.Lock()
		state.Busy = false
		state.Status = result.Status
		h.sessions.Snapshot(ctx, state)
		state.Unlock()
		return result, nil
	})
	result := res.(pipeline.Result)

	state.Lock()
	defer state.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"session": viewOf(state),
	})
}

// features returns the most recent extracted feature row for the preview
// panel, independent of a full pipeline run.
func (h *Handler) features(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	record, err := h.runner.LatestFeatures(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"available": false,
			"message":   "No data available",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"available": true,
		"features":  record,
	})
}

func (h *Handler) addScenario(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	state.Lock()
	defer state.Unlock()
	state.AddScenario()
	h.sessions.Snapshot(c.Request.Context(), state)
	c.JSON(http.StatusOK, viewOf(state))
}

func (h *Handler) removeScenario(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	sid, err := strconv.Atoi(c.Param("sid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scenario id must be an integer"})
		return
	}

	state.Lock()
	defer state.Unlock()
	state.RemoveScenario(sid)
	h.sessions.Snapshot(c.Request.Context(), state)
	c.JSON(http.StatusOK, viewOf(state))
}

type stepRequest struct {
	Field     string `json:"field" binding:"required"`
	Direction string `json:"direction" binding:"required"`
}

// stepScenario applies one stepper click. The scenario is addressed by
// its stable id, so a click racing a removal either applies to the right
// scenario or to none.
func (h *Handler) stepScenario(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	sid, err := strconv.Atoi(c.Param("sid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scenario id must be an integer"})
		return
	}
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step request: " + err.Error()})
		return
	}
	var up bool
	switch req.Direction {
	case "up":
		up = true
	case "down":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be up or down"})
		return
	}

	state.Lock()
	defer state.Unlock()
	if _, ok := state.StepScenario(sid, models.ScenarioField(req.Field), up); !ok {
		// unknown id or field: a stale click, not an error worth surfacing
		c.JSON(http.StatusOK, viewOf(state))
		return
	}
	h.sessions.Snapshot(c.Request.Context(), state)
	c.JSON(http.StatusOK, viewOf(state))
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) postChat(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	state.Lock()
	defer state.Unlock()
	reply, history := h.chat.Respond(c.Request.Context(), state.History, req.Message)
	state.History = history
	h.sessions.Snapshot(c.Request.Context(), state)
	c.JSON(http.StatusOK, gin.H{
		"reply":   reply,
		"session": viewOf(state),
	})
}

func (h *Handler) resetChat(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	state.Lock()
	defer state.Unlock()
	state.History = nil
	h.sessions.Snapshot(c.Request.Context(), state)
	c.JSON(http.StatusOK, viewOf(state))
}

// postDataChat asks the data space one question about the warehouse
// tables. The session pins its conversation id so follow-up questions
// keep their context; answers carry a tabular result when the data space
// ran a query.
func (h *Handler) postDataChat(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	if h.data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "data chat is not configured"})
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	state.Lock()
	defer state.Unlock()
	cid, answer, err := h.data.Ask(c.Request.Context(), state.DataConversationID, req.Message)
	if err != nil {
		h.log.Errorw("data chat turn failed", "session", state.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	state.DataConversationID = cid
	h.sessions.Snapshot(c.Request.Context(), state)
	c.JSON(http.StatusOK, gin.H{
		"conversation_id": cid,
		"answer":          answer,
	})
}

func (h *Handler) chatSummary(c *gin.Context) {
	state, ok := h.session(c)
	if !ok {
		return
	}
	state.Lock()
	summary := assistant.Summary(state.History)
	state.Unlock()
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) session(c *gin.Context) (*session.State, bool) {
	state, ok := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return state, true
}
