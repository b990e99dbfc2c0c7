package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"mime"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/churchhelp/internal/config"
	"github.com/debemdeboas/churchhelp/internal/model"
	"github.com/debemdeboas/churchhelp/internal/render"
	"github.com/debemdeboas/churchhelp/internal/routes"
	"github.com/debemdeboas/churchhelp/internal/sermon"
	"github.com/debemdeboas/churchhelp/internal/sink"
	"github.com/debemdeboas/churchhelp/internal/sse"
	"github.com/debemdeboas/churchhelp/internal/theme"
)

const reloadEvent = "reload"

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

// BroadcastReload returns a change hook that tells live preview windows of a draft to refresh.
func BroadcastReload(clients *sse.SSEClients) func(DraftID) {
	return func(id DraftID) {
		clients.Broadcast(string(id), reloadEvent)
	}
}

type Handler struct {
	repo    Repository
	clients *sse.SSEClients
	sink    sink.Sink

	tmpl *template.Template
}

// NewHandler parses the page and partial templates from fsys.
func NewHandler(repo Repository, clients *sse.SSEClients, s sink.Sink, fsys fs.FS) (*Handler, error) {
	tmpl, err := template.ParseFS(fsys, config.TemplatesLocalDir+"/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Handler{
		repo:    repo,
		clients: clients,
		sink:    s,
		tmpl:    tmpl,
	}, nil
}

// Routes registers the editor endpoints on mux, each wrapped by mid.
func (h *Handler) Routes(mux *http.ServeMux, mid func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET "+routes.Root, mid(h.ServeEditor))
	mux.HandleFunc("GET "+routes.Editor, mid(h.ServeEditor))
	mux.HandleFunc("GET "+routes.NewSermon, mid(h.ServeNewSermon))

	mux.HandleFunc("POST "+routes.Field, mid(h.ServeSetField))
	mux.HandleFunc("POST "+routes.Blocks, mid(h.ServeAddBlock))
	mux.HandleFunc("PUT "+routes.Block, mid(h.ServeUpdateBlock))
	mux.HandleFunc("DELETE "+routes.Block, mid(h.ServeRemoveBlock))
	mux.HandleFunc("POST "+routes.Submit, mid(h.ServeSubmit))
	mux.HandleFunc("POST "+routes.Sync, mid(h.ServeSync))
	mux.HandleFunc("GET "+routes.Export, mid(h.ServeExport))
	mux.HandleFunc("POST "+routes.Preview, mid(h.ServeTogglePreview))

	mux.HandleFunc("GET "+routes.PreviewPartial, mid(h.ServePreviewPartial))
	mux.HandleFunc("GET "+routes.ExportPartial, mid(h.ServeExportPartial))

	mux.HandleFunc("GET "+routes.SSE, h.ServeEvents)
}

type editorPage struct {
	*model.PageData
	DraftID        DraftID
	Draft          sermon.Draft
	Kinds          []sermon.Kind
	PreviewEnabled bool
	Preview        previewPartial
}

type previewPartial struct {
	Open        bool
	DraftID     DraftID
	LivePreview bool
	HTML        template.HTML
}

type statusPartial struct {
	OK         bool
	Message    string
	Missing    []string
	ExportName string
}

// ServeEditor shows the session's draft, creating a new session when the
// cookie is missing or stale.
func (h *Handler) ServeEditor(w http.ResponseWriter, r *http.Request) {
	e, err := h.editorFromRequest(r)
	if err != nil {
		e, err = h.repo.CreateEditor()
		if err != nil {
			editorLogger.Error().Err(err).Msg("Error creating editor")
			http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
			return
		}
		setDraftCookie(w, e.ID())
		editorLogger.Info().Str("draft_id", string(e.ID())).Msg("New editor session")
	}

	preview, err := h.previewFor(e)
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error rendering preview")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	data := editorPage{
		PageData:       model.NewPageData(r),
		DraftID:        e.ID(),
		Draft:          e.Snapshot(),
		Kinds:          sermon.Kinds,
		PreviewEnabled: config.AppConfig.Editor.Preview,
		Preview:        preview,
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	h.execute(w, "layout", data)
}

// ServeNewSermon discards the current draft and starts over.
func (h *Handler) ServeNewSermon(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(config.CookieDraftID); err == nil {
		h.repo.DeleteEditor(DraftID(cookie.Value))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieDraftID,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.Header().Add(config.HHxRedirect, routes.Editor)
	http.Redirect(w, r, routes.Editor, http.StatusFound)
}

func (h *Handler) ServeSetField(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}

	field, err := sermon.ParseField(r.FormValue("field"))
	if err != nil {
		http.Error(w, config.ErrUnknownField, http.StatusBadRequest)
		return
	}

	e.SetField(field, r.FormValue(string(field)))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ServeAddBlock(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}

	kind, err := sermon.ParseKind(r.FormValue("kind"))
	if err != nil {
		http.Error(w, config.ErrUnknownBlockKind, http.StatusBadRequest)
		return
	}

	id := e.AddBlock(kind)
	editorLogger.Debug().Str("draft_id", string(e.ID())).Stringer("block_id", id).Str("kind", kind.String()).Msg("Block added")

	h.writeBlocks(w, e)
}

func (h *Handler) ServeUpdateBlock(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}

	id, err := sermon.ParseBlockID(r.PathValue("id"))
	if err != nil {
		http.Error(w, config.ErrInvalidBlockID, http.StatusBadRequest)
		return
	}

	if !e.UpdateBlock(id, r.FormValue(id.FormName())) {
		editorLogger.Warn().Str("draft_id", string(e.ID())).Stringer("block_id", id).Msg("Update for unknown block ignored")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ServeRemoveBlock(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}

	id, err := sermon.ParseBlockID(r.PathValue("id"))
	if err != nil {
		http.Error(w, config.ErrInvalidBlockID, http.StatusBadRequest)
		return
	}

	if !e.RemoveBlock(id) {
		editorLogger.Warn().Str("draft_id", string(e.ID())).Stringer("block_id", id).Msg("Removal of unknown block ignored")
	}
	h.writeBlocks(w, e)
}

// ServeSubmit applies the posted form, then submits the draft.
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}

	h.applyForm(e, r)

	err := e.Submit(r.Context(), h.sink)
	switch {
	case errors.Is(err, sermon.ErrMissingField):
		w.Header().Set(config.HCType, config.CTypeHTML)
		w.WriteHeader(http.StatusUnprocessableEntity)
		h.execute(w, "status", statusPartial{Message: config.ErrMissingRequired, Missing: missingFields(e.Snapshot())})
		return
	case err != nil:
		editorLogger.Error().Err(err).Str("draft_id", string(e.ID())).Msg("Error submitting sermon")
		w.Header().Set(config.HCType, config.CTypeHTML)
		w.WriteHeader(http.StatusBadGateway)
		h.execute(w, "status", statusPartial{Message: config.ErrSubmissionFailed})
		return
	}

	d := e.Snapshot()
	editorLogger.Info().Str("draft_id", string(e.ID())).Str("title", d.Title).Msg("Sermon submitted")

	if trigger, err := json.Marshal(map[string]any{"sermonSubmitted": map[string]string{"title": d.Title}}); err == nil {
		w.Header().Set(config.HHxTrigger, string(trigger))
	}
	w.Header().Set(config.HCType, config.CTypeHTML)
	h.execute(w, "status", statusPartial{OK: true, Message: "Sermon saved", ExportName: sermon.ExportFilename(d.Title)})
}

// ServeSync applies the whole form at once. The export button calls it before
// downloading so edits still waiting on the input debounce are not lost.
func (h *Handler) ServeSync(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}
	h.applyForm(e, r)
	w.WriteHeader(http.StatusNoContent)
}

// ServeExport downloads the flattened draft. Nothing is kept once the body is written.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}

	artifact := e.Export()
	w.Header().Set(config.HCType, artifact.ContentType)
	w.Header().Set(config.HContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Name}))
	w.Header().Set(config.HCacheControl, "no-store")
	w.Write(artifact.Body)
}

func (h *Handler) ServeTogglePreview(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}
	if !config.AppConfig.Editor.Preview {
		http.NotFound(w, r)
		return
	}

	e.TogglePreview()
	h.writePreview(w, e)
}

func (h *Handler) ServePreviewPartial(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}
	h.writePreview(w, e)
}

func (h *Handler) ServeExportPartial(w http.ResponseWriter, r *http.Request) {
	e, ok := h.requireEditor(w, r)
	if !ok {
		return
	}

	highlighted, err := render.HighlightExport(sermon.Flatten(e.Snapshot()), theme.GetSyntaxThemeFromRequest(r))
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error highlighting export")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	h.execute(w, "export", template.HTML(highlighted))
}

// ServeEvents streams reload events for one draft to a live preview window.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	draftID := r.URL.Query().Get("draft")
	if draftID == "" {
		http.Error(w, "Draft parameter required", http.StatusBadRequest)
		return
	}
	if _, err := h.repo.GetEditor(DraftID(draftID)); err != nil {
		http.Error(w, config.ErrDraftNotFound, http.StatusNotFound)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", draftID)
	flusher.Flush()

	client := sse.NewClient(draftID)
	h.clients.Add(client)
	editorLogger.Debug().Str("draft_id", draftID).Msg("SSE client connected")

	defer func() {
		h.clients.Delete(client)
		editorLogger.Debug().Str("draft_id", draftID).Msg("SSE client disconnected")
	}()

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	notify := r.Context().Done()
	for {
		select {
		case msg, open := <-client.Msg:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg, msg)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

// applyForm copies the header fields and block contents present in the posted
// form into the draft. Fields absent from the form are left alone.
func (h *Handler) applyForm(e *Editor, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		editorLogger.Warn().Err(err).Str("draft_id", string(e.ID())).Msg("Error parsing form")
		return
	}

	for _, field := range []sermon.Field{sermon.FieldTitle, sermon.FieldScripture, sermon.FieldDate} {
		if values, present := r.PostForm[string(field)]; present && len(values) > 0 {
			e.SetField(field, values[0])
		}
	}
	for _, b := range e.Snapshot().Blocks {
		if values, present := r.PostForm[b.ID.FormName()]; present && len(values) > 0 {
			e.UpdateBlock(b.ID, values[0])
		}
	}
}

func (h *Handler) editorFromRequest(r *http.Request) (*Editor, error) {
	cookie, err := r.Cookie(config.CookieDraftID)
	if err != nil || cookie.Value == "" {
		return nil, ErrDraftNotFound
	}
	return h.repo.GetEditor(DraftID(cookie.Value))
}

// requireEditor answers 404 with an HX-Redirect to a fresh editor when the session is gone.
func (h *Handler) requireEditor(w http.ResponseWriter, r *http.Request) (*Editor, bool) {
	e, err := h.editorFromRequest(r)
	if err != nil {
		w.Header().Set(config.HHxRedirect, routes.Editor)
		http.Error(w, config.ErrDraftNotFound, http.StatusNotFound)
		return nil, false
	}
	return e, true
}

func (h *Handler) previewFor(e *Editor) (previewPartial, error) {
	p := previewPartial{
		Open:        e.PreviewOpen() && config.AppConfig.Editor.Preview,
		DraftID:     e.ID(),
		LivePreview: config.AppConfig.Editor.LivePreview,
	}
	if !p.Open {
		return p, nil
	}

	html, err := render.Preview(e.Snapshot())
	if err != nil {
		return p, err
	}
	p.HTML = html
	return p, nil
}

func (h *Handler) writePreview(w http.ResponseWriter, e *Editor) {
	p, err := h.previewFor(e)
	if err != nil {
		editorLogger.Error().Err(err).Msg("Error rendering preview")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	w.Header().Set(config.HCType, config.CTypeHTML)
	h.execute(w, "preview", p)
}

func (h *Handler) writeBlocks(w http.ResponseWriter, e *Editor) {
	w.Header().Set(config.HCType, config.CTypeHTML)
	h.execute(w, "blocks", e.Snapshot())
}

func (h *Handler) execute(w http.ResponseWriter, name string, data any) {
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		editorLogger.Error().Err(err).Str("template", name).Msg("Error executing template")
	}
}

func setDraftCookie(w http.ResponseWriter, id DraftID) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieDraftID,
		Value:    string(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func missingFields(d sermon.Draft) []string {
	var missing []string
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.Scripture == "" {
		missing = append(missing, "scripture")
	}
	return missing
}
