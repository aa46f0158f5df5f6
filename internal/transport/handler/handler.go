package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vinkla/retouch/internal/assets"
	"github.com/vinkla/retouch/internal/config"
	"github.com/vinkla/retouch/internal/triggers"
)

type TriggerService interface {
	ProcessUpload(ctx context.Context, meta *assets.Metadata) *assets.Metadata
	RenderVariant(ctx context.Context, d triggers.Descriptor, subjectID int64, sizeKey string, isIcon bool) triggers.Descriptor
	RenderSrcset(ctx context.Context, subjectID int64, candidates []triggers.Descriptor) []triggers.Descriptor
}

type Handler struct {
	svc       TriggerService
	cfg       *config.Config
	validator *validator.Validate
}

func New(svc TriggerService, cfg *config.Config) *Handler {
	return &Handler{
		svc:       svc,
		cfg:       cfg,
		validator: validator.New(),
	}
}

// ProcessAsset is the upload-time trigger: the upstream pipeline posts the
// freshly generated metadata record, conversion runs synchronously, and the
// possibly mutated record always comes back.
func (h *Handler) ProcessAsset(w http.ResponseWriter, r *http.Request) {
	subjectID := parseInt64Default(chi.URLParam(r, "id"), 0)
	if subjectID <= 0 {
		writeJSONError(w, "invalid subject id", http.StatusBadRequest)
		return
	}

	var meta assets.Metadata
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeJSONError(w, "invalid metadata payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	meta.SubjectID = subjectID

	if meta.Scaled != nil && meta.Scaled.File != "" {
		if err := validateSourceFile(meta.Scaled.File); err != nil {
			writeJSONError(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}
	}

	out := h.svc.ProcessUpload(r.Context(), &meta)
	writeJSON(w, http.StatusOK, out)
}

// RenderVariant is the read-time trigger. It always answers with a usable
// descriptor, converted or not.
func (h *Handler) RenderVariant(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := renderVariantParams{
		SubjectID: parseInt64Default(chi.URLParam(r, "id"), 0),
		SizeKey:   chi.URLParam(r, "size"),
		File:      q.Get("file"),
		Width:     parseIntDefault(q.Get("width"), 0),
		Height:    parseIntDefault(q.Get("height"), 0),
		IsIcon:    q.Get("icon") == "1",
	}

	if err := h.validator.Struct(params); err != nil {
		writeJSON(w, http.StatusBadRequest, validationErrorsToMap(err))
		return
	}

	d := triggers.Descriptor{
		File:   params.File,
		Width:  params.Width,
		Height: params.Height,
	}
	out := h.svc.RenderVariant(r.Context(), d, params.SubjectID, params.SizeKey, params.IsIcon)
	writeJSON(w, http.StatusOK, out)
}

// RenderSrcset is the srcset-time trigger: rewrite what is already
// converted, enqueue one consolidated job for the rest.
func (h *Handler) RenderSrcset(w http.ResponseWriter, r *http.Request) {
	subjectID := parseInt64Default(chi.URLParam(r, "id"), 0)
	if subjectID <= 0 {
		writeJSONError(w, "invalid subject id", http.StatusBadRequest)
		return
	}

	var req srcsetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid srcset payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, validationErrorsToMap(err))
		return
	}

	out := h.svc.RenderSrcset(r.Context(), subjectID, req.Candidates)
	writeJSON(w, http.StatusOK, srcsetResponse{Candidates: out})
}
