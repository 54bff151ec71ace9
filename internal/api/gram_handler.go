package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/grams-api/internal/api/middleware"
	"github.com/phrazzld/grams-api/internal/api/shared"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/platform/logger"
	"github.com/phrazzld/grams-api/internal/service"
)

// RootPath is where successful gram writes redirect to.
const RootPath = "/"

// GramHandler serves the grams resource.
type GramHandler struct {
	grams  service.GramService
	logger *slog.Logger
}

// NewGramHandler creates a GramHandler. It panics if grams is nil.
func NewGramHandler(grams service.GramService, logger *slog.Logger) *GramHandler {
	if grams == nil {
		panic("gram service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GramHandler{
		grams:  grams,
		logger: logger.With(slog.String("component", "gram_handler")),
	}
}

// Index handles GET / and GET /grams.
func (h *GramHandler) Index(w http.ResponseWriter, r *http.Request) {
	limit, err := getQueryInt(r, "limit", service.DefaultPageSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	offset, err := getQueryInt(r, "offset", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, offset = service.NormalizePage(limit, offset)

	grams, total, err := h.grams.ListGrams(r.Context(), limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list grams")
		return
	}

	resp := GramListResponse{
		Grams:  make([]GramResponse, 0, len(grams)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, g := range grams {
		resp.Grams = append(resp.Grams, toGramResponse(g))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Show handles GET /grams/{id}.
func (h *GramHandler) Show(w http.ResponseWriter, r *http.Request) {
	gram, ok := h.loadGram(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toGramResponse(gram))
}

// New handles GET /grams/new. Requires sign-in.
func (h *GramHandler) New(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, GramFormResponse{
		Gram:   GramFormValues{},
		Action: "/grams",
		Method: http.MethodPost,
	})
}

// Create handles POST /grams. Requires sign-in; the gram is owned by the
// signed-in user.
func (h *GramHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithRedirect(w, r, shared.RedirectResponse{
			Location: middleware.SignInPath,
			Alert:    middleware.SignInAlert,
		})
		return
	}

	params, ok := decodeGramParams(w, r)
	if !ok {
		return
	}

	gram, err := h.grams.CreateGram(r.Context(), userID, params.MessageValue())
	if err != nil {
		h.respondWriteError(w, r, err, GramFormValues{Message: params.MessageValue()})
		return
	}

	log.Debug("gram created via API", slog.String("gram_id", gram.ID.String()))
	shared.RespondWithRedirect(w, r, shared.RedirectResponse{Location: RootPath})
}

// Edit handles GET /grams/{id}/edit.
func (h *GramHandler) Edit(w http.ResponseWriter, r *http.Request) {
	gram, ok := h.loadGram(w, r)
	if !ok {
		return
	}
	id := gram.ID
	shared.RespondWithJSON(w, r, http.StatusOK, GramFormResponse{
		Gram:   GramFormValues{ID: &id, Message: gram.Message},
		Action: "/grams/" + id.String(),
		Method: http.MethodPatch,
	})
}

// Update handles PATCH and PUT /grams/{id}. A missing gram is reported
// before the body is looked at.
func (h *GramHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		respondNotFound(w, r, err)
		return
	}
	if _, err := h.grams.GetGram(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to load gram")
		return
	}

	params, ok := decodeGramParams(w, r)
	if !ok {
		return
	}

	if _, err := h.grams.UpdateGram(r.Context(), id, params.MessageValue()); err != nil {
		h.respondWriteError(w, r, err, GramFormValues{ID: &id, Message: params.MessageValue()})
		return
	}

	shared.RespondWithRedirect(w, r, shared.RedirectResponse{Location: RootPath})
}

func (h *GramHandler) loadGram(w http.ResponseWriter, r *http.Request) (*domain.Gram, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		respondNotFound(w, r, err)
		return nil, false
	}
	gram, err := h.grams.GetGram(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load gram")
		return nil, false
	}
	return gram, true
}

// respondWriteError renders a rejected create or update. Validation
// failures re-render the form with 422; everything else goes through
// HandleAPIError.
func (h *GramHandler) respondWriteError(w http.ResponseWriter, r *http.Request, err error, form GramFormValues) {
	var ve domain.ValidationErrors
	switch {
	case errors.As(err, &ve):
		shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, GramValidationErrorResponse{
			ValidationErrorResponse: shared.NewValidationErrorResponse(r, "Validation failed", ve.Fields()),
			Gram:                    form,
		})
	case errors.Is(err, service.ErrOwnerMissing):
		shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, GramValidationErrorResponse{
			ValidationErrorResponse: shared.NewValidationErrorResponse(r, "Validation failed",
				map[string][]string{"user": {"must exist"}}),
			Gram: form,
		})
	default:
		HandleAPIError(w, r, err, "Failed to save gram")
	}
}

func decodeGramParams(w http.ResponseWriter, r *http.Request) (*GramParams, bool) {
	var req GramRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return req.Gram, true
}
