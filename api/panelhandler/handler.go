package panelhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/hostkey-panel/api"
	"github.com/ruteri/hostkey-panel/flash"
	"github.com/ruteri/hostkey-panel/hostkeys"
	"github.com/ruteri/hostkey-panel/interfaces"
)

// Handler serves the panel pages.
type Handler struct {
	service *hostkeys.Service
	flash   *flash.Store
	log     *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
func NewHandler(service *hostkeys.Service, flashStore *flash.Store, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		flash:   flashStore,
		log:     log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route(api.PathPrefix, func(r chi.Router) {
		r.Get("/", h.HandleIndex)
		r.Get("/key/{fingerprint}", h.HandleKey)
		r.Post("/generate/{domain}", h.generateHandler(hostkeys.KindSSH))
		r.Post("/generate-snakeoil/{domain}", h.generateHandler(hostkeys.KindSnakeoil))
		r.Post("/generate-letsencrypt/{domain}", h.generateHandler(hostkeys.KindLetsEncrypt))
		r.Post("/publish/{fingerprint}", h.HandlePublish)
		r.Post("/cancel", h.HandleCancel)
	})
}

// HandleIndex renders the status page.
//
// URL format: GET /monkeysphere/
//
// A failure to read the key status is shown as an error notification on an
// otherwise empty page so that pending messages and the cancel action stay
// reachable.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	notes := &interfaces.Notifications{}
	notes.Extend(h.flash.Pop(r))

	page, err := h.service.Index(r.Context(), notes)
	if err != nil {
		h.log.Error("Failed to collect key status", "err", err)
		notes.Error(fmt.Sprintf("Could not read key status: %v", err))
		page = &hostkeys.IndexPage{
			Title:       hostkeys.Title,
			Description: hostkeys.Description,
			Running:     h.service.Running(),
		}
	}

	h.writeJSON(w, &api.IndexResponse{
		IndexPage: *page,
		Messages:  notes.All(),
	})
}

// HandleKey renders the details of one key.
//
// URL format: GET /monkeysphere/key/{fingerprint}
func (h *Handler) HandleKey(w http.ResponseWriter, r *http.Request) {
	fingerprint, err := interfaces.NewFingerprint(chi.URLParam(r, "fingerprint"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key, err := h.service.Key(r.Context(), fingerprint)
	switch {
	case errors.Is(err, interfaces.ErrKeyNotFound):
		http.Error(w, fmt.Sprintf("key %s not found", fingerprint), http.StatusNotFound)
		return
	case err != nil:
		h.log.Error("Failed to fetch key", "fingerprint", fingerprint.String(), "err", err)
		http.Error(w, fmt.Errorf("could not fetch key: %w", err).Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, &api.KeyResponse{Title: hostkeys.Title, Key: key})
}

// generateHandler imports a key of the given kind for the domain in the URL.
//
// URL format: POST /monkeysphere/generate{,-snakeoil,-letsencrypt}/{domain}
func (h *Handler) generateHandler(kind hostkeys.KeyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes := &interfaces.Notifications{}
		if err := h.service.Generate(r.Context(), kind, chi.URLParam(r, "domain"), notes); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.redirectToIndex(w, r, notes)
	}
}

// HandlePublish starts publishing a key to the keyservers.
//
// URL format: POST /monkeysphere/publish/{fingerprint}
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	fingerprint, err := interfaces.NewFingerprint(chi.URLParam(r, "fingerprint"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	notes := &interfaces.Notifications{}
	h.service.Publish(fingerprint, notes)
	h.redirectToIndex(w, r, notes)
}

// HandleCancel cancels a running publish job.
//
// URL format: POST /monkeysphere/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	notes := &interfaces.Notifications{}
	h.service.Cancel(notes)
	h.redirectToIndex(w, r, notes)
}

func (h *Handler) redirectToIndex(w http.ResponseWriter, r *http.Request, notes *interfaces.Notifications) {
	h.flash.Push(w, r, notes)
	http.Redirect(w, r, api.PathPrefix+"/", http.StatusSeeOther)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}
