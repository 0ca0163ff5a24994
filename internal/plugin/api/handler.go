package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/schema"
	"github.com/haveachin/mcstatus/internal/app/mcstatus"
	"go.uber.org/zap"
)

type serverDTO struct {
	Name        string                 `json:"name"`
	Address     string                 `json:"address"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Status      *mcstatus.ServerStatus `json:"status"`
	Error       string                 `json:"error,omitempty"`
	UpdatedAt   *time.Time             `json:"updatedAt"`
}

func getServersHandler(rf refresher) http.HandlerFunc {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return func(w http.ResponseWriter, r *http.Request) {
		reqDTO := &struct {
			Category string `schema:"category"`
		}{}

		if err := decoder.Decode(reqDTO, r.URL.Query()); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		outcomes := map[string]mcstatus.Outcome{}
		for _, o := range rf.Outcomes() {
			outcomes[o.Endpoint.Address] = o
		}

		respDTOs := []serverDTO{}
		for _, ep := range rf.Endpoints() {
			if reqDTO.Category != "" && ep.Category != reqDTO.Category {
				continue
			}

			dto := serverDTO{
				Name:        ep.Name,
				Address:     ep.Address,
				Description: ep.Description,
				Category:    ep.Category,
			}

			if o, ok := outcomes[ep.Address]; ok {
				dto.Status = o.Status
				updatedAt := o.UpdatedAt
				dto.UpdatedAt = &updatedAt
				if o.Err != nil {
					dto.Error = o.Err.Error()
				}
			}

			respDTOs = append(respDTOs, dto)
		}

		render.JSON(w, r, respDTOs)
	}
}

func refreshServersHandler(rf refresher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if !rf.Trigger(context.Background()) {
				logger.Debug("refresh already running")
			}
		}()

		w.WriteHeader(http.StatusAccepted)
	}
}

// resolveAddress validates the address URL parameter and resolves it.
// It writes the error response and returns false on failure.
func resolveAddress(w http.ResponseWriter, r *http.Request, resolver mcstatus.StatusResolver, lookup func() lookupConfig) (mcstatus.ServerStatus, bool) {
	addr, err := mcstatus.NormalizeAddress(chi.URLParam(r, "address"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return mcstatus.ServerStatus{}, false
	}

	if err := lookup().check(addr); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return mcstatus.ServerStatus{}, false
	}

	status, err := resolver.Status(r.Context(), addr)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, mcstatus.ErrAllUpstreamsFailed) {
			code = http.StatusBadGateway
		}
		http.Error(w, err.Error(), code)
		return mcstatus.ServerStatus{}, false
	}

	return status, true
}

func getStatusHandler(resolver mcstatus.StatusResolver, lookup func() lookupConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok := resolveAddress(w, r, resolver, lookup)
		if !ok {
			return
		}

		render.JSON(w, r, status)
	}
}

func getMotdHandler(resolver mcstatus.StatusResolver, lookup func() lookupConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok := resolveAddress(w, r, resolver, lookup)
		if !ok {
			return
		}

		render.HTML(w, r, status.Motd.Markup())
	}
}

func getAvatarHandler(tmpl func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := tmpl()
		if t == "" {
			t = mcstatus.DefaultAvatarURLTemplate
		}

		username := chi.URLParam(r, "username")
		http.Redirect(w, r, mcstatus.AvatarURLFromTemplate(t, username), http.StatusFound)
	}
}
