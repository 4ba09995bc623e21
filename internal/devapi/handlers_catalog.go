package devapi

import (
	"net/http"
	"strconv"

	"parkdesk.app/internal/services"
)

func (a *API) listCatalog(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var active *bool
		if raw := q.Get("active"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				writeBadRequest(w, "active must be a boolean")
				return
			}
			active = &v
		}
		writeJSON(w, http.StatusOK, a.store.CatalogEntries(root, active, q.Get("name")))
	}
}

func (a *API) createCatalog(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft services.CatalogDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		if draft.Name == "" {
			writeBadRequest(w, "name is required")
			return
		}
		e, err := a.store.CreateCatalogEntry(root, services.CatalogEntry{
			Name:        draft.Name,
			NameEnglish: draft.NameEnglish,
			Description: draft.Description,
			IsActive:    draft.IsActive,
		})
		if err != nil {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func (a *API) updateCatalog(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft services.CatalogDraft
		if !decodeBody(w, r, &draft) {
			return
		}
		e, err := a.store.UpdateCatalogEntry(root, r.PathValue("id"), func(e *services.CatalogEntry) {
			e.Name = draft.Name
			e.NameEnglish = draft.NameEnglish
			e.Description = draft.Description
			e.IsActive = draft.IsActive
		})
		if err != nil {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func (a *API) deleteCatalog(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.store.DeleteCatalogEntry(root, r.PathValue("id")); err != nil {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
