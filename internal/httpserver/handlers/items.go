package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vault/internal/logger"
)

const (
	msgAddOK     = "Item added successfully"
	msgAddFail   = "Failed to add item"
	msgUpdateOK  = "Item updated successfully"
	msgUpdateErr = "Failed to update item"
	msgDeleteOK  = "Item deleted successfully"
	msgDeleteErr = "Failed to delete item"
	msgLoadErr   = "Failed to load items"

	maxBodyBytes = 8 << 20 // images travel inline as data URIs
)

type listResponse struct {
	Items []*domain.Item `json:"items"`
	Total int            `json:"total"`
}

type createResponse struct {
	ID           uint64        `json:"id"`
	Notification *notification `json:"notification"`
}

type itemResponse struct {
	Item         *domain.Item  `json:"item"`
	Notification *notification `json:"notification"`
}

type deleteResponse struct {
	ID           uint64        `json:"id"`
	Notification *notification `json:"notification"`
}

// ListItems serves GET /api/items. Without a page parameter the whole
// (optionally category-filtered) collection is returned, newest first.
func ListItems(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var cat *domain.Category
		if raw := q.Get("category"); raw != "" {
			c, err := domain.ParseCategory(raw)
			if err != nil {
				writeError(w, d.Logger, err, "")
				return
			}
			cat = &c
		}

		if q.Get("page") == "" {
			listAll(w, r, d, cat)
			return
		}

		page, pageSize, err := pagingParams(q.Get("page"), q.Get("pageSize"), d.DefaultPageSize, d.MaxPageSize)
		if err != nil {
			writeError(w, d.Logger, err, "")
			return
		}

		var p *domain.Page
		if cat != nil {
			p, err = d.Store.GetByCategoryPage(r.Context(), *cat, page, pageSize)
		} else {
			p, err = d.Store.GetPage(r.Context(), page, pageSize)
		}
		if err != nil {
			writeError(w, d.Logger, err, msgLoadErr)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func listAll(w http.ResponseWriter, r *http.Request, d deps.Deps, cat *domain.Category) {
	var (
		items []*domain.Item
		err   error
	)
	if cat != nil {
		items, err = d.Store.GetByCategory(r.Context(), *cat)
	} else {
		items, err = d.Store.GetAll(r.Context())
	}
	if err != nil {
		writeError(w, d.Logger, err, msgLoadErr)
		return
	}
	if items == nil {
		items = []*domain.Item{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items)})
}

// pagingParams parses page and pageSize. A missing size falls back to def
// and anything above maxSize is clamped.
func pagingParams(rawPage, rawSize string, def, maxSize int) (int, int, error) {
	page, err := strconv.Atoi(rawPage)
	if err != nil {
		return 0, 0, &domain.ValidationError{Field: "page", Reason: "must be a positive integer"}
	}

	size := def
	if rawSize != "" {
		if size, err = strconv.Atoi(rawSize); err != nil {
			return 0, 0, &domain.ValidationError{Field: "pageSize", Reason: "must be a positive integer"}
		}
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	if err := domain.ValidatePaging(page, size); err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

// GetItem serves GET /api/items/{id}.
func GetItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeError(w, d.Logger, err, "")
			return
		}
		it, err := d.Store.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, d.Logger, err, "")
			return
		}
		writeJSON(w, http.StatusOK, it)
	}
}

// CreateItem serves POST /api/items.
func CreateItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string   `json:"name"`
			Description string   `json:"description"`
			Category    string   `json:"category"`
			Images      []string `json:"images"`
			Rating      *int     `json:"rating"`
		}
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, err, msgAddFail)
			return
		}

		cat, err := domain.ParseCategory(req.Category)
		if err != nil {
			writeError(w, d.Logger, err, msgAddFail)
			return
		}
		draft := domain.Draft{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			Category:    cat,
			Images:      req.Images,
			Rating:      req.Rating,
		}
		if err := domain.ValidateDraft(draft); err != nil {
			writeError(w, d.Logger, err, msgAddFail)
			return
		}
		domain.ApplyCategoryPolicy(&draft)

		id, err := d.Store.Add(r.Context(), draft)
		if err != nil {
			writeError(w, d.Logger, err, msgAddFail)
			return
		}

		d.Logger.Info("item added",
			logger.Uint64("id", id),
			logger.String("category", string(cat)))
		writeJSON(w, http.StatusCreated, createResponse{ID: id, Notification: success(msgAddOK)})
	}
}

// patchRequest distinguishes an absent rating from an explicit null,
// which clears it.
type patchRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Images      *[]string       `json:"images"`
	Rating      json.RawMessage `json:"rating"`
}

func (p patchRequest) toPatch() (*domain.Patch, error) {
	patch := domain.NewPatch()
	if p.Name != nil {
		patch.WithName(strings.TrimSpace(*p.Name))
	}
	if p.Description != nil {
		patch.WithDescription(strings.TrimSpace(*p.Description))
	}
	if p.Category != nil {
		cat, err := domain.ParseCategory(*p.Category)
		if err != nil {
			return nil, err
		}
		patch.WithCategory(cat)
	}
	if p.Images != nil {
		patch.WithImages(*p.Images)
	}
	switch {
	case len(p.Rating) == 0:
	case bytes.Equal(p.Rating, []byte("null")):
		patch.WithoutRating()
	default:
		var v int
		if err := json.Unmarshal(p.Rating, &v); err != nil {
			return nil, &domain.ValidationError{Field: "rating", Reason: "must be an integer or null"}
		}
		patch.WithRating(v)
	}
	return patch, patch.Validate()
}

// UpdateItem serves PATCH /api/items/{id}.
func UpdateItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeError(w, d.Logger, err, msgUpdateErr)
			return
		}

		var req patchRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, d.Logger, err, msgUpdateErr)
			return
		}
		patch, err := req.toPatch()
		if err != nil {
			writeError(w, d.Logger, err, msgUpdateErr)
			return
		}
		current, err := d.Store.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, d.Logger, err, msgUpdateErr)
			return
		}
		domain.ApplyPatchPolicy(patch, current)

		if err := d.Store.Update(r.Context(), id, patch); err != nil {
			writeError(w, d.Logger, err, msgUpdateErr)
			return
		}
		it, err := d.Store.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, d.Logger, err, msgUpdateErr)
			return
		}

		d.Logger.Info("item updated", logger.Uint64("id", id))
		writeJSON(w, http.StatusOK, itemResponse{Item: it, Notification: success(msgUpdateOK)})
	}
}

// DeleteItem serves DELETE /api/items/{id}. Deleting an unknown id succeeds.
func DeleteItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			writeError(w, d.Logger, err, msgDeleteErr)
			return
		}
		if err := d.Store.Delete(r.Context(), id); err != nil {
			writeError(w, d.Logger, err, msgDeleteErr)
			return
		}

		d.Logger.Info("item deleted", logger.Uint64("id", id))
		writeJSON(w, http.StatusOK, deleteResponse{ID: id, Notification: success(msgDeleteOK)})
	}
}

func itemID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &domain.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}
