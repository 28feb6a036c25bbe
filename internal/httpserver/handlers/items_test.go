package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/MrSnakeDoc/vault/internal/domain"
)

func TestPagingParams(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		size     string
		wantPage int
		wantSize int
		wantErr  string
	}{
		{"defaults", "1", "", 1, 20, ""},
		{"explicit", "3", "5", 3, 5, ""},
		{"clamped", "1", "500", 1, 100, ""},
		{"page zero", "0", "", 0, 0, "page"},
		{"page text", "x", "", 0, 0, "page"},
		{"size zero", "1", "0", 0, 0, "pageSize"},
		{"size text", "1", "big", 0, 0, "pageSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size, err := pagingParams(tt.page, tt.size, 20, 100)
			if tt.wantErr != "" {
				var ve *domain.ValidationError
				if !errors.As(err, &ve) || ve.Field != tt.wantErr {
					t.Fatalf("err = %v, want ValidationError on %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page != tt.wantPage || size != tt.wantSize {
				t.Errorf("got (%d, %d), want (%d, %d)", page, size, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestPatchRequest_ToPatch(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantEmpty bool
		wantClear bool
		wantErr   bool
		check     func(*domain.Patch) error
	}{
		{name: "empty", body: `{}`, wantEmpty: true},
		{name: "null rating clears", body: `{"rating":null}`, wantClear: true},
		{
			name: "rating set",
			body: `{"rating":4}`,
			check: func(p *domain.Patch) error {
				if p.Rating == nil || *p.Rating != 4 {
					return fmt.Errorf("rating = %v", p.Rating)
				}
				return nil
			},
		},
		{
			name: "trims and parses category",
			body: `{"name":" Dune ","category":" MOVIE "}`,
			check: func(p *domain.Patch) error {
				if *p.Name != "Dune" || *p.Category != domain.CategoryMovie {
					return fmt.Errorf("name=%q category=%q", *p.Name, *p.Category)
				}
				return nil
			},
		},
		{
			name: "images replaced",
			body: `{"images":[]}`,
			check: func(p *domain.Patch) error {
				if p.Images == nil || len(*p.Images) != 0 {
					return fmt.Errorf("images = %v", p.Images)
				}
				return nil
			},
		},
		{name: "bad category", body: `{"category":"music"}`, wantErr: true},
		{name: "rating float", body: `{"rating":4.5}`, wantErr: true},
		{name: "rating too high", body: `{"rating":12}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req patchRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatal(err)
			}
			p, err := req.toPatch()
			if tt.wantErr {
				if !domain.IsValidation(err) {
					t.Fatalf("err = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Empty() != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", p.Empty(), tt.wantEmpty)
			}
			if p.ClearRating != tt.wantClear {
				t.Errorf("ClearRating = %v, want %v", p.ClearRating, tt.wantClear)
			}
			if tt.check != nil {
				if err := tt.check(p); err != nil {
					t.Error(err)
				}
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.ValidationError{Field: "name", Reason: "empty"}, http.StatusBadRequest},
		{fmt.Errorf("get: %w", domain.ErrNotFound), http.StatusNotFound},
		{&domain.StorageError{Op: "add", Err: errors.New("disk full")}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
