package handlers

import (
	"net/http"

	"vidver/internal/domain"
	"vidver/internal/sqlinline"
)

type brandDTO struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Popularity int        `json:"popularity"`
	Models     []modelDTO `json:"models"`
}

type modelDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Catalog returns everything the client needs to render the generation form:
// seeded brands with their models, the tuning categories and video effects.
func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListBrandsWithModels)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load catalog")
		return
	}
	defer rows.Close()

	brands := []brandDTO{}
	index := map[string]int{}
	for rows.Next() {
		var brandID, brandName, brandSlug string
		var popularity int
		var modelID, modelName, modelSlug string
		if err := rows.Scan(&brandID, &brandName, &brandSlug, &popularity, &modelID, &modelName, &modelSlug); err != nil {
			continue
		}
		pos, ok := index[brandID]
		if !ok {
			pos = len(brands)
			index[brandID] = pos
			brands = append(brands, brandDTO{
				ID:         brandID,
				Name:       brandName,
				Slug:       brandSlug,
				Popularity: popularity,
				Models:     []modelDTO{},
			})
		}
		if modelID != "" {
			brands[pos].Models = append(brands[pos].Models, modelDTO{ID: modelID, Name: modelName, Slug: modelSlug})
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"brands":            brands,
		"tuning_categories": domain.TuningCategories,
		"video_effects":     domain.VideoEffects,
		"token_costs": map[string]int{
			"image_modify":   domain.TokenCostImageModify,
			"video_generate": domain.TokenCostVideoGenerate,
		},
	})
}
