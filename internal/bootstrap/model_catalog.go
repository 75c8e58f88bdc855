package bootstrap

import (
	"fmt"
	"strings"

	"pixel-studio/internal/domain"
)

var imageModelCatalog = []domain.ImageModelOption{
	{
		ID:            "flux-pro",
		Name:          "Flux Pro",
		Provider:      "pixelforge",
		Description:   "Highest-quality generation, all modes.",
		Modes:         []string{"relax", "fast", "turbo"},
		SupportsEdits: true,
	},
	{
		ID:            "flux-dev",
		Name:          "Flux Dev",
		Provider:      "pixelforge",
		Description:   "Development-grade checkpoint, good for drafts.",
		Modes:         []string{"relax", "fast"},
		SupportsEdits: true,
	},
	{
		ID:            "flux-schnell",
		Name:          "Flux Schnell",
		Provider:      "pixelforge",
		Description:   "Fastest generation, reduced detail.",
		Modes:         []string{"fast", "turbo"},
		SupportsEdits: false,
	},
	{
		ID:            "sd-xl",
		Name:          "Stable Diffusion XL",
		Provider:      "pixelforge",
		Description:   "General-purpose model with broad style coverage.",
		Modes:         []string{"relax", "fast", "turbo"},
		SupportsEdits: true,
	},
}

// GetImageModels returns the built-in generation models, marking the one
// currently selected in settings.
func (a *App) GetImageModels() []domain.ImageModelOption {
	models := make([]domain.ImageModelOption, len(imageModelCatalog))
	copy(models, imageModelCatalog)

	selected := ""
	if settings, err := a.Store.Load(); err == nil {
		selected = settings.AI.Model
	}
	for i := range models {
		models[i].Default = models[i].ID == selected
	}
	return models
}

// SelectImageModel persists the chosen generation model into settings.
func (a *App) SelectImageModel(modelID string) (domain.Settings, error) {
	id := strings.TrimSpace(modelID)
	if id == "" {
		return domain.Settings{}, fmt.Errorf("model id is required")
	}
	if _, found := imageModelByID(id); !found {
		return domain.Settings{}, fmt.Errorf("unknown model id: %s", id)
	}

	return a.SaveSettings(domain.SettingsPatch{}.With(domain.SectionAI, "model", id))
}

func imageModelByID(id string) (domain.ImageModelOption, bool) {
	for _, model := range imageModelCatalog {
		if model.ID == id {
			return model, true
		}
	}
	return domain.ImageModelOption{}, false
}
