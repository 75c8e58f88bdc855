package domain

// ImageModelOption describes one selectable generation model preset.
type ImageModelOption struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Provider      string   `json:"provider"`
	Description   string   `json:"description,omitempty"`
	Modes         []string `json:"modes"`
	SupportsEdits bool     `json:"supportsEdits"`
	Default       bool     `json:"default"`
}
