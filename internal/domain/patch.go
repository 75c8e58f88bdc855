package domain

import "encoding/json"

// Section names recognized inside a SettingsPatch.
const (
	SectionAPIKeys    = "apiKeys"
	SectionFilePaths  = "filePaths"
	SectionParameters = "parameters"
	SectionProcessing = "processing"
	SectionAI         = "ai"
	SectionAdvanced   = "advanced"
)

// SettingsPatch is the deep-partial form of Settings used while editing.
// Fields that were never touched are absent rather than defaulted.
type SettingsPatch map[string]map[string]any

// PatchFromSettings converts a full Settings value into patch form.
func PatchFromSettings(s Settings) (SettingsPatch, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	var patch SettingsPatch
	if err := json.Unmarshal(data, &patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// With returns a copy of the patch with one field replaced inside the named
// section. The outer map and the touched section are copied; every other
// section keeps its map identity.
func (p SettingsPatch) With(section, key string, value any) SettingsPatch {
	next := make(SettingsPatch, len(p)+1)
	for name, fields := range p {
		next[name] = fields
	}

	fields := make(map[string]any, len(p[section])+1)
	for k, v := range p[section] {
		fields[k] = v
	}
	fields[key] = value
	next[section] = fields
	return next
}

// NormalizeAdvanced enforces that advanced parameters are only meaningful
// when explicitly enabled: unless the enabled flag is strictly true, the
// whole advanced section collapses to disabled with no parameters.
func (p SettingsPatch) NormalizeAdvanced() SettingsPatch {
	enabled, _ := p[SectionAdvanced]["enabled"].(bool)
	if enabled {
		return p
	}

	next := make(SettingsPatch, len(p)+1)
	for name, fields := range p {
		next[name] = fields
	}
	next[SectionAdvanced] = map[string]any{
		"enabled":    false,
		"parameters": map[string]any{},
	}
	return next
}

// ApplyPatch shallow-merges a patch onto a full Settings value, section by
// section: fields named in the patch replace the base field, everything else
// keeps its base value.
func ApplyPatch(base Settings, patch SettingsPatch) (Settings, error) {
	baseData, err := json.Marshal(base)
	if err != nil {
		return Settings{}, err
	}

	merged := map[string]map[string]any{}
	if err := json.Unmarshal(baseData, &merged); err != nil {
		return Settings{}, err
	}

	for section, fields := range patch {
		if merged[section] == nil {
			merged[section] = map[string]any{}
		}
		for key, value := range fields {
			merged[section][key] = value
		}
	}

	mergedData, err := json.Marshal(merged)
	if err != nil {
		return Settings{}, err
	}

	var out Settings
	if err := json.Unmarshal(mergedData, &out); err != nil {
		return Settings{}, err
	}
	return out, nil
}
