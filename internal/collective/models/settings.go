package models

// Settings is the free-form feature/settings document of a collective.
type Settings map[string]any

const (
	SettingGithubRepo = "githubRepo"
	SettingGithubOrg  = "githubOrg"
)

// DefaultSettings returns the settings every new collective starts with.
func DefaultSettings() Settings {
	return Settings{
		"features": map[string]any{"conversations": true},
	}
}

// MergeSettings overlays caller settings on the defaults. The merge is shallow:
// a caller-provided top-level key replaces the default value wholesale.
func MergeSettings(caller map[string]any) Settings {
	merged := DefaultSettings()
	for k, v := range caller {
		merged[k] = v
	}
	return merged
}

// Clone copies the top level of the settings map.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	cp := make(Settings, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}
