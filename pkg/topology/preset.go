package topology

// Preset is a named bundle of default connection metadata values, fetched
// from the server's preset catalog. Applying a preset seeds the connection
// metadata before caller overrides.
type Preset struct {
	Name   string        `json:"preset_name"`
	Config MetadataPatch `json:"preset_config"`
}

// FindPreset returns the preset with the given name from a catalog, or nil.
func FindPreset(catalog []Preset, name string) *Preset {
	for i := range catalog {
		if catalog[i].Name == name {
			return &catalog[i]
		}
	}
	return nil
}
