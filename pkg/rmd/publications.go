package rmd

// PublicationSection is one enabled, non-empty publication category of a
// profile.
type PublicationSection struct {
	Key   string `json:"key"`   // Category key, e.g. "grants"
	Title string `json:"title"` // Fixed display label
	ID    string `json:"id"`    // HTML id, unique within its IDRegistry
	Items []any  `json:"items"` // Raw list from the profile
}

// Publications is a profile's publication sections in display order.
type Publications []PublicationSection

// Section returns the section for key.
func (p Publications) Section(key string) (PublicationSection, bool) {
	for _, s := range p {
		if s.Key == key {
			return s, true
		}
	}
	return PublicationSection{}, false
}

// Keys returns the category keys present, in order.
func (p Publications) Keys() []string {
	keys := make([]string, len(p))
	for i, s := range p {
		keys[i] = s.Key
	}
	return keys
}

func buildPublications(rec Record, display []string, ids *IDRegistry) Publications {
	var out Publications
	seen := make(map[string]bool, len(display))
	for _, key := range display {
		if seen[key] {
			continue
		}
		seen[key] = true

		label, ok := CategoryLabel(key)
		if !ok {
			continue
		}
		items, ok := rec.List(key)
		if !ok {
			continue
		}
		out = append(out, PublicationSection{
			Key:   key,
			Title: label,
			ID:    ids.UniqueID("RMD " + label),
			Items: items,
		})
	}
	return out
}
