package rmd

// Category is a publication category shown in profile pages.
type Category struct {
	Key   string // Attribute name in the RMD payload
	Label string // Display label
}

// categories is the fixed, ordered label table.
var categories = [...]Category{
	{"publications", "Publications"},
	{"grants", "Grants"},
	{"presentations", "Presentations"},
	{"performances", "Performances"},
	{"master_advising_roles", "Master Advising Roles"},
	{"phd_advising_roles", "PhD Advising Roles"},
	{"other_publications", "Other Publications"},
	{"news_stories", "News Stories"},
}

// Categories returns the known publication categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories[:])
	return out
}

// CategoryKeys returns the keys of [Categories], in order.
func CategoryKeys() []string {
	keys := make([]string, len(categories))
	for i, c := range categories {
		keys[i] = c.Key
	}
	return keys
}

// CategoryLabel returns the display label for key.
func CategoryLabel(key string) (string, bool) {
	for _, c := range categories {
		if c.Key == key {
			return c.Label, true
		}
	}
	return "", false
}
