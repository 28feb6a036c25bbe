package seed

// File is the top-level structure of a seed file.
type File struct {
	Items []Entry `yaml:"items"`
}

// Entry is one collection item as written by hand or by export.
type Entry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Category    string   `yaml:"category"`
	Rating      *int     `yaml:"rating,omitempty"`
	Images      []string `yaml:"images,omitempty,flow"`
}
