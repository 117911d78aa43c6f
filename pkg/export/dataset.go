package export

import "fmt"

// Dataset defines tabular export content. Rows are keyed by header.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// Record returns row i ordered by the dataset headers.
func (d Dataset) Record(i int) []string {
	record := make([]string, len(d.Headers))
	for j, header := range d.Headers {
		record[j] = d.Rows[i][header]
	}
	return record
}

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	return nil
}

// Renderer turns a dataset into a downloadable document.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// Registry resolves renderers by format name.
type Registry map[string]Renderer

// NewRegistry registers the CSV, PDF and XLSX renderers.
func NewRegistry() Registry {
	return Registry{
		"csv":  NewCSVExporter(),
		"pdf":  NewPDFExporter(),
		"xlsx": NewXLSXExporter(),
	}
}

// Lookup returns the renderer for format.
func (r Registry) Lookup(format string) (Renderer, bool) {
	renderer, ok := r[format]
	return renderer, ok
}
