package queryspec

import (
	"strings"

	"github.com/crmarques/snapdiff/embedded"
)

// Record is one persisted key configuration. A single record serves both
// comparison (CompareKey) and extraction (ExtractKey).
type Record struct {
	KeyPath         string `json:"key_path" yaml:"key_path"`
	Alias           string `json:"alias" yaml:"alias"`
	IsConfigMapFile bool   `json:"is_configmap_file" yaml:"is_configmap_file"`
	FileKey         string `json:"file_key" yaml:"file_key"`
	FileType        string `json:"file_type" yaml:"file_type"`
	CompareKey      string `json:"compare_key" yaml:"compare_key"`
	ExtractKey      string `json:"extract_key" yaml:"extract_key"`
}

// Normalize trims every text field and defaults FileType to text.
func (r Record) Normalize() Record {
	normalized := Record{
		KeyPath:         strings.TrimSpace(r.KeyPath),
		Alias:           strings.TrimSpace(r.Alias),
		IsConfigMapFile: r.IsConfigMapFile,
		FileKey:         strings.TrimSpace(r.FileKey),
		FileType:        strings.ToLower(strings.TrimSpace(r.FileType)),
		CompareKey:      strings.TrimSpace(r.CompareKey),
		ExtractKey:      strings.TrimSpace(r.ExtractKey),
	}
	if normalized.FileType == "" {
		normalized.FileType = embedded.Text.String()
	}
	return normalized
}

func (r Record) CompareSpec() (Spec, error) {
	return r.spec(r.CompareKey)
}

func (r Record) ExtractSpec() (Spec, error) {
	return r.spec(r.ExtractKey)
}

func (r Record) spec(innerPath string) (Spec, error) {
	normalized := r.Normalize()

	var spec Spec
	if normalized.IsConfigMapFile {
		contentType, err := embedded.ParseContentType(normalized.FileType)
		if err != nil {
			return Spec{}, err
		}
		spec = NewEmbedded(normalized.FileKey, contentType, strings.TrimSpace(innerPath), normalized.Alias)
	} else {
		spec = NewDirect(normalized.KeyPath, normalized.Alias)
	}

	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// RecordFromSpec converts spec into its persisted form. The inner path is
// stored as both the compare and the extract key.
func RecordFromSpec(spec Spec) Record {
	if !spec.Embedded {
		return Record{KeyPath: spec.Path, Alias: spec.Alias}.Normalize()
	}
	return Record{
		Alias:           spec.Alias,
		IsConfigMapFile: true,
		FileKey:         spec.EmbeddedKey,
		FileType:        spec.ContentType.String(),
		CompareKey:      spec.InnerPath,
		ExtractKey:      spec.InnerPath,
	}.Normalize()
}

// CompareSpecs converts every record, stopping at the first invalid one.
func CompareSpecs(records []Record) ([]Spec, error) {
	return convert(records, Record.CompareSpec)
}

func ExtractSpecs(records []Record) ([]Spec, error) {
	return convert(records, Record.ExtractSpec)
}

func convert(records []Record, build func(Record) (Spec, error)) ([]Spec, error) {
	specs := make([]Spec, 0, len(records))
	for _, record := range records {
		spec, err := build(record)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
