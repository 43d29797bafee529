package scorer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/solbras/fatura-cli/internal/model"
)

// LoadGold reads a hand-verified record from path. The format follows
// the extension: .yaml and .yml decode as YAML, everything else as JSON.
func LoadGold(path string) (*model.InvoiceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: read gold file")
	}
	ext := strings.ToLower(filepath.Ext(path))
	rec, err := ParseGold(data, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return nil, eris.Wrapf(err, "scorer: gold file %s", filepath.Base(path))
	}
	return rec, nil
}

// ParseGold decodes a gold record from raw bytes.
func ParseGold(data []byte, asYAML bool) (*model.InvoiceRecord, error) {
	var rec model.InvoiceRecord
	if asYAML {
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return nil, eris.Wrap(err, "decode yaml")
		}
		return &rec, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrap(err, "decode json")
	}
	return &rec, nil
}
