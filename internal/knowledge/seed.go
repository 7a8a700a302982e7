package knowledge

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gosuda/campusbot/internal/domain"
)

// MaxDatasetSize bounds seed files read from disk.
const MaxDatasetSize = 1 << 20

//go:embed seed.yaml
var defaultDatasetYAML []byte

// Dataset is a parsed seed document. It is never mutated after parsing;
// callers receive copies.
type Dataset struct {
	data map[string]any
}

// ParseDataset decodes a YAML seed document.
func ParseDataset(raw []byte) (*Dataset, error) {
	if len(raw) == 0 {
		return nil, errors.New("knowledge.ParseDataset: empty document")
	}
	if len(raw) > MaxDatasetSize {
		return nil, fmt.Errorf("knowledge.ParseDataset: document exceeds %d bytes", MaxDatasetSize)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("knowledge.ParseDataset: %w", err)
	}
	if len(decoded) == 0 {
		return nil, errors.New("knowledge.ParseDataset: document has no sections")
	}

	data, _ := normalize(decoded).(map[string]any)
	return &Dataset{data: data}, nil
}

// LoadDataset reads the seed from path, or the embedded default when path is empty.
func LoadDataset(path string) (*Dataset, error) {
	if path == "" {
		return ParseDataset(defaultDatasetYAML)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge.LoadDataset: %w", err)
	}
	return ParseDataset(raw)
}

// Data returns a deep copy of the dataset.
func (d *Dataset) Data() map[string]any {
	out, _ := normalize(d.data).(map[string]any)
	return out
}

// Document returns a read-only view over a copy of the dataset.
func (d *Dataset) Document() Document {
	return NewDocument(d.Data())
}

// Seed writes the dataset as tenantID's structured knowledge, replacing any
// existing document.
func Seed(ctx context.Context, repo domain.KnowledgeRepository, tenantID string, ds *Dataset, now time.Time) error {
	err := repo.Put(ctx, &domain.StructuredKnowledge{
		TenantID:  tenantID,
		Data:      ds.Data(),
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("knowledge.Seed: %w", err)
	}
	return nil
}

// normalize deep-copies v, converting YAML's map[any]any into map[string]any
// so the result is JSON encodable.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
