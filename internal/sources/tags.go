package sources

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/kupovina/internal/domain"
)

// TagsFile is the layout of the tag palette file.
//
//	tags:
//	  - name: DM
//	    color: "#ef4444"
type TagsFile struct {
	Tags []struct {
		Name  string `yaml:"name"`
		Color string `yaml:"color"`
	} `yaml:"tags"`
}

// TagsLoader loads the default tag palette.
type TagsLoader struct {
	filePath string
}

// NewTagsLoader creates a loader for filePath. An empty path means the
// built-in palette.
func NewTagsLoader(filePath string) *TagsLoader {
	return &TagsLoader{filePath: filePath}
}

// Load returns the palette in file order.
func (l *TagsLoader) Load() ([]domain.Tag, error) {
	if l.filePath == "" {
		out := make([]domain.Tag, len(domain.DefaultTags))
		copy(out, domain.DefaultTags)
		return out, nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags file: %w", err)
	}

	var file TagsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tags yaml: %w", err)
	}

	tags := make([]domain.Tag, 0, len(file.Tags))
	seen := make(map[string]bool, len(file.Tags))
	for i, t := range file.Tags {
		name := strings.TrimSpace(t.Name)
		color := strings.TrimSpace(t.Color)
		if name == "" || color == "" {
			return nil, fmt.Errorf("tags[%d]: name and color are required", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("tags[%d]: duplicate tag %q", i, name)
		}
		seen[name] = true
		tags = append(tags, domain.Tag{Name: name, Color: color})
	}
	return tags, nil
}
