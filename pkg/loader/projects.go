package loader

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/commitscope/pkg/models"
)

//go:embed projects.schema.json
var projectsSchemaJSON []byte

const projectsSchemaURL = "projects.schema.json"

var (
	projectsSchema     *jsonschema.Schema
	projectsSchemaErr  error
	projectsSchemaOnce sync.Once
)

func compiledProjectsSchema() (*jsonschema.Schema, error) {
	projectsSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(projectsSchemaJSON))
		if err != nil {
			projectsSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(projectsSchemaURL, doc); err != nil {
			projectsSchemaErr = err
			return
		}
		projectsSchema, projectsSchemaErr = c.Compile(projectsSchemaURL)
	})
	return projectsSchema, projectsSchemaErr
}

// LoadProjects reads a project list from a .json, .yaml or .yml file.
func LoadProjects(path string) ([]models.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		projects, err = ParseProjectsYAML(data)
	default:
		projects, err = ParseProjectsJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return projects, nil
}

// ParseProjectsJSON validates data against the project list schema and
// decodes it.
func ParseProjectsJSON(data []byte) ([]models.Project, error) {
	schema, err := compiledProjectsSchema()
	if err != nil {
		return nil, fmt.Errorf("compile project schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid project list: %w", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return projectsFromMaps(raw), nil
}

// ParseProjectsYAML decodes a YAML project list. Entries must have a title.
func ParseProjectsYAML(data []byte) ([]models.Project, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for i, m := range raw {
		if scalarString(m["title"]) == "" {
			return nil, fmt.Errorf("invalid project list: entry %d has no title", i)
		}
	}
	return projectsFromMaps(raw), nil
}

func projectsFromMaps(raw []map[string]any) []models.Project {
	projects := make([]models.Project, 0, len(raw))
	for _, m := range raw {
		p := models.Project{
			Title:       scalarString(m["title"]),
			Year:        scalarString(m["year"]),
			Description: scalarString(m["description"]),
			Image:       scalarString(m["image"]),
			URL:         scalarString(m["url"]),
		}

		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch k {
			case "title", "year", "description", "image", "url":
				continue
			}
			if s := scalarString(m[k]); s != "" {
				if p.Extra == nil {
					p.Extra = make(map[string]string)
				}
				p.Extra[k] = s
			}
		}
		projects = append(projects, p)
	}
	return projects
}

// scalarString renders JSON/YAML scalars as text; composite values are dropped.
func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}
