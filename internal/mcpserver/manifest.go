package mcpserver

import (
	"encoding/json"
)

// ManifestSchema is the server.json schema the manifest follows.
const ManifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// Manifest is the MCP registry server.json document.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	ID     string `json:"id,omitempty"`
}

// Package describes how to install/run the MCP server.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// EnvVariable is an environment variable the server reads at startup.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
}

// ConfigEnvVar points the server at a commitscope config file.
const ConfigEnvVar = "COMMITSCOPE_CONFIG"

// Argument represents a command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// Transport describes the communication method.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest renders server.json for the given release version.
// The server is published as an OCI image started with "commitscope mcp".
func GenerateManifest(version string) ([]byte, error) {
	if version == "" || version == "dev" {
		version = "0.0.0"
	}

	env := []EnvVariable{{
		Name:        ConfigEnvVar,
		Description: "Path to a commitscope.toml, .yaml or .json config file",
	}}

	manifest := Manifest{
		Schema:      ManifestSchema,
		Name:        "io.github.panbanda/commitscope",
		Description: "Commit history aggregation, rollups and brush selections over git or loc.csv data",
		Version:     version,
		Repository: &Repository{
			URL:    "https://github.com/panbanda/commitscope",
			Source: "github",
		},
		Packages: []Package{{
			RegistryType:         "oci",
			Identifier:           "ghcr.io/panbanda/commitscope:" + version,
			PackageArguments:     []Argument{{Type: "positional", Value: "mcp"}},
			EnvironmentVariables: env,
			Transport:            Transport{Type: "stdio"},
		}},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
