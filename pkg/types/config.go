// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultExtension is the file suffix of a stored persona.
const DefaultExtension = ".txt"

// PersonaConfig locates the persona directory.
type PersonaConfig struct {
	// Dir is the directory holding one file per persona (default ~/.persona).
	Dir string `json:"dir" yaml:"dir"`

	// Extension is the recognized persona file suffix (default ".txt").
	Extension string `json:"extension" yaml:"extension"`
}

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio serves MCP over standard input/output.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// ServerConfig holds settings for the MCP server.
type ServerConfig struct {
	// Name identifies the server to MCP clients.
	Name string `json:"name" yaml:"name"`

	// Version is reported to MCP clients during initialization.
	Version string `json:"version" yaml:"version"`

	// Transport selects stdio or http.
	Transport TransportKind `json:"transport" yaml:"transport"`

	// HTTPAddr is the listen address for the http transport (default localhost:8081).
	HTTPAddr string `json:"http_addr" yaml:"http_addr"`

	// Watch re-syncs the resource list when persona files change on disk.
	Watch bool `json:"watch" yaml:"watch"`
}

// IndexConfig holds settings for the persona knowledge index.
type IndexConfig struct {
	// Enabled registers the search tool on the MCP server.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file (default <dir>/.index/personas.db).
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default number of search hits (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// ChunkSize is the maximum chunk length in bytes (default 1500).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`
}

// ConversionBackend identifies the Markdown-to-Word tool.
type ConversionBackend string

const (
	BackendNative ConversionBackend = "native"
	BackendPandoc ConversionBackend = "pandoc"
)

// ConversionConfig holds settings for the document converter.
type ConversionConfig struct {
	// Backend selects the conversion tool: native or pandoc.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// OutDir is the directory for generated .docx files. Empty means next
	// to each input file.
	OutDir string `json:"out_dir" yaml:"out_dir"`
}

// Config groups all settings.
type Config struct {
	Persona    PersonaConfig    `json:"persona" yaml:"persona"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Index      IndexConfig      `json:"index" yaml:"index"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
}
