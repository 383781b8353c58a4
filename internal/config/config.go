// Package config defines the two CLI surfaces spec.md §6 fixes: ingest and
// serve. Each command's flags are listed there in full; this package adds
// only the ambient concerns the distilled contract leaves external —
// logging and config-file loading — grounded on peer-db's Globals pattern.
package config

import (
	"github.com/alecthomas/kong"
	"gitlab.com/tozd/go/cli"
	"gitlab.com/tozd/go/errors"
	"gitlab.com/tozd/go/zerolog"
)

const (
	// DefaultIngestLimit of 0 means no page-count limit.
	DefaultIngestLimit = 0
	// DefaultHost the serve command binds to.
	DefaultHost = "127.0.0.1"
	// DefaultPort the serve command listens on.
	DefaultPort = 8080
	// DefaultChunkSize is the splitter's target chunk length in characters,
	// per spec.md §9's resolved Open Question.
	DefaultChunkSize = 2048
	// DefaultChunkOverlap between consecutive chunks.
	DefaultChunkOverlap = 0
	// DefaultMinChunkWords below which a chunk is dropped by the ingest
	// pipeline rather than the splitter itself.
	DefaultMinChunkWords = 15
	// DefaultNumDocumentsToRetrieve is K, the neighbor count searched and
	// fetched per serving turn.
	DefaultNumDocumentsToRetrieve = 4
	// DefaultIndexDimension is the trained index's input vector width.
	DefaultIndexDimension = 384
	// DefaultPCADimension is the trained index's reduced output width.
	DefaultPCADimension = 128
	// DefaultBatchSize is the ingest Writer stage's batch size.
	DefaultBatchSize = 10_000
)

// Globals describes flags shared by both commands.
//
//nolint:lll
type Globals struct {
	zerolog.LoggingConfig `yaml:",inline"`

	Version kong.VersionFlag `help:"Show program's version and exit."                                     short:"V" yaml:"-"`
	Config  cli.ConfigFlag   `help:"Load configuration from a JSON or YAML file." name:"config" placeholder:"PATH" short:"c" yaml:"-"`
}

// IngestConfig is the `ingest` command's full flag surface, fixed by
// spec.md §6.
//
//nolint:lll
type IngestConfig struct {
	Globals `yaml:",inline"`

	WikiXML          string `help:"Path to the MediaWiki XML dump to ingest."                                       name:"wiki-xml"          placeholder:"PATH" required:"" type:"existingfile" yaml:"wikiXml"`
	OutputDirectory  string `help:"Directory to write the document store and trained index into."                   name:"output-directory"  placeholder:"PATH" required:"" type:"path"           yaml:"outputDirectory"`
	IngestLimit      int    `default:"${defaultIngestLimit}"       help:"Maximum number of pages to ingest. Zero means no limit." name:"ingest-limit"      placeholder:"N"                                            yaml:"ingestLimit"`
	EmbedURL         string `help:"URL of the OpenAI-compatible embedding service."                                 name:"embed-url"         placeholder:"URL"  required:"" yaml:"embedUrl"`
	EmbedModel       string `help:"Name of the embedding model to request."                                         name:"embed-model"       placeholder:"NAME" required:"" yaml:"embedModel"`
	LLMURL           string `help:"URL of the OpenAI-compatible LLM service; accepted but not used by the ingest pipeline." name:"llm-url"           placeholder:"URL"  yaml:"llmUrl"`
	LLMModel         string `help:"Name of the LLM model."                                                          name:"llm-model"         placeholder:"NAME" yaml:"llmModel"`
}

// Validate enforces the command's input invariants beyond what kong's
// struct tags already express.
func (c *IngestConfig) Validate() error {
	if c.IngestLimit < 0 {
		return errors.New("ingest limit cannot be negative")
	}
	return nil
}

// ServeConfig is the `serve` command's full flag surface, fixed by
// spec.md §6.
//
//nolint:lll
type ServeConfig struct {
	Globals `yaml:",inline"`

	Host             string `default:"${defaultHost}" help:"Host to bind to." name:"host" placeholder:"HOST" yaml:"host"`
	Port             int    `default:"${defaultPort}" help:"Port to listen on." name:"port" placeholder:"PORT" yaml:"port"`
	DocstoreURL      string `help:"Connection URL for the relational document store (postgres:// or sqlite://)." name:"docstore-url" placeholder:"URL" required:"" yaml:"docstoreUrl"`
	RedisURL         string `help:"Connection URL for the shared Redis document cache. Optional." name:"redis-url" placeholder:"URL" yaml:"redisUrl"`
	IndexURL         string `help:"URL of the trained vector index's search service." name:"index-url" placeholder:"URL" required:"" yaml:"indexUrl"`
	SystemPromptPath string `help:"Path to the system prompt template." name:"system-prompt-path" placeholder:"PATH" required:"" type:"existingfile" yaml:"systemPromptPath"`
	EmbedURL         string `help:"URL of the OpenAI-compatible embedding service." name:"embed-url" placeholder:"URL" required:"" yaml:"embedUrl"`
	EmbedModel       string `help:"Name of the embedding model to request." name:"embed-model" placeholder:"NAME" required:"" yaml:"embedModel"`
	LLMURL           string `help:"URL of the OpenAI-compatible LLM service." name:"llm-url" placeholder:"URL" required:"" yaml:"llmUrl"`
	LLMModel         string `help:"Name of the LLM model." name:"llm-model" placeholder:"NAME" required:"" yaml:"llmModel"`
}

// Validate enforces the command's input invariants beyond what kong's
// struct tags already express.
func (c *ServeConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}
