package jongo

import (
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jongo-go/jongo/pkg/constants"
	"github.com/jongo-go/jongo/pkg/logger"
	"github.com/jongo-go/jongo/pkg/marshal"
	"github.com/jongo-go/jongo/pkg/models"
	"github.com/jongo-go/jongo/pkg/query"
)

// Config holds the collaborators shared by collections.
type Config struct {
	Marshaller   marshal.Marshaller
	Unmarshaller marshal.Unmarshaller

	Logger logger.Logger
	Tracer trace.Tracer

	// TemplateCacheSize bounds the number of parsed templates kept per collection.
	TemplateCacheSize int

	IDGenerator models.IDGenerator

	// Renderer binds parameters into templates. When nil, one rendering through Marshaller is created.
	Renderer *query.Renderer
}

// NewConfig returns a Config using the BSON codec, a text logger on stdout and a no-op tracer.
// A Config built by hand must set Marshaller and Unmarshaller; the other fields fall back
// to these defaults when left unset.
func NewConfig() *Config {
	codec := marshal.NewBSONCodec()
	return &Config{
		Marshaller:        codec,
		Unmarshaller:      codec,
		Logger:            logger.New(slog.NewTextHandler(os.Stdout, nil)),
		Tracer:            noop.NewTracerProvider().Tracer(constants.DefaultTracerName),
		TemplateCacheSize: constants.DefaultTemplateCacheSize,
		IDGenerator:       models.NewIDGenerator(),
	}
}

// withDefaults returns a copy of c with nil collaborators replaced by defaults.
func (c *Config) withDefaults() *Config {
	out := NewConfig()
	if c == nil {
		return out
	}

	cfg := *c
	if cfg.Logger == nil {
		cfg.Logger = out.Logger
	}
	if cfg.Tracer == nil {
		cfg.Tracer = out.Tracer
	}
	if cfg.TemplateCacheSize <= 0 {
		cfg.TemplateCacheSize = out.TemplateCacheSize
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = out.IDGenerator
	}
	return &cfg
}
