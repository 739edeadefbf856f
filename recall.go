// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package recall

import (
	"context"
	"log/slog"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/openai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/ingest"
	"github.com/poiesic/recall/profile"
	profilebadger "github.com/poiesic/recall/profile/badger"
	"github.com/poiesic/recall/query"
	"github.com/poiesic/recall/source"
	"github.com/poiesic/recall/vectorstore"
	"github.com/poiesic/recall/vectorstore/chromem"
)

// Engine wires the full pipeline together: vector store, profile
// registry, AI provider, ingestion, and query answering.
type Engine struct {
	store     vectorstore.Store
	registry  profile.Registry
	provider  ai.Provider
	pipeline  *ingest.Pipeline
	retriever *query.Retriever
	service   *query.Service
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	inMemory     bool
	pipelineOps  []ingest.Option
	retrievalOps []query.RetrieverOption
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider injects a prebuilt AI provider, bypassing the OpenAI
// provider constructed from the config. Used by tests.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps both the vector store and the registry in memory.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithIngestOptions forwards options to the ingestion pipeline.
func WithIngestOptions(opts ...ingest.Option) EngineOption {
	return func(o *engineOptions) {
		o.pipelineOps = append(o.pipelineOps, opts...)
	}
}

// WithRetrieverOptions forwards options to the retriever.
func WithRetrieverOptions(opts ...query.RetrieverOption) EngineOption {
	return func(o *engineOptions) {
		o.retrievalOps = append(o.retrievalOps, opts...)
	}
}

// Open creates an Engine with its stores under vectorDir and
// registryDir. Both paths are ignored when WithInMemory is set.
func Open(vectorDir, registryDir string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	var (
		store *chromem.Store
		err   error
	)
	if options.inMemory {
		store = chromem.OpenInMemory()
	} else {
		store, err = chromem.Open(vectorDir)
		if err != nil {
			return nil, err
		}
	}

	registry, err := profilebadger.Open(registryDir, options.inMemory)
	if err != nil {
		store.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			registry.Close()
			store.Close()
			return nil, err
		}
	}

	pipeline, err := ingest.NewPipeline(provider.Embedder(), store, registry, options.pipelineOps...)
	if err != nil {
		provider.Close()
		registry.Close()
		store.Close()
		return nil, err
	}

	retriever, err := query.NewRetriever(provider.Embedder(), store, options.retrievalOps...)
	if err != nil {
		provider.Close()
		registry.Close()
		store.Close()
		return nil, err
	}

	service := query.NewService(registry, retriever, query.NewGenerator(provider.ChatModel()))

	return &Engine{
		store:     store,
		registry:  registry,
		provider:  provider,
		pipeline:  pipeline,
		retriever: retriever,
		service:   service,
		logger:    slog.Default(),
	}, nil
}

// Ingest chunks, embeds, and stores docs for userID. collectionName may
// be empty to generate a fresh name.
func (e *Engine) Ingest(ctx context.Context, userID string, docs []core.Document, collectionName string) (ingest.Result, error) {
	return e.pipeline.Ingest(ctx, userID, docs, collectionName)
}

// IngestSources loads every source, merging their documents into a
// single ingestion. Sources that fail to load are skipped.
func (e *Engine) IngestSources(ctx context.Context, userID, collectionName string, sources ...source.Source) (ingest.Result, error) {
	docs := source.Collect(ctx, sources...)
	return e.pipeline.Ingest(ctx, userID, docs, collectionName)
}

// Query answers question for userID against everything they have
// ingested. onToken, when non-nil, streams answer tokens.
func (e *Engine) Query(ctx context.Context, userID, question string, history []core.Turn, onToken func(token string)) (*core.QueryState, error) {
	return e.service.Query(ctx, userID, question, history, onToken)
}

// Collections returns the collections owned by userID.
func (e *Engine) Collections(ctx context.Context, userID string) ([]string, error) {
	return e.registry.Collections(ctx, userID)
}

// Users returns all users with at least one collection.
func (e *Engine) Users(ctx context.Context) ([]string, error) {
	return e.registry.Users(ctx)
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	e.retriever.Release()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.registry.Close(); err != nil {
		e.logger.Error("error closing registry", "err", err)
		return err
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}
