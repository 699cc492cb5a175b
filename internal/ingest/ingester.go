package ingest

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/hyperjump/manabu/internal/models"
	"github.com/hyperjump/manabu/internal/retrieve"
	"github.com/hyperjump/manabu/internal/tokenize"
)

// Store is the slice of the fact store ingestion needs.
type Store interface {
	Insert(ctx context.Context, fact *models.Fact) (string, error)
	ExistsByContent(ctx context.Context, content string) (bool, error)
}

// Classifier assigns a category to each statement before it is stored.
type Classifier interface {
	Classify(ctx context.Context, text string) models.Classification
}

// Config bounds ingestion. The length bounds mirror the retrieval utility
// filter so ingestion never stores what retrieval would discard anyway.
type Config struct {
	MinStatementLength int
	MaxStatementLength int
	// MaxStatements caps how many statements one document may contribute.
	MaxStatements int
	// FetchTimeout bounds one URL fetch.
	FetchTimeout time.Duration
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MinStatementLength == 0 {
		c.MinStatementLength = 20
	}
	if c.MaxStatementLength == 0 {
		c.MaxStatementLength = 500
	}
	if c.MaxStatements == 0 {
		c.MaxStatements = 500
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 15 * time.Second
	}
}

// Result summarizes one ingestion run.
type Result struct {
	// Source is the file path or URL that was ingested.
	Source string `json:"source"`
	// Statements is how many candidate statements the text split into.
	Statements int `json:"statements"`
	// Stored is how many survived filtering and deduplication.
	Stored int `json:"stored"`
	// Skipped counts statements dropped by the utility filter or as
	// duplicates of already stored content.
	Skipped int `json:"skipped"`
}

// Ingester converts documents and pages into facts.
type Ingester struct {
	store      Store
	classifier Classifier
	extractor  *Extractor
	config     Config
	client     *http.Client
	logger     *zap.Logger
}

// New creates an ingester.
func New(store Store, classifier Classifier, config Config, logger *zap.Logger) *Ingester {
	config.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		store:      store,
		classifier: classifier,
		extractor:  NewExtractor(),
		config:     config,
		client:     &http.Client{Timeout: config.FetchTimeout},
		logger:     logger,
	}
}

// IngestFile extracts text from the file at path and stores its useful
// statements with file provenance.
func (i *Ingester) IngestFile(ctx context.Context, path string) (*Result, error) {
	text, err := i.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	return i.ingestText(ctx, text, models.SourceFileIngest, filepath.Base(path), path)
}

// IngestURL fetches the page, flattens it to text, and stores its useful
// statements with scrape provenance.
func (i *Ingester) IngestURL(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return i.ingestText(ctx, documentText(doc), models.SourceWebScrape, url, url)
}

// IngestText stores the useful statements of already extracted text.
func (i *Ingester) IngestText(ctx context.Context, text, path string) (*Result, error) {
	return i.ingestText(ctx, text, models.SourceFileIngest, path, path)
}

func (i *Ingester) ingestText(ctx context.Context, text, source, name, path string) (*Result, error) {
	statements := splitStatements(text)
	result := &Result{Source: name, Statements: len(statements)}

	for _, statement := range statements {
		if result.Stored >= i.config.MaxStatements {
			break
		}
		if !retrieve.Useful(statement, i.config.MinStatementLength, i.config.MaxStatementLength) {
			result.Skipped++
			continue
		}
		exists, err := i.store.ExistsByContent(ctx, statement)
		if err != nil {
			return result, fmt.Errorf("duplicate check failed: %w", err)
		}
		if exists {
			result.Skipped++
			continue
		}

		cls := i.classifier.Classify(ctx, statement)
		fact := &models.Fact{
			Content:    statement,
			Category:   cls.Category,
			Type:       "extracted",
			Source:     source,
			Path:       path,
			Tokens:     tokenize.Normalize(statement),
			Confidence: cls.Confidence,
		}
		if _, err := i.store.Insert(ctx, fact); err != nil {
			return result, fmt.Errorf("store statement: %w", err)
		}
		result.Stored++
	}

	i.logger.Info("ingested document",
		zap.String("source", name),
		zap.Int("statements", result.Statements),
		zap.Int("stored", result.Stored),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// statementBoundary splits on sentence enders followed by whitespace, and on
// line breaks. Decimal points survive because they are not followed by
// whitespace.
var statementBoundary = regexp.MustCompile(`[.!?]\s+|\n+`)

func splitStatements(text string) []string {
	parts := statementBoundary.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = tokenize.CollapseWhitespace(strings.TrimSuffix(strings.TrimSpace(p), "."))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
