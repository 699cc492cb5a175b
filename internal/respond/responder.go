// Package respond orchestrates the answer pipeline: arithmetic check,
// teaching check, retrieval, then category-specific formatting.
package respond

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/manabu/internal/arith"
	"github.com/hyperjump/manabu/internal/models"
	"github.com/hyperjump/manabu/internal/patterns"
	"github.com/hyperjump/manabu/internal/tokenize"
)

// Store is the write-capable slice of the fact store the responder needs.
type Store interface {
	Insert(ctx context.Context, fact *models.Fact) (string, error)
	ExistsByContent(ctx context.Context, content string) (bool, error)
}

// Retriever finds the best stored fact for a query. A (nil, nil) return is a
// miss, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (*models.Fact, error)
	Suggest(ctx context.Context, query string) (string, error)
}

// Classifier assigns a category to free text.
type Classifier interface {
	Classify(ctx context.Context, text string) models.Classification
}

// teachPrefixes start an explicit teach command; the prefix is stripped
// before pattern matching.
var teachPrefixes = []string{"learn:", "teach:", "remember:"}

// interrogatives mark a message as a question, which routes to retrieval
// rather than teaching. "what is X" without an answer carries no knowledge to
// store; the same phrasing is the prototypical lookup.
var interrogatives = []string{"what", "who", "where", "when", "why", "how", "which"}

const (
	// unknownAnswer is the fixed retrieval-miss response.
	unknownAnswer = "I don't know this yet. Teach me, for example: \"the capital of France is Paris\" or \"5 + 3 = 8\"."
	// defaultRetrievalConfidence applies when a retrieved fact recorded none.
	defaultRetrievalConfidence = 0.8
)

// Responder runs the four-state answer pipeline for one message at a time.
// It holds no per-request state, so a single Responder serves concurrent
// requests.
type Responder struct {
	store      Store
	retriever  Retriever
	classifier Classifier
	library    *patterns.Library
	logger     *zap.Logger
}

// New creates a responder.
func New(store Store, retriever Retriever, classifier Classifier, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{
		store:      store,
		retriever:  retriever,
		classifier: classifier,
		library:    patterns.NewLibrary(),
		logger:     logger,
	}
}

// Respond computes the answer for message. Store failures propagate as
// errors; everything else degrades to a softer state (an unparseable
// expression falls through to teaching, a retrieval miss becomes a teach-me
// prompt).
func (r *Responder) Respond(ctx context.Context, message string) (*models.Answer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("message must not be empty")
	}

	if answer := r.cannedAnswer(message); answer != nil {
		return answer, nil
	}

	if answer := r.arithmeticCheck(message); answer != nil {
		return answer, nil
	}

	answer, err := r.teachingCheck(ctx, message)
	if err != nil {
		return nil, err
	}
	if answer != nil {
		return answer, nil
	}

	return r.retrieval(ctx, message)
}

// arithmeticCheck answers a bare expression immediately. Malformed or
// non-finite results fall through to the next state rather than erroring,
// and the store's teaching path is never touched.
func (r *Responder) arithmeticCheck(message string) *models.Answer {
	if !arith.IsExpression(message) {
		return nil
	}
	v, err := arith.Evaluate(message)
	if err != nil || !arith.IsFinite(v) {
		return nil
	}
	return &models.Answer{
		Text:       fmt.Sprintf("%s = %s", arith.Compact(message), arith.FormatResult(v)),
		Confidence: 1,
		Category:   models.CategoryMath,
	}
}

// teachingCheck persists a fact when the message teaches one. Questions are
// never teachings: a bare "what is X" routes to retrieval instead. An
// explicit teach command that matches no structured rule degrades to passive
// logging of the raw message. Returns (nil, nil) when the message is not a
// teaching at all.
func (r *Responder) teachingCheck(ctx context.Context, message string) (*models.Answer, error) {
	body, explicit := stripTeachPrefix(message)
	if !explicit && isQuestion(message) {
		return nil, nil
	}

	ex := r.library.Match(body)
	if ex == nil {
		if !explicit {
			return nil, nil
		}
		return r.logRaw(ctx, body)
	}
	if ex.Type == "calculation" {
		return r.teachArithmetic(ctx, ex)
	}
	return r.teachStructured(ctx, ex)
}

// teachArithmetic validates a taught equation against the evaluator before
// persisting: the recomputed left side must equal the claimed result
// bit-exactly. A wrong claim is answered with the recomputed truth and not
// stored. Valid equations are canonicalized to the compact "expr = result"
// form before the duplicate lookup and the insert, so spacing variants and
// re-taught seeded table entries all resolve to the same stored content.
func (r *Responder) teachArithmetic(ctx context.Context, ex *patterns.Extraction) (*models.Answer, error) {
	if !arith.ValidateEquation(ex.Expression, ex.ClaimedResult) {
		v, err := arith.Evaluate(ex.Expression)
		if err != nil || !arith.IsFinite(v) {
			return &models.Answer{
				Text:       fmt.Sprintf("I can't verify %s.", ex.Term),
				Confidence: 0,
				Category:   models.CategoryMath,
			}, nil
		}
		return &models.Answer{
			Text:       fmt.Sprintf("Actually, %s = %s.", ex.Term, arith.FormatResult(v)),
			Confidence: 1,
			Category:   models.CategoryMath,
		}, nil
	}

	ex.Content = fmt.Sprintf("%s = %s", ex.Term, arith.FormatResult(ex.ClaimedResult))
	exists, err := r.store.ExistsByContent(ctx, ex.Content)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if !exists {
		if err := r.persist(ctx, ex, models.SourceUserTeaching, 1); err != nil {
			return nil, err
		}
	}
	return &models.Answer{
		Text:       fmt.Sprintf("Got it: %s = %s.", ex.Term, arith.FormatResult(ex.ClaimedResult)),
		Confidence: 1,
		Category:   models.CategoryMath,
		Learned:    !exists,
	}, nil
}

func (r *Responder) teachStructured(ctx context.Context, ex *patterns.Extraction) (*models.Answer, error) {
	cls := r.classifier.Classify(ctx, ex.Content)
	if err := r.persist(ctx, ex, models.SourceUserTeaching, cls.Confidence); err != nil {
		return nil, err
	}
	return &models.Answer{
		Text:       fmt.Sprintf("Understood. I'll remember that about %s.", ex.Term),
		Confidence: 1,
		Category:   ex.Category,
		Learned:    true,
	}, nil
}

// logRaw is teaching rule 5: no structured extraction, the raw message stored
// as a general conversational record with the classifier's category.
// Teaching never fails outright; it degrades to this.
func (r *Responder) logRaw(ctx context.Context, body string) (*models.Answer, error) {
	cls := r.classifier.Classify(ctx, body)
	fact := &models.Fact{
		Content:    body,
		Category:   cls.Category,
		Source:     models.SourceUserInput,
		Path:       "conversation",
		Tokens:     tokenize.Normalize(body),
		Confidence: cls.Confidence,
	}
	if _, err := r.store.Insert(ctx, fact); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return &models.Answer{
		Text:       "Noted.",
		Confidence: 1,
		Category:   cls.Category,
		Learned:    true,
	}, nil
}

func (r *Responder) persist(ctx context.Context, ex *patterns.Extraction, source string, confidence float64) error {
	fact := &models.Fact{
		Content:    ex.Content,
		Term:       ex.Term,
		Category:   ex.Category,
		Type:       ex.Type,
		Source:     source,
		Path:       ex.Path,
		Tokens:     tokenize.Normalize(ex.Content),
		Confidence: confidence,
	}
	id, err := r.store.Insert(ctx, fact)
	if err != nil {
		return fmt.Errorf("failed to store fact: %w", err)
	}
	r.logger.Info("learned fact",
		zap.String("fact_id", id),
		zap.String("term", ex.Term),
		zap.String("category", string(ex.Category)),
	)
	return nil
}

// retrieval answers from the store. A miss yields the fixed teach-me prompt
// with confidence 0, optionally carrying a near-match term suggestion.
func (r *Responder) retrieval(ctx context.Context, message string) (*models.Answer, error) {
	fact, err := r.retriever.Retrieve(ctx, message)
	if err != nil {
		return nil, err
	}
	if fact == nil {
		answer := &models.Answer{Text: unknownAnswer, Confidence: 0}
		if suggestion, err := r.retriever.Suggest(ctx, message); err == nil && suggestion != "" {
			answer.Suggestion = suggestion
			answer.Text = fmt.Sprintf("%s Did you mean %q?", unknownAnswer, suggestion)
		}
		return answer, nil
	}

	confidence := fact.Confidence
	if confidence == 0 {
		confidence = defaultRetrievalConfidence
	}
	return &models.Answer{
		Text:       Format(fact),
		Confidence: confidence,
		Category:   fact.Category,
	}, nil
}

// cannedAnswer handles the one fixed override: the literal HTML document
// structure question always gets the skeleton document, regardless of store
// contents.
func (r *Responder) cannedAnswer(message string) *models.Answer {
	if tokenize.NormalizeString(message) != "explain the html document structure" {
		return nil
	}
	return &models.Answer{
		Text:       htmlSkeleton,
		Confidence: 1,
		Category:   models.CategoryHTML,
	}
}

func stripTeachPrefix(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, prefix := range teachPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(message[len(prefix):]), true
		}
	}
	return message, false
}

func isQuestion(message string) bool {
	if strings.HasSuffix(strings.TrimSpace(message), "?") {
		return true
	}
	tokens := tokenize.Normalize(message)
	if len(tokens) == 0 {
		return false
	}
	for _, w := range interrogatives {
		if tokens[0] == w {
			return true
		}
	}
	return false
}
