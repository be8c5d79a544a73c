// Package engine orchestrates the query pipeline: command dispatch,
// preprocessing, entity extraction, intent analysis, data access and
// response generation.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/config"
	"github.com/skarvik/produktbot/internal/corpus"
	"github.com/skarvik/produktbot/internal/dialog"
	"github.com/skarvik/produktbot/internal/embedding"
	"github.com/skarvik/produktbot/internal/intent"
	"github.com/skarvik/produktbot/internal/metrics"
	"github.com/skarvik/produktbot/internal/models"
	"github.com/skarvik/produktbot/internal/nlp"
)

// Confidence thresholds below config.Engine.MinConfidence:
//
//	confidence >= min_confidence          answer normally
//	clarify <= confidence < min           answer with a disclaimer
//	intentMenu <= confidence < clarify    ask which product/intent is meant
//	confidence < intentMenu               also offer the intent menu
const (
	clarifyThreshold    = 0.4
	intentMenuThreshold = 0.3
)

var commandRe = regexp.MustCompile(`^(-[tcfs])\s+(\S+)(.*)$`)

// Command is a parsed structured command such as "-t 50091812".
type Command struct {
	Kind      string // "t", "c", "s" or "f"
	ProductID string
	Params    string
}

// ParseCommand parses a structured command. Returns false for natural
// language input.
func ParseCommand(input string) (*Command, bool) {
	m := commandRe.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return nil, false
	}
	return &Command{
		Kind:      strings.TrimPrefix(m[1], "-"),
		ProductID: m[2],
		Params:    strings.TrimSpace(m[3]),
	}, true
}

// Stats is a snapshot of engine counters.
type Stats struct {
	TotalQueries           int64            `json:"total_queries"`
	SuccessfulQueries      int64            `json:"successful_queries"`
	CommandQueries         int64            `json:"command_queries"`
	NaturalLanguageQueries int64            `json:"natural_language_queries"`
	AmbiguousQueries       int64            `json:"ambiguous_queries"`
	Failures               int64            `json:"failures"`
	SuccessRate            float64          `json:"success_rate"`
	UptimeSeconds          float64          `json:"uptime_seconds"`
	CachedResponses        int              `json:"cached_responses"`
	Corpus                 corpus.StoreStats `json:"corpus"`
}

// Engine wires the pipeline components together. It is safe for concurrent
// use as long as each session context is used by one request at a time.
type Engine struct {
	cfg       *config.Config
	store     *corpus.Store
	extractor *nlp.Extractor
	intents   *intent.Analyzer
	contexts  *dialog.ContextManager
	generator *dialog.Generator
	cache     *responseCache
	logger    *zap.Logger

	mu        sync.Mutex
	stats     Stats
	startTime time.Time
}

// New builds an engine over the given corpus store. The embedder and
// recognizer may be nil, which disables semantic scoring and the NER pass.
func New(ctx context.Context, cfg *config.Config, store *corpus.Store, embedder embedding.Embedder, recognizer nlp.EntityRecognizer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if embedder == nil {
		embedder = embedding.NewNullEmbedder()
	}

	return &Engine{
		cfg:       cfg,
		store:     store,
		extractor: nlp.NewExtractor(store, recognizer, logger.Named("extractor")),
		intents:   intent.NewAnalyzer(ctx, embedder, logger.Named("intent")),
		contexts:  dialog.NewContextManager(),
		generator: dialog.NewGenerator(cfg, store, logger.Named("generator")),
		cache:     newResponseCache(cfg.Engine.ResponseCacheSize),
		logger:    logger,
		startTime: time.Now(),
	}
}

// ProcessInput handles one user input, structured command or natural
// language, against the given session.
func (e *Engine) ProcessInput(ctx context.Context, input string, sessionCtx *models.SessionContext) *models.Response {
	input = strings.TrimSpace(input)
	if cmd, ok := ParseCommand(input); ok {
		return e.ExecuteCommand(cmd.Kind, cmd.ProductID, cmd.Params, sessionCtx)
	}
	return e.processNaturalLanguage(ctx, input, sessionCtx)
}

// ExecuteCommand runs a structured command directly. kind is the command
// letter without the dash ("t", "c", "s" or "f") and params is the free-text
// filter applied by the specs and compatibility lookups.
func (e *Engine) ExecuteCommand(kind, productID, params string, sessionCtx *models.SessionContext) (resp *models.Response) {
	start := time.Now()
	if sessionCtx == nil {
		sessionCtx = models.NewSessionContext()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic while executing command", zap.Any("panic", r), zap.String("kind", kind))
			e.count(func(s *Stats) { s.Failures++ })
			resp = e.errorResponse(fmt.Sprintf("Ett fel uppstod vid analys av din fråga: %v", r))
		}
		resp.ProcessingMS = time.Since(start).Milliseconds()
		resp.Timestamp = time.Now()
		metrics.QueryDuration.WithLabelValues(resp.Type).Observe(time.Since(start).Seconds())
		metrics.QueryTotal.WithLabelValues(resp.Type, resp.Status).Inc()
	}()

	e.count(func(s *Stats) {
		s.TotalQueries++
		s.CommandQueries++
	})
	sessionCtx.AppendQuery(commandText(kind, productID, params))

	if !e.store.ValidateProductID(productID) {
		e.count(func(s *Stats) { s.Failures++ })
		return e.errorResponse(fmt.Sprintf("Ogiltig produkt: %s", productID))
	}

	e.contexts.Update(sessionCtx, productID, "", "")

	cacheKey := fmt.Sprintf("%s:%s:%s", kind, productID, params)
	if cached, ok := e.cache.get(cacheKey); ok {
		metrics.CacheHits.WithLabelValues("response").Inc()
		e.count(func(s *Stats) { s.SuccessfulQueries++ })
		return cached
	}
	metrics.CacheMisses.WithLabelValues("response").Inc()

	var outcome corpus.Outcome
	switch kind {
	case "t":
		outcome = e.store.GetTechnicalSpecs(productID, params)
	case "c":
		outcome = e.store.GetCompatibility(productID, params)
	case "s":
		outcome = e.store.GetSummary(productID)
	case "f":
		outcome = e.store.GetFullInfo(productID)
	default:
		e.count(func(s *Stats) { s.Failures++ })
		return e.errorResponse(fmt.Sprintf("Okänt kommando: -%s", kind))
	}

	result := outcome.Outcome()
	resp = &models.Response{
		Status:    result.Status,
		Type:      "command",
		Text:      e.generator.FormatCommandResponse(kind, productID, outcome),
		ProductID: productID,
	}

	if result.Status == models.StatusSuccess {
		e.count(func(s *Stats) { s.SuccessfulQueries++ })
		e.cache.set(cacheKey, resp)
	} else {
		e.count(func(s *Stats) { s.Failures++ })
	}
	return resp
}

// commandText reconstructs the chat form of a command for the history.
func commandText(kind, productID, params string) string {
	text := fmt.Sprintf("-%s %s", kind, productID)
	if params != "" {
		text += " " + params
	}
	return text
}

func (e *Engine) processNaturalLanguage(ctx context.Context, input string, sessionCtx *models.SessionContext) (resp *models.Response) {
	start := time.Now()
	if sessionCtx == nil {
		sessionCtx = models.NewSessionContext()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic while processing input", zap.Any("panic", r), zap.String("input", input))
			e.count(func(s *Stats) { s.Failures++ })
			resp = e.errorResponse(fmt.Sprintf("Ett fel uppstod vid analys av din fråga: %v", r))
		}
		resp.ProcessingMS = time.Since(start).Milliseconds()
		resp.Timestamp = time.Now()
		metrics.QueryDuration.WithLabelValues(resp.Type).Observe(time.Since(start).Seconds())
		metrics.QueryTotal.WithLabelValues(resp.Type, resp.Status).Inc()
	}()

	e.count(func(s *Stats) {
		s.TotalQueries++
		s.NaturalLanguageQueries++
	})
	sessionCtx.AppendQuery(input)

	processed := nlp.Preprocess(input)
	contextAnalysis := e.contexts.Analyze(input, sessionCtx)
	entities := e.extractor.Extract(processed, sessionCtx)
	intentAnalysis := e.intents.Analyze(ctx, processed, entities, sessionCtx)

	analysis := &models.QueryAnalysis{
		OriginalText: input,
		CleanedText:  processed,
		Entities:     entities,
		Intent:       intentAnalysis,
		Context:      contextAnalysis,
	}

	e.logger.Debug("query analyzed",
		zap.String("input", input),
		zap.String("intent", string(intentAnalysis.Primary)),
		zap.Float64("confidence", intentAnalysis.Confidence),
		zap.Int("entities", len(entities)))
	metrics.IntentConfidence.Observe(intentAnalysis.Confidence)
	metrics.EntitiesExtracted.Observe(float64(len(entities)))

	if intentAnalysis.Confidence < e.cfg.Engine.MinConfidence {
		return e.handleLowConfidence(ctx, analysis, sessionCtx)
	}

	outcome, productID := e.executeIntent(analysis, sessionCtx)
	analysis.TargetProduct = productID
	result := outcome.Outcome()

	e.contexts.Update(sessionCtx, productID, "", intentAnalysis.Primary)

	if result.Status == models.StatusSuccess {
		e.count(func(s *Stats) { s.SuccessfulQueries++ })
	} else {
		e.count(func(s *Stats) { s.Failures++ })
	}

	return &models.Response{
		Status:     result.Status,
		Type:       "natural_language",
		Text:       e.generator.GenerateResponse(analysis, outcome, sessionCtx),
		ProductID:  productID,
		Intent:     intentAnalysis.Primary,
		Confidence: intentAnalysis.Confidence,
		Entities:   entities,
	}
}

func (e *Engine) handleLowConfidence(ctx context.Context, analysis *models.QueryAnalysis, sessionCtx *models.SessionContext) *models.Response {
	e.count(func(s *Stats) { s.AmbiguousQueries++ })
	confidence := analysis.Intent.Confidence

	if confidence < clarifyThreshold {
		question := e.clarificationQuestion(analysis)
		return &models.Response{
			Status:        models.StatusNeedsClarification,
			Type:          "clarification_request",
			Text:          e.generator.ClarificationResponse(analysis, question),
			Intent:        analysis.Intent.Primary,
			Confidence:    confidence,
			Entities:      analysis.Entities,
			Clarification: question,
		}
	}

	// Middling confidence: answer the best guess, flagged as such.
	outcome, productID := e.executeIntent(analysis, sessionCtx)
	analysis.TargetProduct = productID
	e.contexts.Update(sessionCtx, productID, "", analysis.Intent.Primary)

	return &models.Response{
		Status:     models.StatusLowConfidence,
		Type:       "best_guess",
		Text:       e.generator.LowConfidenceResponse(analysis, outcome, sessionCtx),
		ProductID:  productID,
		Intent:     analysis.Intent.Primary,
		Confidence: confidence,
		Entities:   analysis.Entities,
	}
}

// clarificationQuestion builds the most useful disambiguation question:
// several product candidates get a product choice, none at all gets product
// suggestions from search, and a truly unclear intent gets the intent menu.
func (e *Engine) clarificationQuestion(analysis *models.QueryAnalysis) *models.ClarificationQuestion {
	var products []models.Entity
	for _, ent := range analysis.Entities {
		if ent.Type == models.EntityProduct {
			products = append(products, ent)
		}
	}

	if len(products) > 1 {
		var options []models.ClarificationOption
		for _, ent := range products {
			if len(options) == 4 {
				break
			}
			options = append(options, models.ClarificationOption{ID: ent.ProductID, Label: ent.Text})
		}
		return &models.ClarificationQuestion{
			Kind:    "product_selection",
			Text:    "Vilken av dessa produkter menar du?",
			Options: options,
		}
	}

	if len(products) == 0 {
		if suggestions := e.store.SuggestProducts(analysis.OriginalText, 4); len(suggestions) > 0 {
			var options []models.ClarificationOption
			for _, m := range suggestions {
				options = append(options, models.ClarificationOption{ID: m.ProductID, Label: m.Name})
			}
			return &models.ClarificationQuestion{
				Kind:    "product_selection",
				Text:    "Jag är inte säker på vilken produkt du menar. Är det någon av dessa?",
				Options: options,
			}
		}
	}

	if analysis.Intent.Primary == "" || analysis.Intent.Confidence < intentMenuThreshold {
		return &models.ClarificationQuestion{
			Kind: "intent_selection",
			Text: "Vad vill du veta om produkten?",
			Options: []models.ClarificationOption{
				{ID: string(models.IntentTechnical), Label: "Tekniska specifikationer"},
				{ID: string(models.IntentCompatibility), Label: "Kompatibilitetsinformation"},
				{ID: string(models.IntentSummary), Label: "Allmän produktinformation"},
				{ID: string(models.IntentSearch), Label: "Sök efter produkter"},
			},
		}
	}
	return nil
}

// executeIntent fetches data for the primary intent. Returns the outcome and
// the product the query ended up concerning, if any.
func (e *Engine) executeIntent(analysis *models.QueryAnalysis, sessionCtx *models.SessionContext) (corpus.Outcome, string) {
	productID := ""
	for _, ent := range analysis.Entities {
		if ent.Type == models.EntityProduct && ent.ProductID != "" {
			productID = ent.ProductID
			break
		}
	}
	if productID == "" {
		productID = sessionCtx.ActiveProductID
	}

	if productID != "" {
		switch analysis.Intent.Primary {
		case models.IntentTechnical:
			return e.store.GetTechnicalSpecs(productID, ""), productID
		case models.IntentCompatibility:
			return e.store.GetCompatibility(productID, ""), productID
		case models.IntentSearch:
			return e.store.Search(e.searchTerms(analysis), e.cfg.Engine.MaxSearchResults), ""
		default:
			return e.store.GetSummary(productID), productID
		}
	}
	return e.store.Search(analysis.CleanedText, e.cfg.Engine.MaxSearchResults), ""
}

// searchTerms strips product mentions from the query so the search runs on
// the descriptive remainder, falling back to the cleaned text.
func (e *Engine) searchTerms(analysis *models.QueryAnalysis) string {
	var terms []string
	for _, ent := range analysis.Entities {
		if ent.Type != models.EntityProduct {
			terms = append(terms, ent.Text)
		}
	}
	if len(terms) == 0 {
		return analysis.CleanedText
	}
	return strings.Join(terms, " ")
}

func (e *Engine) errorResponse(message string) *models.Response {
	return &models.Response{
		Status: models.StatusError,
		Type:   "error",
		Text:   e.generator.ErrorResponse(message),
	}
}

func (e *Engine) count(update func(*Stats)) {
	e.mu.Lock()
	update(&e.stats)
	e.mu.Unlock()
}

// Stats returns a snapshot of engine counters with derived rates.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	snapshot := e.stats
	e.mu.Unlock()

	snapshot.UptimeSeconds = time.Since(e.startTime).Seconds()
	if snapshot.TotalQueries > 0 {
		snapshot.SuccessRate = float64(snapshot.SuccessfulQueries) / float64(snapshot.TotalQueries)
	}
	snapshot.CachedResponses = e.cache.len()
	snapshot.Corpus = e.store.Stats()
	return snapshot
}

// ConversationState exposes the dialog stage for a session.
func (e *Engine) ConversationState(sessionCtx *models.SessionContext) dialog.ConversationState {
	return e.contexts.State(sessionCtx)
}

// LearnFromInteraction records feedback about a response. Currently it only
// logs; the hook exists so transports can forward user feedback uniformly.
func (e *Engine) LearnFromInteraction(query string, resp *models.Response, helpful bool) {
	metrics.UserSatisfaction.WithLabelValues(fmt.Sprintf("%t", helpful)).Inc()
	e.logger.Info("interaction feedback",
		zap.String("query", query),
		zap.String("status", resp.Status),
		zap.Bool("helpful", helpful))
}
