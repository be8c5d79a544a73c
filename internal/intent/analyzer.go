// Package intent scores queries against the four product intents by
// combining keyword, semantic, entity and context signals.
package intent

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/embedding"
	"github.com/skarvik/produktbot/internal/models"
)

// Signal weights. They sum to 1 so combined scores stay in [0,1] as long as
// each signal does.
const (
	keywordWeight  = 0.35
	semanticWeight = 0.30
	entityWeight   = 0.25
	contextWeight  = 0.10
)

// Analyzer combines the four intent signals into a ranked intent list.
type Analyzer struct {
	embedder embedding.Embedder
	logger   *zap.Logger
	// protoVecs holds the mean prototype embedding per intent. Empty when
	// the embedder is unavailable, which zeroes the semantic signal.
	protoVecs map[models.Intent][]float32
}

// NewAnalyzer builds an analyzer and precomputes prototype embeddings.
func NewAnalyzer(ctx context.Context, embedder embedding.Embedder, logger *zap.Logger) *Analyzer {
	if embedder == nil {
		embedder = embedding.NewNullEmbedder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analyzer{
		embedder:  embedder,
		logger:    logger,
		protoVecs: make(map[models.Intent][]float32),
	}

	for _, it := range models.AllIntents() {
		vecs, err := embedder.EmbedBatch(ctx, intentPrototypes[it])
		if err != nil {
			a.logger.Info("semantic intent scoring disabled", zap.Error(err))
			a.protoVecs = make(map[models.Intent][]float32)
			break
		}
		a.protoVecs[it] = meanVector(vecs)
	}
	return a
}

// Analyze scores text against all intents and picks the primary one.
// sessionCtx may be nil.
func (a *Analyzer) Analyze(ctx context.Context, text string, entities []models.Entity, sessionCtx *models.SessionContext) *models.IntentAnalysis {
	keyword := a.keywordScores(text)
	semantic := a.semanticScores(ctx, text)
	entity := a.entityScores(entities)
	contextual := a.contextScores(sessionCtx)

	combined := make(map[models.Intent]float64, 4)
	for _, it := range models.AllIntents() {
		combined[it] = keyword[it]*keywordWeight +
			semantic[it]*semanticWeight +
			entity[it]*entityWeight +
			contextual[it]*contextWeight
	}

	primary, confidence := determinePrimary(combined)

	scores := make([]models.IntentScore, 0, len(combined))
	for _, it := range models.AllIntents() {
		scores = append(scores, models.IntentScore{Intent: it, Score: combined[it]})
	}
	sortScores(scores)

	return &models.IntentAnalysis{
		Intents:        scores,
		Primary:        primary,
		Confidence:     confidence,
		KeywordScores:  keyword,
		SemanticScores: semantic,
		EntityScores:   entity,
		ContextScores:  contextual,
	}
}

// keywordScores counts cue-phrase hits per intent, normalized by list length.
// A query with no hits at all defaults to a weak summary signal.
func (a *Analyzer) keywordScores(text string) map[models.Intent]float64 {
	textLower := strings.ToLower(text)
	scores := zeroScores()

	anyHit := false
	for it, keywords := range intentKeywords {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(textLower, kw) {
				hits++
			}
		}
		if hits > 0 {
			anyHit = true
			scores[it] = float64(hits) / float64(len(keywords))
		}
	}
	if !anyHit {
		scores[models.IntentSummary] = 0.1
	}
	return scores
}

// semanticScores compares the query embedding against each intent's mean
// prototype embedding. Cosine similarity is rescaled from [-1,1] to [0,1].
func (a *Analyzer) semanticScores(ctx context.Context, text string) map[models.Intent]float64 {
	scores := zeroScores()
	if len(a.protoVecs) == 0 {
		return scores
	}

	vec, err := a.embedder.Embed(ctx, text)
	if err != nil {
		a.logger.Warn("query embedding failed", zap.Error(err))
		return scores
	}

	for it, proto := range a.protoVecs {
		sim := cosine(vec, proto)
		scores[it] = math.Max(0, math.Min(1, (sim+1)/2))
	}
	return scores
}

func (a *Analyzer) entityScores(entities []models.Entity) map[models.Intent]float64 {
	scores := zeroScores()

	counts := make(map[models.EntityType]int)
	for _, e := range entities {
		counts[e.Type]++
	}

	if n := counts[models.EntityDimension]; n > 0 {
		scores[models.IntentTechnical] += 0.6 * float64(min(n, 3)) / 3
	}
	if counts[models.EntityCompatibility] > 0 {
		scores[models.IntentCompatibility] += 0.8
	}
	if n := counts[models.EntityProduct]; n > 0 {
		if n > 1 {
			scores[models.IntentSearch] += 0.5
		} else {
			scores[models.IntentSummary] += 0.4
			scores[models.IntentTechnical] += 0.3
		}
	}
	if counts[models.EntityProduct] > 1 && counts[models.EntityCompatibility] > 0 {
		scores[models.IntentCompatibility] += 0.3
	}
	if len(entities) == 0 {
		scores[models.IntentSummary] += 0.2
	}
	return scores
}

func (a *Analyzer) contextScores(sessionCtx *models.SessionContext) map[models.Intent]float64 {
	scores := zeroScores()
	if sessionCtx == nil || len(sessionCtx.QueryHistory) == 0 {
		scores[models.IntentSummary] += 0.1
		return scores
	}

	switch sessionCtx.PreviousIntent {
	case models.IntentSummary:
		scores[models.IntentTechnical] += 0.2
		scores[models.IntentCompatibility] += 0.2
	case models.IntentTechnical:
		scores[models.IntentTechnical] += 0.3
	case models.IntentCompatibility:
		scores[models.IntentCompatibility] += 0.3
	}
	if sessionCtx.PreviousIntent == models.IntentSearch && sessionCtx.ActiveProductID != "" {
		scores[models.IntentSummary] += 0.4
	}
	return scores
}

// determinePrimary picks the highest-scoring intent and adjusts confidence by
// the margin to the runner-up: a close race dampens it, a clear win boosts it.
func determinePrimary(combined map[models.Intent]float64) (models.Intent, float64) {
	if len(combined) == 0 {
		return models.IntentSummary, 0.1
	}

	primary := models.IntentSummary
	best := math.Inf(-1)
	runnerUp := math.Inf(-1)
	for _, it := range models.AllIntents() {
		score := combined[it]
		if score > best {
			runnerUp = best
			best = score
			primary = it
		} else if score > runnerUp {
			runnerUp = score
		}
	}

	confidence := best
	if !math.IsInf(runnerUp, -1) {
		margin := best - runnerUp
		if margin < 0.1 {
			confidence = best * 0.8
		} else if margin > 0.3 {
			confidence = math.Min(1.0, best*1.1)
		}
	}
	return primary, confidence
}

// sortScores orders by score descending, breaking ties on intent name so the
// ranking is deterministic.
func sortScores(scores []models.IntentScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Intent < scores[j].Intent
	})
}

func zeroScores() map[models.Intent]float64 {
	return map[models.Intent]float64{
		models.IntentTechnical:     0,
		models.IntentCompatibility: 0,
		models.IntentSummary:       0,
		models.IntentSearch:        0,
	}
}

func meanVector(vecs [][]float32) []float32 {
	if len(vecs) == 0 {
		return nil
	}
	mean := make([]float32, len(vecs[0]))
	for _, v := range vecs {
		for i := range mean {
			mean[i] += v[i]
		}
	}
	for i := range mean {
		mean[i] /= float32(len(vecs))
	}
	return mean
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
