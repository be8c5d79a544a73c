package nlp

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/skarvik/produktbot/internal/models"
)

// EntityRecognizer runs a named-entity pass over a query.
type EntityRecognizer interface {
	Recognize(text string) []models.Entity
}

// nerConfidence is the fixed confidence assigned to statistical NER hits.
const nerConfidence = 0.8

// nerLabelMap folds the recognizer's label set into the entity types the
// engine understands. Product names dominate the traffic, so the name-like
// labels all map to PRODUCT.
var nerLabelMap = map[string]models.EntityType{
	"PERSON":      models.EntityProduct,
	"GPE":         models.EntityProduct,
	"ORG":         models.EntityProduct,
	"WORK_OF_ART": models.EntityProduct,
	"QUANTITY":    models.EntityDimension,
}

type proseRecognizer struct {
	logger *zap.Logger
}

// NewProseRecognizer returns a recognizer backed by a statistical NER model.
func NewProseRecognizer(logger *zap.Logger) EntityRecognizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &proseRecognizer{logger: logger}
}

func (r *proseRecognizer) Recognize(text string) []models.Entity {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		r.logger.Warn("ner pass failed", zap.Error(err))
		return nil
	}

	var entities []models.Entity
	// The document reports entity text without offsets; spans are located by
	// scanning forward so repeated mentions land on distinct positions.
	searchFrom := 0
	for _, ent := range doc.Entities() {
		entityType, ok := nerLabelMap[ent.Label]
		if !ok {
			continue
		}
		start := strings.Index(text[searchFrom:], ent.Text)
		if start < 0 {
			continue
		}
		start += searchFrom
		end := start + len(ent.Text)
		searchFrom = end

		entities = append(entities, models.Entity{
			Type:       entityType,
			Text:       ent.Text,
			Start:      start,
			End:        end,
			Confidence: nerConfidence,
			Source:     models.SourceNER,
		})
	}
	return entities
}

type noopRecognizer struct{}

// NewNoopRecognizer returns a recognizer that finds nothing, for running
// with pattern and dictionary extraction only.
func NewNoopRecognizer() EntityRecognizer {
	return noopRecognizer{}
}

func (noopRecognizer) Recognize(string) []models.Entity { return nil }
