package embedding

import (
	"hash/fnv"

	"github.com/skarvik/produktbot/pkg/utils"
)

// Special token IDs used by KB-BERT style vocabularies.
const (
	clsTokenID = 101
	sepTokenID = 102
	vocabSize  = 30000
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// FallbackTokenizer approximates a Swedish wordpiece tokenizer with hashed
// whole-word IDs. Queries like "låshus, 50mm" split cleanly on punctuation
// while å, ä and ö stay part of their words. The IDs only need to be stable,
// not vocabulary-accurate, since the embedder compares its own outputs.
type FallbackTokenizer struct{}

// Tokenize lowercases and word-splits text and produces padded token IDs up
// to maxTokens, bracketed by [CLS] and [SEP].
func (t *FallbackTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1

	pos := 1
	for _, word := range utils.Tokenize(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = tokenID(word)
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = sepTokenID
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// tokenID hashes a word into the vocabulary range, clear of the special IDs.
func tokenID(word string) int64 {
	h := fnv.New32a()
	h.Write([]byte(word))
	return int64(h.Sum32()%(vocabSize-1000)) + 1000
}
