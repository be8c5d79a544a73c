package embedding

import "testing"

func TestFallbackTokenizer(t *testing.T) {
	tok := &FallbackTokenizer{}
	ids, attn, types := tok.Tokenize("Vad är bredden på låshuset?", 16)
	if len(ids) != 16 || len(attn) != 16 || len(types) != 16 {
		t.Fatalf("lengths = %d, %d, %d", len(ids), len(attn), len(types))
	}
	if ids[0] != clsTokenID {
		t.Errorf("ids[0] = %d, want CLS", ids[0])
	}
	// Five words, then the separator.
	if ids[6] != sepTokenID || attn[6] != 1 {
		t.Errorf("ids[6] = %d, attn[6] = %d, want SEP", ids[6], attn[6])
	}
	if attn[7] != 0 {
		t.Error("padding should carry no attention")
	}
}

func TestFallbackTokenizerPunctuationAndCase(t *testing.T) {
	tok := &FallbackTokenizer{}
	a, _, _ := tok.Tokenize("Låshus,", 8)
	b, _, _ := tok.Tokenize("låshus", 8)
	// Case and trailing punctuation must not change the word's ID.
	if a[1] != b[1] {
		t.Errorf("ids differ: %d vs %d", a[1], b[1])
	}
}

func TestTokenIDRange(t *testing.T) {
	for _, word := range []string{"låshus", "cylinder", "mått", "50091812"} {
		id := tokenID(word)
		if id < 1000 || id >= vocabSize {
			t.Errorf("tokenID(%q) = %d, outside vocabulary range", word, id)
		}
		if id != tokenID(word) {
			t.Errorf("tokenID(%q) not deterministic", word)
		}
	}
}
