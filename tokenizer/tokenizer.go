package tokenizer

import (
	"fmt"
	"unicode/utf8"
)

// SentencePiece reserves the first three vocabulary slots.
const (
	spUnknown = 0 // <unk>
	spBOS     = 1 // <s>
	spEOS     = 2 // </s>
)

// The SentencePiece runtime scores unknown characters as the worst lexicon
// score minus this penalty.
const unkPenalty = 10.0

// Tokenizer implements XLM-RoBERTa compatible SentencePiece Unigram
// tokenization.
//
// Token IDs are remapped from SentencePiece indices to the HuggingFace
// XLM-RoBERTa convention:
//   - HF[0] = <s>   (SP[1])
//   - HF[1] = <pad> (not in the SentencePiece vocabulary)
//   - HF[2] = </s>  (SP[2])
//   - HF[3] = <unk> (SP[0])
//   - HF[n+1] = SP[n] for n >= 3 (normal tokens shifted by 1)
type Tokenizer struct {
	pieces    map[string]int32   // piece -> SentencePiece index
	scores    map[string]float32 // matchable piece -> log probability
	idToPiece []string           // SentencePiece index -> piece

	// HuggingFace-compatible token IDs
	bosID int32
	padID int32
	eosID int32
	unkID int32

	unkScore    float32
	maxTokenLen int // in runes, bounds the Viterbi inner loop
}

// New loads a tokenizer from a SentencePiece .model file.
func New(modelPath string) (*Tokenizer, error) {
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}

	t := &Tokenizer{
		pieces:    make(map[string]int32, len(model.Pieces)),
		scores:    make(map[string]float32, len(model.Pieces)),
		idToPiece: make([]string, len(model.Pieces)),
		// HuggingFace XLM-RoBERTa special token IDs
		bosID: 0, // <s>
		padID: 1, // <pad>
		eosID: 2, // </s>
		unkID: 3, // <unk>
	}

	var minScore float32
	for i, piece := range model.Pieces {
		t.pieces[piece.Piece] = int32(i)
		t.idToPiece[i] = piece.Piece

		// Control and unknown pieces never match raw text, so they stay
		// out of the Viterbi lexicon.
		switch piece.Type {
		case PieceNormal, PieceUserDefined, PieceByte:
		default:
			continue
		}

		t.scores[piece.Piece] = piece.Score
		if piece.Score < minScore {
			minScore = piece.Score
		}
		if n := utf8.RuneCountInString(piece.Piece); n > t.maxTokenLen {
			t.maxTokenLen = n
		}
	}
	t.unkScore = minScore - unkPenalty

	return t, nil
}

// spIndexToHFID converts a SentencePiece index to a HuggingFace XLM-RoBERTa
// token ID.
func (t *Tokenizer) spIndexToHFID(spIndex int32) int32 {
	switch spIndex {
	case spUnknown:
		return t.unkID
	case spBOS:
		return t.bosID
	case spEOS:
		return t.eosID
	default: // normal tokens: shift by 1 for the inserted <pad>
		return spIndex + 1
	}
}

// VocabSize returns the vocabulary size under the HuggingFace convention:
// the SentencePiece vocabulary plus two, one for the inserted <pad> slot
// that shifts every piece up and one for the <mask> token appended at the
// end.
func (t *Tokenizer) VocabSize() int {
	return len(t.idToPiece) + 2
}

// BOSID returns the beginning-of-sequence token ID.
func (t *Tokenizer) BOSID() int32 { return t.bosID }

// PadID returns the padding token ID.
func (t *Tokenizer) PadID() int32 { return t.padID }

// EOSID returns the end-of-sequence token ID.
func (t *Tokenizer) EOSID() int32 { return t.eosID }

// UnkID returns the unknown token ID.
func (t *Tokenizer) UnkID() int32 { return t.unkID }
