package tokenizer

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// PieceType is the SentencePiece vocabulary entry type.
type PieceType int32

// Piece types from the sentencepiece.ModelProto.SentencePiece.Type enum.
const (
	PieceNormal      PieceType = 1
	PieceUnknown     PieceType = 2
	PieceControl     PieceType = 3
	PieceUserDefined PieceType = 4
	PieceUnused      PieceType = 5
	PieceByte        PieceType = 6
)

// Piece is one vocabulary entry from the model.
type Piece struct {
	Piece string
	Score float32
	Type  PieceType
}

// Model is the subset of a SentencePiece .model file needed for tokenization.
type Model struct {
	Pieces []Piece
}

// Wire field numbers inside sentencepiece.ModelProto and its SentencePiece
// submessage.
const (
	fieldPieces     = 1 // ModelProto.pieces, repeated message
	fieldPieceText  = 1 // SentencePiece.piece, string
	fieldPieceScore = 2 // SentencePiece.score, float
	fieldPieceType  = 3 // SentencePiece.type, enum
)

// LoadModel reads the vocabulary from a serialized sentencepiece.ModelProto.
// Only the pieces field is decoded; trainer and normalizer specs are skipped.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	model, err := parseModel(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(model.Pieces) == 0 {
		return nil, fmt.Errorf("parsing %s: no vocabulary pieces", path)
	}
	return model, nil
}

func parseModel(data []byte) (*Model, error) {
	model := &Model{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		if num == fieldPieces && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]

			piece, err := parsePiece(raw)
			if err != nil {
				return nil, fmt.Errorf("piece %d: %w", len(model.Pieces), err)
			}
			model.Pieces = append(model.Pieces, piece)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
	}
	return model, nil
}

func parsePiece(raw []byte) (Piece, error) {
	// Type defaults to NORMAL when the field is absent.
	piece := Piece{Type: PieceNormal}

	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return piece, protowire.ParseError(n)
		}
		raw = raw[n:]

		switch {
		case num == fieldPieceText && typ == protowire.BytesType:
			text, n := protowire.ConsumeString(raw)
			if n < 0 {
				return piece, protowire.ParseError(n)
			}
			piece.Piece = text
			raw = raw[n:]

		case num == fieldPieceScore && typ == protowire.Fixed32Type:
			bits, n := protowire.ConsumeFixed32(raw)
			if n < 0 {
				return piece, protowire.ParseError(n)
			}
			piece.Score = math.Float32frombits(bits)
			raw = raw[n:]

		case num == fieldPieceType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return piece, protowire.ParseError(n)
			}
			piece.Type = PieceType(v)
			raw = raw[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, raw)
			if n < 0 {
				return piece, protowire.ParseError(n)
			}
			raw = raw[n:]
		}
	}
	return piece, nil
}
