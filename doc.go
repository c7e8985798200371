// Package langid identifies the language of text using ONNX
// sequence-classification models.
//
// # Quick Start
//
//	id, err := langid.NewDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer id.Close()
//
//	lang, err := id.Classify(ctx, []byte("Bonjour tout le monde."))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(lang) // fr
//
// # Thread Safety
//
// Identifier is safe for concurrent use. It manages an internal pool of
// ONNX sessions, configurable via WithPoolSize.
//
// # Model Files
//
// A model is a directory holding model.onnx, sentencepiece.bpe.model, and
// config.json. Any XLM-RoBERTa sequence-classification checkpoint exported
// to ONNX works, for example:
//
//	https://huggingface.co/papluca/xlm-roberta-base-language-detection
//
// The default directory is $LANGID_MODEL_DIR, falling back to
// go-langid/default under os.UserCacheDir().
package langid
