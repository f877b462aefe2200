package region

import (
	"fmt"
	"strings"

	"github.com/daiki-iha-k24c/car-mapping-sub000/internal/services/plates/internal/kana"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// KagomeReader reads place names with the IPA dictionary.
type KagomeReader struct {
	tok *tokenizer.Tokenizer
}

func NewKagomeReader() (*KagomeReader, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("create tokenizer: %w", err)
	}

	return &KagomeReader{tok: t}, nil
}

// Reading returns the hiragana reading of text. It fails when any morpheme is unknown to the dictionary.
func (k *KagomeReader) Reading(text string) (string, bool) {
	var sb strings.Builder
	for _, t := range k.tok.Tokenize(text) {
		r, ok := t.Reading()
		if !ok || r == "" || r == "*" {
			return "", false
		}
		sb.WriteString(r)
	}

	if sb.Len() == 0 {
		return "", false
	}
	return kana.ToHiragana(sb.String()), true
}
