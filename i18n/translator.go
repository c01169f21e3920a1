package i18n

import "sync"

// Translator retrieves localized messages for error kinds.
// data provides optional metadata to embed in the message (for example,
// "expected" or "reason").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "missing_field":
			return "必須フィールドがありません"
		case "invalid_type":
			return "型が不正です"
		case "invalid_value":
			return "値が不正です"
		case "value_too_long":
			return "値が長すぎます"
		case "unknown_variant":
			return "未知の値です"
		case "duplicate_key":
			return "キーが重複しています"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "missing_field":
			return "missing required field"
		case "invalid_type":
			return "invalid type"
		case "invalid_value":
			return "invalid value"
		case "value_too_long":
			return "value too long"
		case "unknown_variant":
			return "unknown variant"
		case "duplicate_key":
			return "duplicate key"
		case "parse_error":
			return "parse error"
		}
	}
	// custom kinds carry their own description
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
