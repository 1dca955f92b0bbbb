package i18n

import "strings"

// Translator retrieves localized messages for Record kinds. data provides
// optional metadata to embed in the message (for example, "field" or
// "target_type").
type Translator interface {
	Message(kind string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(kind string, data map[string]string) string {
	var tpl string
	switch t.lang {
	case "es":
		switch kind {
		case "missing_required_field":
			tpl = "el campo '{field}' es obligatorio en el modelo '{parent}' y no se encontró en el modelo '{source}'"
		case "type_mismatch":
			tpl = "el campo '{field}' de tipo '{target_type}' no acepta el valor '{value}' de tipo '{value_type}'"
		case "ambiguous_match":
			tpl = "varios candidatos para el campo '{field}'; se eligió '{chosen}'"
		case "partial_model":
			tpl = "el modelo nuevo '{model}' se construyó parcialmente"
		case "empty_model":
			tpl = "no se encontraron datos para construir el modelo nuevo '{model}'"
		case "list_limit_reached":
			tpl = "se alcanzó el límite de '{limit}' al construir la lista de modelos '{model}'"
		case "cyclic_schema":
			tpl = "el esquema '{model}' se referencia a sí mismo"
		case "build_failure":
			tpl = "error inesperado al crear el campo '{field}': {error}"
		}
	default: // "en"
		switch kind {
		case "missing_required_field":
			tpl = "the field '{field}' is required in the '{parent}' model and could not be matched in the '{source}' model"
		case "type_mismatch":
			tpl = "the field '{field}' of type '{target_type}' cannot match the value '{value}' of type '{value_type}'"
		case "ambiguous_match":
			tpl = "multiple candidates for field '{field}'; picked '{chosen}'"
		case "partial_model":
			tpl = "the new model '{model}' was partially built"
		case "empty_model":
			tpl = "no data found to build the new model '{model}'"
		case "list_limit_reached":
			tpl = "limit of '{limit}' reached while building the list of '{model}' models"
		case "cyclic_schema":
			tpl = "the schema '{model}' references itself"
		case "build_failure":
			tpl = "unexpected error while creating the field '{field}': {error}"
		}
	}
	if tpl == "" {
		return kind
	}
	return expand(tpl, data)
}

// expand substitutes {key} placeholders; unknown placeholders stay as-is.
func expand(tpl string, data map[string]string) string {
	if len(data) == 0 {
		return tpl
	}
	out := tpl
	for k, v := range data {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"es").
func SetLanguage(lang string) {
	if lang != "es" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T resolves a message for a record kind with the current Translator.
func T(kind string, data map[string]string) string {
	return currentTranslator.Message(kind, data)
}
