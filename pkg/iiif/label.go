package iiif

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/matzehuels/pinboard/pkg/errors"
)

// NoLanguage is the language key for strings without a language.
const NoLanguage = "none"

// Label is a language map, e.g. {"en": ["Letter"], "none": ["1843"]}.
type Label map[string][]string

// NewLabel returns a label with s under NoLanguage, or nil for "".
func NewLabel(s string) Label {
	if s == "" {
		return nil
	}
	return Label{NoLanguage: {s}}
}

// String returns the values of the preferred language joined by spaces.
// "none" is preferred, then "en", then the first key in sorted order.
func (l Label) String() string {
	if len(l) == 0 {
		return ""
	}
	for _, k := range []string{NoLanguage, "en"} {
		if v := l[k]; len(v) > 0 {
			return strings.Join(v, " ")
		}
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := l[k]; len(v) > 0 {
			return strings.Join(v, " ")
		}
	}
	return ""
}

// UnmarshalJSON accepts a language map as well as the shapes older documents
// use: a plain string, a map of single strings, or a list of
// {"@value", "@language"} objects.
func (l *Label) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		*l = NewLabel(s)
		return nil
	}
	var m map[string][]string
	if json.Unmarshal(data, &m) == nil {
		*l = m
		return nil
	}
	var single map[string]string
	if json.Unmarshal(data, &single) == nil {
		out := make(Label, len(single))
		for k, v := range single {
			out[k] = []string{v}
		}
		*l = out
		return nil
	}
	var values []struct {
		Value    string `json:"@value"`
		Language string `json:"@language"`
	}
	if json.Unmarshal(data, &values) == nil {
		out := make(Label)
		for _, v := range values {
			lang := v.Language
			if lang == "" {
				lang = NoLanguage
			}
			out[lang] = append(out[lang], v.Value)
		}
		*l = out
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported label %s", truncate(data, 40))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
