package treemap

import (
	"strings"
	"unicode/utf8"
)

// wrapThreshold is the label length above which spaces become line breaks.
const wrapThreshold = 8

// Label derives a node's display label from its raw value. The root label is
// returned unchanged. Longer names have their spaces replaced by
// [LineBreak], except before a word starting with "V".
func Label(name, root string) string {
	if name == root {
		return name
	}
	if utf8.RuneCountInString(name) > wrapThreshold {
		name = strings.ReplaceAll(name, " ", LineBreak)
	}
	return strings.ReplaceAll(name, LineBreak+"V", " V")
}
