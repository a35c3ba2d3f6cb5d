/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package naming

import (
	"strings"
	"unicode"
)

// CamelToSnake splits s into words at case changes and joins them lower
// cased with underscores. An acronym stays one word, so "UserID" becomes
// "user_id" and "HTTPServer" becomes "http_server".
func CamelToSnake(s string) string {
	runes := []rune(s)
	words := make([]string, 0, 4)
	start := 0
	for i := 1; i < len(runes); i++ {
		if wordStart(runes, i) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return strings.ToLower(strings.Join(words, "_"))
}

// wordStart reports whether an upper-case rune at i opens a new word: it
// follows a lower-case letter or digit, or it ends an acronym that runs into
// a lower-case word.
func wordStart(runes []rune, i int) bool {
	if !unicode.IsUpper(runes[i]) {
		return false
	}
	prev := runes[i-1]
	switch {
	case unicode.IsLower(prev), unicode.IsDigit(prev):
		return true
	case unicode.IsUpper(prev):
		return i+1 < len(runes) && unicode.IsLower(runes[i+1])
	}
	return false
}
