// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package scrape

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// payloadNeedle marks the start of an embedded server-rendered data chunk:
// `self.__next_f.push([1,"<length>:<quoted JSON body>"])`. The framework
// streams page data as length-prefixed, JS-string-escaped JSON fragments;
// extractPayload locates one occurrence, decodes the escaped body, and
// feeds it to the JSON decoder, per spec.md §4.2's "not DOM parsing"
// requirement.
const payloadNeedle = `self.__next_f.push([1,"`

// extractPayload finds the Nth (0-indexed) occurrence of payloadNeedle in
// html, decodes its length-prefixed quoted body, and unmarshals the result
// into v. Most pages embed many chunks; callers pass the occurrence index
// that historically carries the payload they want.
func extractPayload(html string, occurrence int, v any) error {
	body, err := findPayloadBody(html, occurrence)
	if err != nil {
		return err
	}

	decoded, err := unescapeJSString(body)
	if err != nil {
		return &Error{Kind: KindDecodeFailed, Op: "extractPayload", Err: fmt.Errorf("unescape payload body: %w", err)}
	}

	if err := json.Unmarshal([]byte(decoded), v); err != nil {
		return &Error{Kind: KindDecodeFailed, Op: "extractPayload", Err: fmt.Errorf("decode json payload: %w", err)}
	}
	return nil
}

// findPayloadBody returns the raw (still JS-string-escaped) text between
// the length prefix's colon and the closing quote of the occurrence-th
// needle match.
func findPayloadBody(html string, occurrence int) (string, error) {
	searchFrom := 0
	var start int

	for i := 0; i <= occurrence; i++ {
		idx := strings.Index(html[searchFrom:], payloadNeedle)
		if idx < 0 {
			return "", &Error{Kind: KindMissingPayload, Op: "findPayloadBody", Err: fmt.Errorf("needle not found (occurrence %d)", i)}
		}
		start = searchFrom + idx + len(payloadNeedle)
		searchFrom = start
	}

	rest := html[start:]

	// Parse the decimal length prefix up to the colon. The prefix is an
	// opaque chunk id/length the framework assigns; we only need to skip
	// past it to reach the quoted body.
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return "", &Error{Kind: KindMissingPayload, Op: "findPayloadBody", Err: fmt.Errorf("no length prefix delimiter found")}
	}
	if _, err := strconv.ParseInt(rest[:colon], 10, 64); err != nil {
		return "", &Error{Kind: KindMissingPayload, Op: "findPayloadBody", Err: fmt.Errorf("malformed length prefix %q: %w", rest[:colon], err)}
	}

	bodyStart := colon + 1
	end, err := findClosingQuote(rest, bodyStart)
	if err != nil {
		return "", err
	}
	return rest[bodyStart:end], nil
}

// findClosingQuote walks a JS string literal (already inside the opening
// quote, cursor at from) and returns the index of its unescaped closing
// quote, honoring backslash escapes.
func findClosingQuote(s string, from int) (int, error) {
	escaped := false
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			return i, nil
		}
	}
	return 0, &Error{Kind: KindMissingPayload, Op: "findClosingQuote", Err: fmt.Errorf("unterminated string body")}
}

// unescapeJSString decodes the limited escape set the framework emits:
// \", \\, \n, \t, \r, \/, and \uXXXX.
func unescapeJSString(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape at end of string")
		}
		switch s[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("truncated unicode escape")
			}
			codepoint, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", fmt.Errorf("malformed unicode escape: %w", err)
			}
			b.WriteRune(rune(codepoint))
			i += 4
		default:
			return "", fmt.Errorf("unsupported escape sequence \\%c", s[i])
		}
	}
	return b.String(), nil
}
