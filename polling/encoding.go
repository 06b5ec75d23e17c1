// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package polling

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Canonical encoding names, matching what the upstream tooling logs.
const (
	EncodingUTF8     = "utf-8"
	EncodingUTF8SIG  = "utf-8-sig"
	EncodingShiftJIS = "shift_jis"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// EncodingError is fatal for a file: no candidate encoding could decode
// its bytes. The file is excluded from further processing.
type EncodingError struct {
	Charset string
	Err     error
}

func (e *EncodingError) Error() string {
	if e.Charset != "" {
		return fmt.Sprintf("unsupported encoding %q", e.Charset)
	}

	return fmt.Sprintf("decoding content: %v", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Decoded is the canonical text form of a file's bytes.
type Decoded struct {
	Text     string
	Encoding string
	HadBOM   bool
}

// NeedsNormalization reports whether the original bytes were not already
// BOM-less UTF-8.
func (d *Decoded) NeedsNormalization() bool {
	return d.HadBOM || d.Encoding == EncodingShiftJIS
}

// Shift_JIS family names as reported by charset detection.
var shiftJISNames = map[string]bool{
	"shift_jis":   true,
	"sjis":        true,
	"cp932":       true,
	"ms932":       true,
	"windows-31j": true,
}

// Decode detects the encoding of content and decodes it to UTF-8 text.
// Accepted inputs are UTF-8 (with or without BOM) and the Shift_JIS
// family; anything else is an EncodingError.
func Decode(content []byte) (*Decoded, error) {
	if len(content) == 0 {
		return nil, &EncodingError{Err: errors.New("empty content")}
	}

	if bytes.IndexByte(content, 0) >= 0 {
		return nil, &EncodingError{Err: errors.New("NUL byte in content")}
	}

	if bytes.HasPrefix(content, utf8BOM) {
		body := content[len(utf8BOM):]
		if !utf8.Valid(body) {
			return nil, &EncodingError{Charset: EncodingUTF8SIG, Err: errors.New("invalid UTF-8 after BOM")}
		}

		return &Decoded{Text: string(body), Encoding: EncodingUTF8SIG, HadBOM: true}, nil
	}

	if utf8.Valid(content) {
		return &Decoded{Text: string(content), Encoding: EncodingUTF8}, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(content)
	if err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("charset detection failed: %w", err)}
	}

	charset := strings.ToLower(result.Charset)
	if !shiftJISNames[charset] {
		return nil, &EncodingError{Charset: result.Charset}
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), content)
	if err != nil {
		return nil, &EncodingError{Charset: result.Charset, Err: err}
	}

	return &Decoded{Text: string(decoded), Encoding: EncodingShiftJIS}, nil
}
