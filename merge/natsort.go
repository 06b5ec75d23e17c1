// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package merge

import "strconv"

// Polling district numbers come in many shapes: "3", "2-1", "第10投票区",
// "1番地" and free text. The sort key is the sequence of alternating
// digit and text runs: digit runs compare numerically, text runs by code
// point, and a key that is a strict prefix of a longer one sorts first.

type segment struct {
	digits bool
	num    int
	text   string
}

type numberKey []segment

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func parseNumberKey(number string) numberKey {
	var key numberKey

	runes := []rune(number)

	for i := 0; i < len(runes); {
		j := i
		digits := isDigit(runes[i])

		for j < len(runes) && isDigit(runes[j]) == digits {
			j++
		}

		run := string(runes[i:j])
		if digits {
			n, _ := strconv.Atoi(run)
			key = append(key, segment{digits: true, num: n})
		} else {
			key = append(key, segment{text: run})
		}

		i = j
	}

	return key
}

func (a numberKey) less(b numberKey) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		sa, sb := a[i], b[i]

		// A digit run sorts before a text run in the same position.
		if sa.digits != sb.digits {
			return sa.digits
		}

		if sa.digits {
			if sa.num != sb.num {
				return sa.num < sb.num
			}

			continue
		}

		if sa.text != sb.text {
			return sa.text < sb.text
		}
	}

	return len(a) < len(b)
}

// NaturalLess orders two district numbers for the final export.
func NaturalLess(a, b string) bool {
	return parseNumberKey(a).less(parseNumberKey(b))
}
