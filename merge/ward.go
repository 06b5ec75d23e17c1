// Copyright 2026 The PollCSV Authors
// SPDX-License-Identifier: Apache-2.0

package merge

import "regexp"

// The 23 Tokyo special wards are municipalities of their own, not
// administrative wards inside a designated city, so they never group.
var tokyoSpecialWards = map[string]struct{}{
	"千代田区": {}, "中央区": {}, "港区": {}, "新宿区": {}, "文京区": {}, "台東区": {},
	"墨田区": {}, "江東区": {}, "品川区": {}, "目黒区": {}, "大田区": {}, "世田谷区": {},
	"渋谷区": {}, "中野区": {}, "杉並区": {}, "豊島区": {}, "北区": {}, "荒川区": {},
	"板橋区": {}, "練馬区": {}, "足立区": {}, "葛飾区": {}, "江戸川区": {},
}

// The full-width space is listed explicitly since \s only covers ASCII
// whitespace here.
var wardPattern = regexp.MustCompile(`([^市\s　]+区)`)

// ExtractWard returns the administrative ward named in an address, for
// grouping rows of a designated city. Addresses in Tokyo special wards
// and addresses without a ward return the empty string.
func ExtractWard(address string) string {
	m := wardPattern.FindStringSubmatch(address)
	if m == nil {
		return ""
	}

	if _, special := tokyoSpecialWards[m[1]]; special {
		return ""
	}

	return m[1]
}
