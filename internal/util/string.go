// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateWidth shortens s to at most width terminal cells, appending an
// ellipsis when anything was cut. Width is measured with go-runewidth so
// wide characters count as two cells and never overflow the sidebar.
func TruncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// CollapseSpace normalizes runs of whitespace (including newlines) to single
// spaces. Used for one-line previews of multi-line message text.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IntToString converts an int without fmt overhead.
func IntToString(n int) string {
	return strconv.Itoa(n)
}
