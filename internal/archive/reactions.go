// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

// Tapback annotation codes observed in the source store: the 2000 band marks
// an added reaction, the 3000 band its removal.
var reactionLabels = map[int64]string{
	2000: "Loved",
	2001: "Liked",
	2002: "Disliked",
	2003: "Laughed",
	2004: "Emphasized",
	2005: "Questioned",
	3000: "Removed Love",
	3001: "Removed Like",
	3002: "Removed Dislike",
	3003: "Removed Laugh",
	3004: "Removed Emphasis",
	3005: "Removed Question",
}

// ReactionLabel maps an annotation code to its human-readable label.
// Unmapped codes yield an empty label, never an error.
func ReactionLabel(code int64) string {
	return reactionLabels[code]
}
