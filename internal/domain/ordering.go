package domain

import "sort"

// SortByLastPlayedDesc orders sessions most recently played first, in place.
func SortByLastPlayedDesc(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastPlayedAt.After(sessions[j].LastPlayedAt)
	})
}

// SortByCreatedDesc orders sessions newest first, in place.
func SortByCreatedDesc(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}
