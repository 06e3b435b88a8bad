package workitem

import "strings"

// Well-known tag tokens. Matching is case-insensitive and substring-based,
// mirroring how teams tag items ("Blocked: waiting on infra").
const (
	TagBlocked   = "blocked"
	TagBlocker   = "blocker"
	TagCritical  = "critical"
	TagUrgent    = "urgent"
	TagWaiting   = "waiting"
	TagApproval  = "approval"
	TagResource  = "resource"
	TagTechnical = "technical"
)

// HasTag reports whether any of the item's tags contains the token,
// case-insensitively.
func (w WorkItem) HasTag(token string) bool {
	token = strings.ToLower(token)
	for _, tag := range w.Tags {
		if strings.Contains(strings.ToLower(tag), token) {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the item carries at least one of the tokens.
func (w WorkItem) HasAnyTag(tokens ...string) bool {
	for _, token := range tokens {
		if w.HasTag(token) {
			return true
		}
	}
	return false
}

// ParseTags splits a tracker tag field ("alpha; beta; gamma") into clean
// tokens. Empty fragments are dropped.
func ParseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
