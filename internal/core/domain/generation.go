package domain

import (
	"slices"
	"time"
)

// GenerationRecord is the retention metadata kept for one generation folder.
type GenerationRecord struct {
	Folder     string            `json:"folder,omitzero"`
	Digest     string            `json:"digest,omitzero"`
	Assets     []string          `json:"assets,omitempty"`
	Files      map[string]string `json:"files,omitempty"`
	CreatedAt  time.Time         `json:"created_at,omitzero"`
	LastUsedAt time.Time         `json:"last_used_at,omitzero"`
}

// AddAsset records that assetPath resolved to this folder. It reports whether the list changed.
func (r *GenerationRecord) AddAsset(assetPath string) bool {
	if slices.Contains(r.Assets, assetPath) {
		return false
	}
	r.Assets = append(r.Assets, assetPath)
	slices.Sort(r.Assets)
	return true
}

// Expired reports whether the folder was last used before now minus maxAge.
// A non-positive maxAge never expires.
func (r *GenerationRecord) Expired(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	last := r.LastUsedAt
	if last.IsZero() {
		last = r.CreatedAt
	}
	return now.Sub(last) > maxAge
}
