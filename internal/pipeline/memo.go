package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/fpang/portrait-retouch/internal/imageutil"
	"github.com/fpang/portrait-retouch/internal/portrait"
)

// ReferenceMemo builds the identity reference for a source image at most
// once. It lives for one generation request; concurrent callers for the
// same image share a single build.
type ReferenceMemo struct {
	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]*portrait.Reference

	build func(image []byte, mime string) ([]byte, string, error)
	hash  func(data []byte) string
}

// NewReferenceMemo creates an empty memo.
func NewReferenceMemo() *ReferenceMemo {
	return &ReferenceMemo{
		entries: make(map[string]*portrait.Reference),
		hash:    ContentHash,
		build: func(image []byte, _ string) ([]byte, string, error) {
			return imageutil.Downscale(image, imageutil.ReferenceMaxDimension)
		},
	}
}

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the reference for image, building it on first use. If the
// image cannot be downscaled the original bytes are used as the reference.
func (m *ReferenceMemo) Get(image []byte, mime string, analysis *portrait.AnalysisResult) *portrait.Reference {
	return m.get(m.hash(image), image, mime, analysis)
}

// Source returns a getter for one image that hashes it at most once, on
// first call, however many validations ask for the reference.
func (m *ReferenceMemo) Source(image []byte, mime string, analysis *portrait.AnalysisResult) func() *portrait.Reference {
	var once sync.Once
	var key string
	return func() *portrait.Reference {
		once.Do(func() { key = m.hash(image) })
		return m.get(key, image, mime, analysis)
	}
}

func (m *ReferenceMemo) get(key string, image []byte, mime string, analysis *portrait.AnalysisResult) *portrait.Reference {
	m.mu.Lock()
	if ref, ok := m.entries[key]; ok {
		m.mu.Unlock()
		return ref
	}
	m.mu.Unlock()

	v, _, _ := m.group.Do(key, func() (any, error) {
		m.mu.Lock()
		if ref, ok := m.entries[key]; ok {
			m.mu.Unlock()
			return ref, nil
		}
		m.mu.Unlock()

		ref := &portrait.Reference{Image: image, MIME: mime, Hash: key, Notes: referenceNotes(analysis)}
		if small, smallMIME, err := m.build(image, mime); err != nil {
			log.Warn().Err(err).Msg("Failed to downscale identity reference, using original")
		} else {
			ref.Image, ref.MIME = small, smallMIME
		}

		m.mu.Lock()
		m.entries[key] = ref
		m.mu.Unlock()
		return ref, nil
	})
	return v.(*portrait.Reference)
}

func referenceNotes(a *portrait.AnalysisResult) string {
	if a == nil || a.Degraded || a.Summary == "" {
		return ""
	}
	return a.Summary
}
