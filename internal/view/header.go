// Package view holds the inspector panel and the two views it contains.
// Views are updated from loader goroutines and read by renderers, so each
// guards its state with a mutex.
package view

import (
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"docinspect/internal/inspector"
	"docinspect/internal/model"
)

// HeaderState is what the header shows.
type HeaderState struct {
	Title     string `json:"title"`
	TypeLabel string `json:"type_label"`
}

// Header shows the document's name and a short type label.
type Header struct {
	mu    sync.RWMutex
	state HeaderState
	set   bool
}

var _ inspector.HeaderView = (*Header)(nil)

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{}
}

func (h *Header) Update(info *model.DocumentInfo) {
	title := info.DisplayName
	if title == "" {
		title = info.ID
	}
	h.mu.Lock()
	h.state = HeaderState{Title: title, TypeLabel: TypeLabel(info.MimeType)}
	h.set = true
	h.mu.Unlock()
}

// State returns the current header state and whether it was ever updated.
func (h *Header) State() (HeaderState, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state, h.set
}

// TypeLabel turns a MIME type into a short, readable label such as "PDF file".
func TypeLabel(mime string) string {
	switch {
	case mime == "":
		return "Unknown"
	case mime == model.MimeTypeDirectory:
		return "Folder"
	}
	if m := mimetype.Lookup(mime); m != nil {
		if ext := strings.TrimPrefix(m.Extension(), "."); ext != "" {
			return strings.ToUpper(ext) + " file"
		}
	}
	return mime
}
