package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/summarize"
	"github.com/kbukum/scribe/transcription"
)

// Vendor kinds in the catalogue.
const (
	KindASR = "ASR"
	KindLLM = "LLM"
)

// VendorEntry is one vendor in the catalogue. A vendor offering both
// transcription and summaries appears once with both kinds and the union
// of their credential fields.
type VendorEntry struct {
	ID          string                          `json:"id"`
	DisplayName string                          `json:"display_name"`
	Kinds       []string                        `json:"kinds"`
	Fields      []transcription.CredentialField `json:"fields"`
	Note        string                          `json:"note,omitempty"`
}

// Catalogue merges the ASR and LLM vendor lists by id, ASR order first.
func Catalogue() []VendorEntry {
	var entries []VendorEntry
	index := map[string]int{}

	for _, v := range transcription.Vendors() {
		index[string(v.ID)] = len(entries)
		entries = append(entries, VendorEntry{
			ID:          string(v.ID),
			DisplayName: v.DisplayName,
			Kinds:       []string{KindASR},
			Fields:      append([]transcription.CredentialField(nil), v.Fields...),
			Note:        v.Note,
		})
	}

	for _, v := range summarize.Vendors() {
		i, ok := index[string(v.ID)]
		if !ok {
			index[string(v.ID)] = len(entries)
			entries = append(entries, VendorEntry{
				ID:          string(v.ID),
				DisplayName: v.DisplayName,
				Kinds:       []string{KindLLM},
				Fields:      append([]transcription.CredentialField(nil), v.Fields...),
			})
			continue
		}
		e := &entries[i]
		e.Kinds = append(e.Kinds, KindLLM)
		e.Fields = mergeFields(e.Fields, v.Fields)
	}
	return entries
}

// mergeFields appends the fields of extra whose key is not in base.
func mergeFields(base, extra []transcription.CredentialField) []transcription.CredentialField {
	seen := make(map[string]bool, len(base))
	for _, f := range base {
		seen[f.Key] = true
	}
	for _, f := range extra {
		if !seen[f.Key] {
			seen[f.Key] = true
			base = append(base, f)
		}
	}
	return base
}

func (h *Handler) vendors(c *gin.Context) {
	server.RespondOK(c, h.catalogue)
}
