package purge

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FileRecord is one uploaded attachment and its generated size variants.
type FileRecord struct {
	// PrimaryPath is relative to the upload root, e.g. "2023/05/image.jpg".
	PrimaryPath string
	Variants    map[string]Variant
}

// Variant is a resized copy of the primary file. Only the file name part of
// Path is used; variants always live next to the primary file.
type Variant struct {
	Path string
}

// attachmentMetadata mirrors the JSON encoding of the CMS attachment metadata.
type attachmentMetadata struct {
	File  string          `json:"file"`
	Sizes json.RawMessage `json:"sizes"`
}

type sizeMetadata struct {
	File     string `json:"file"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	MimeType string `json:"mime-type,omitempty"`
}

// UnmarshalJSON decodes the CMS attachment metadata shape:
//
//	{"file": "2023/05/image.jpg", "sizes": {"thumbnail": {"file": "image-150x150.jpg"}}}
//
// A literal false or null (the CMS's "no metadata") decodes to an empty
// record, and so does an empty sizes list encoded as [].
func (r *FileRecord) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("false")) {
		*r = FileRecord{}
		return nil
	}

	var meta attachmentMetadata
	if err := json.Unmarshal(trimmed, &meta); err != nil {
		return fmt.Errorf("decode attachment metadata: %w", err)
	}

	out := FileRecord{PrimaryPath: meta.File}

	sizes := bytes.TrimSpace(meta.Sizes)
	if len(sizes) > 0 && sizes[0] == '{' {
		var raw map[string]sizeMetadata
		if err := json.Unmarshal(sizes, &raw); err != nil {
			return fmt.Errorf("decode attachment sizes: %w", err)
		}
		out.Variants = make(map[string]Variant, len(raw))
		for name, size := range raw {
			out.Variants[name] = Variant{Path: size.File}
		}
	}

	*r = out
	return nil
}
