package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"voltcheck/internal/records"
)

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".tiff": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".avi": {}, ".mov": {}, ".wmv": {}, ".flv": {}, ".webm": {},
}

// inferMediaKind classifies a path by extension.
func inferMediaKind(path string) (records.MediaKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageExtensions[ext]; ok {
		return records.MediaImage, nil
	}
	if _, ok := videoExtensions[ext]; ok {
		return records.MediaVideo, nil
	}
	return "", fmt.Errorf("unsupported media type %q (supported: images %s; videos %s)",
		ext, extensionList(imageExtensions), extensionList(videoExtensions))
}

func extensionList(set map[string]struct{}) string {
	exts := make([]string, 0, len(set))
	for ext := range set {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}
