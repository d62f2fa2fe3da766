package downloader

import (
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultFileName is used when nothing usable can be derived from the request
const DefaultFileName = "downloadfile"

var dispositionFilename = regexp.MustCompile(`(?i)filename\s*=\s*(?:"([^"]*)"|([^;]*))`)

// GuessFileName derives a display file name from the download URL, Content-Disposition header and MIME type
func GuessFileName(rawURL, contentDisposition, mimeType string) string {
	name := fileNameFromDisposition(contentDisposition)
	if name == "" {
		name = fileNameFromURL(rawURL)
	}
	name = sanitizeFileName(name)
	if name == "" {
		name = DefaultFileName
	}

	if !strings.Contains(strings.TrimPrefix(name, "."), ".") {
		name += extensionForType(mimeType)
	}

	return name
}

func fileNameFromDisposition(contentDisposition string) string {
	if contentDisposition == "" {
		return ""
	}

	if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
		if name := params["filename"]; name != "" {
			return lastSegment(name)
		}
	}

	// Servers frequently send unquoted names with spaces, which ParseMediaType rejects
	if m := dispositionFilename.FindStringSubmatch(contentDisposition); m != nil {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		return lastSegment(strings.TrimSpace(name))
	}

	return ""
}

func fileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	return lastSegment(p)
}

func lastSegment(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func sanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		default:
			return r
		}
	}, name)
	name = strings.TrimSpace(name)
	if strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}

func extensionForType(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || mediaType == "" {
		return ".bin"
	}
	if m := mimetype.Lookup(mediaType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	if strings.HasPrefix(mediaType, "text/") {
		return ".txt"
	}
	return ".bin"
}
