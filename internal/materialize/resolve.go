// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package materialize

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// ResolvePDFURL maps an arXiv abstract page onto its PDF
// ("https://arxiv.org/abs/1706.03762v7" becomes
// "https://arxiv.org/pdf/1706.03762v7.pdf"). Every other URL is returned
// unchanged.
func ResolvePDFURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Hostname(), "arxiv.org") || !strings.Contains(u.Path, "/abs/") {
		return raw
	}
	u.Path = strings.Replace(u.Path, "/abs/", "/pdf/", 1)
	if !strings.HasSuffix(u.Path, ".pdf") {
		u.Path += ".pdf"
	}
	return u.String()
}

// unsafeFilename matches characters not allowed in scratch file names.
var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PDFFilename derives the scratch file name from the last path segment of
// the paper URL ("1706.03762v7.pdf").
func PDFFilename(raw string) string {
	seg := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		seg = u.Path
	}
	seg = path.Base(strings.TrimSuffix(seg, "/"))
	seg = strings.TrimSuffix(seg, ".pdf")
	seg = unsafeFilename.ReplaceAllString(seg, "_")
	if seg == "" || seg == "." || seg == "_" {
		seg = "paper"
	}
	return seg + ".pdf"
}
