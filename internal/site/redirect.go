package site

import (
	"fmt"
	"path"
	"strings"
)

// ResumeRoot is the directory under the site root holding every variant.
const ResumeRoot = "resume"

// VariantPath is the site path of a variant's page.
func VariantPath(slug, version string) string {
	return path.Join(ResumeRoot, slug, "v"+version, "index.html")
}

// PDFPath is the site path of a variant's printable copy.
func PDFPath(slug, version string) string {
	return path.Join(ResumeRoot, slug, "v"+version, "index.pdf")
}

// SlugIndexPath is the site path of a slug's redirect page.
func SlugIndexPath(slug string) string {
	return path.Join(ResumeRoot, slug, "index.html")
}

// RedirectPage returns a page that immediately sends the browser to target.
func RedirectPage(target string) []byte {
	return []byte(fmt.Sprintf(`<!doctype html><meta http-equiv="refresh" content="0; url=%s">`, target))
}

// SlugRedirect points a slug's index at one of its versions.
func SlugRedirect(version string) []byte {
	return RedirectPage("./v" + version + "/")
}

// RootRedirect points the site root at the default slug below basePath.
func RootRedirect(basePath, slug string) []byte {
	return RedirectPage(NormalizeBase(basePath) + "/" + ResumeRoot + "/" + slug + "/")
}

// NormalizeBase trims trailing slashes and ensures a non-empty base starts with one.
func NormalizeBase(basePath string) string {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") && !strings.Contains(basePath, "://") {
		basePath = "/" + basePath
	}
	return basePath
}
