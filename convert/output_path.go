package convert

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"

	"h2docx/config"
	"h2docx/state"
)

const (
	outputExt = ".docx"
	// used when URL path does not name a page
	indexName = "index"
)

// buildOutputPath returns output file path for source file. "src" is path
// relative to the processed directory or base file name. Source directory
// structure is kept unless requested otherwise, names are cleaned up and if
// requested transliterated.
func buildOutputPath(src, dst string, env *state.LocalEnv) string {
	outDir := determineOutputDir(src, dst, env)
	return filepath.Join(outDir, buildDefaultFileName(src, env))
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func buildDefaultFileName(src string, env *state.LocalEnv) string {
	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return cleanPathSegment(baseName, env) + outputExt
}

// buildURLOutputPath maps remote page to host/path/name.docx under
// destination, or just to name.docx when directories are not wanted.
func buildURLOutputPath(u *url.URL, dst string, env *state.LocalEnv) string {
	dir, file := path.Split(u.Path)
	name := strings.TrimSuffix(file, path.Ext(file))
	if name == "" {
		name = indexName
	}
	if env.NoDirs {
		return filepath.Join(dst, cleanPathSegment(name, env)+outputExt)
	}
	rel := path.Join(u.Hostname(), dir, name)
	return assemblePathWithSubdirs(dst, filepath.FromSlash(rel), env)
}

// assemblePathWithSubdirs takes relative name (which may contain path
// separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, relName string, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(relName)

	if len(pathSegments) == 0 {
		return filepath.Join(outDir, indexName+outputExt)
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + outputExt
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(p string) []string {
	p = strings.TrimSuffix(p, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(p); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
