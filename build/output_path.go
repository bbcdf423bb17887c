package build

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"stylec/config"
)

// buildOutputName returns output name (with forward slashes, without
// extension) relative to destination. It uses either default naming scheme
// or user-defined template and takes into account whether to preserve
// source directory structure on the output.
func buildOutputName(j *job, cfg *config.OutputConfig, noDirs bool, log *zap.Logger) string {
	outDir := determineOutputDir(j.src, noDirs)
	defaultName := cleanPathSegment(j.src.stem(), cfg.FileNameTransliterate)

	if cfg.NameTemplate == "" {
		return path.Join(outDir, defaultName)
	}

	expandedName, err := expandTemplate(config.OutputNameTemplateFieldName, cfg.NameTemplate, j.values())
	if err != nil {
		log.Warn("Unable to prepare output filename", zap.String("source", j.src.name), zap.Error(err))
		return path.Join(outDir, defaultName)
	}

	segments := splitAndCleanPath(filepath.FromSlash(expandedName))
	if len(segments) == 0 {
		// fallback to default name if template expanded to nothing
		return path.Join(outDir, defaultName)
	}
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, segment := range segments {
		parts = append(parts, cleanPathSegment(segment, cfg.FileNameTransliterate))
	}
	return path.Join(parts...)
}

func determineOutputDir(src source, noDirs bool) string {
	if noDirs {
		return ""
	}
	return src.dir()
}

func splitAndCleanPath(p string) []string {
	p = strings.TrimSuffix(p, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(p); tail != ""; head, tail = filepath.Split(head) {
		if tail != "." && tail != ".." {
			segments = slices.Insert(segments, 0, tail)
		}
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}

	return segments
}

func cleanPathSegment(segment string, transliterate bool) string {
	if transliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
