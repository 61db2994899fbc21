package matrix

import (
	"path/filepath"
	"strings"
)

func normalizePath(ctx *parserCtx, pathList ...string) string {
	result := filepath.Dir(ctx.filepath)

	for _, path := range pathList {
		if strings.HasPrefix(path, "//") {
			result = filepath.Join(ctx.projectRoot, path[2:])
		} else if strings.HasPrefix(path, "/") {
			result = filepath.Join(filepath.VolumeName(result), path)
		} else if !filepath.IsAbs(path) {
			result = filepath.Join(result, path)
		} else {
			result = path
		}
	}

	return filepath.Clean(result)
}

func simplifyPath(ctx *parserCtx, path string) string {
	projectRoot := ctx.projectRoot
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	if strings.HasPrefix(absPath, projectRoot) {
		return "//" + absPath[len(projectRoot)+1:]
	}
	return path
}
