package utils

import (
	"path"
	"strings"
)

// FilenameFromObject returns the final path element of an object name for
// use as a local file name. Object names may carry trailing slashes
// (directory markers); those yield an empty string.
func FilenameFromObject(object string) string {
	if strings.HasSuffix(object, "/") {
		return ""
	}
	base := path.Base(object)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
