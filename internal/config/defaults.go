package config

import "strings"

// Configuration file names, in lookup priority order.
const (
	DotFileName   = ".rubocop.yml"
	PlainFileName = "rubocop.yml"
)

// FileNames lists the recognized configuration file names in priority order.
var FileNames = []string{DotFileName, PlainFileName}

// Well-known document keys.
const (
	KeyAllCops     = "AllCops"
	KeyGeneral     = "general" // alias of AllCops
	KeyInheritFrom = "inherit_from"
	KeyInheritMode = "inherit_mode"
	KeyRoot        = "root"

	KeyEnabled  = "Enabled"
	KeySeverity = "Severity"
	KeyInclude  = "Include"
	KeyExclude  = "Exclude"
)

// Sidecar layout, relative to the project directory.
const (
	SidecarDir        = ".leukocyte"
	SidecarIndexFile  = "index.json"
	SidecarConfigsDir = "configs"
)

// IsConfigFileName reports whether name is a recognized configuration file name.
func IsConfigFileName(name string) bool {
	for _, n := range FileNames {
		if n == name {
			return true
		}
	}
	return false
}

// IsReservedRuleKey reports whether key is handled by the cascade itself
// rather than by a rule's parameter handler.
func IsReservedRuleKey(key string) bool {
	switch key {
	case KeyEnabled, KeySeverity, KeyInclude, KeyExclude, KeyInheritMode:
		return true
	}
	return strings.HasPrefix(key, "Description") || key == "StyleGuide" || key == "VersionAdded" || key == "VersionChanged"
}

// ignoredDirs are never descended into when searching a project.
var ignoredDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"tmp":          true,
}

// IsIgnoredDir reports whether a directory named name is skipped by
// project walks: hidden directories and vendored or generated trees.
func IsIgnoredDir(name string) bool {
	if len(name) > 1 && name[0] == '.' && name != ".." {
		return true
	}
	return ignoredDirs[name]
}
