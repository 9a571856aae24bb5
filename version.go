package ttnexus

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release version of the tool.
var Version = strings.TrimSpace(rawVersion)

// Branch is the release channel reported to the editor integration.
const Branch = "main"
