package fs

import (
	"github.com/aretw0/introspection"
)

// BridgeState exposes the bridge configuration for observability.
type BridgeState struct {
	SortKeys        bool     `json:"sort_keys"`
	SymmetricChecks bool     `json:"symmetric_checks"`
	SourceFormat    string   `json:"source_format"`
	ArtifactFormat  string   `json:"artifact_format"`
	JSONIndent      int      `json:"json_indent"`
	Serializers     []string `json:"serializers"`
}

// State implements introspection.Introspectable.
func (b *Bridge) State() any {
	return BridgeState{
		SortKeys:        b.config.SortKeys,
		SymmetricChecks: b.config.SymmetricChecks,
		SourceFormat:    "yaml",
		ArtifactFormat:  "json",
		JSONIndent:      len(JSONIndent),
		Serializers:     []string{".json", ".yaml"},
	}
}

// ComponentType implements introspection.Component.
func (b *Bridge) ComponentType() string {
	return "bridge"
}

var _ introspection.Introspectable = (*Bridge)(nil)
var _ introspection.Component = (*Bridge)(nil)
