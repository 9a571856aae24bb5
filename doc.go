// Package ttnexus bridges Celeste/Everest mod configuration and external
// editors such as Tea Tree / GameMaker.
//
// The editor cannot read YAML, so the bridge converts a mod's everest.yaml
// into a JSON intermediate artifact (everest.TTNexus.temp) next to it, and
// merges the edited artifact back afterwards:
//
//	<celeste>/Mods/<mod>/everest.yaml          source document
//	<celeste>/Mods/<mod>/everest.TTNexus.temp  intermediate artifact
//
// Layout:
//
//   - pkg/core: mod references, the ordered document value and the failure taxonomy.
//   - pkg/adapters/fs: YAML/JSON serializers, the Bridge and the edit Session.
//   - pkg/report: colored console tags and the append-only error log.
//   - pkg/deps: download and extraction of the dependency bundle.
//   - internal/platform: configuration (viper) and component wiring.
//   - cmd/ttnexus: the command-line entry point.
//
// Usage:
//
//	ttnexus translate-to-intermediate ~/Celeste ExampleMod
//	# edit everest.TTNexus.temp
//	ttnexus translate-to-source ~/Celeste ExampleMod
package ttnexus
