// Package commandmeta holds per-command behavior keyed by command path.
package commandmeta

import "strings"

type OutputPolicy uint8

const (
	OutputPolicyStructured OutputPolicy = iota
	OutputPolicyTextOnly
	OutputPolicyYAMLDefaultTextOrYAML
)

func EmitsExecutionStatusPath(path string) bool {
	switch strings.TrimSpace(path) {
	case "snapdiff specs add":
		return true
	default:
		return false
	}
}

func OutputPolicyForPath(path string) OutputPolicy {
	normalized := strings.TrimSpace(path)
	switch {
	case normalized == "snapdiff specs show":
		return OutputPolicyYAMLDefaultTextOrYAML
	case strings.HasPrefix(normalized, "snapdiff completion"):
		return OutputPolicyTextOnly
	default:
		return OutputPolicyStructured
	}
}
