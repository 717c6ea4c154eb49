// Package naming derives the environment-variable namespace for a tool.
//
// Every tool gets a prefix computed from its display name; the generated
// .env file and the rewritten compose document agree on that prefix, which
// is what ties the two files together. All functions are pure.
package naming

import (
	"fmt"
	"strings"
)

// =============================================================================
// Variable Prefix
// =============================================================================

// VarPrefix converts a tool name into an environment-variable prefix.
//
// The transformation rules are:
//   - Letters are uppercased
//   - Digits are kept as-is
//   - Every run of other characters collapses into a single underscore
//   - Leading and trailing underscores are trimmed
//
// Example:
//
//	VarPrefix("cowrie")        // returns "COWRIE"
//	VarPrefix("dio naea-2")    // returns "DIO_NAEA_2"
//	VarPrefix("--weird.name")  // returns "WEIRD_NAME"
func VarPrefix(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToUpper(name) {
		switch {
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// SanitizeEnvKey normalizes a manifest env key the same way VarPrefix
// normalizes a tool name. "telnet-enabled" and "TELNET_ENABLED" produce the
// same identifier, so two differently spelled keys can collide; manifest
// validation rejects that case before anything is written.
func SanitizeEnvKey(key string) string {
	return VarPrefix(key)
}

// =============================================================================
// Derived Variable Names
// =============================================================================

// PortSrcVar returns the host-side variable name for the i-th port mapping.
// Indices are 1-based in manifest order.
func PortSrcVar(prefix string, i int) string {
	return fmt.Sprintf("%s_PORT%d_SRC", prefix, i)
}

// PortDstVar returns the container-side variable name for the i-th port mapping.
func PortDstVar(prefix string, i int) string {
	return fmt.Sprintf("%s_PORT%d_DST", prefix, i)
}

// VolSrcVar returns the host-path variable name for the i-th volume mapping.
func VolSrcVar(prefix string, i int) string {
	return fmt.Sprintf("%s_VOL%d_SRC", prefix, i)
}

// VolDstVar returns the container-path variable name for the i-th volume mapping.
func VolDstVar(prefix string, i int) string {
	return fmt.Sprintf("%s_VOL%d_DST", prefix, i)
}

// EnvVar returns the namespaced variable name for a manifest env key.
func EnvVar(prefix, key string) string {
	return prefix + "_" + SanitizeEnvKey(key)
}

// Placeholder wraps a variable name in compose interpolation syntax.
//
// Example:
//
//	Placeholder("COWRIE_PORT1_SRC") // returns "${COWRIE_PORT1_SRC}"
func Placeholder(varName string) string {
	return "${" + varName + "}"
}
