package engine

import (
	"fmt"
	"strings"
)

// CapabilityKeys are the manifest keys that describe what an extension can do.
var CapabilityKeys = []string{"activationEvents", "capabilities", "contributes", "main", "browser"}

// ExtractCapabilities renders the declared capabilities, e.g.
// "activationEvents(3), contributes, main", or "None".
func ExtractCapabilities(caps []Capability) string {
	var parts []string
	for _, c := range caps {
		if c.Key == "activationEvents" && c.Count >= 0 {
			parts = append(parts, fmt.Sprintf("activationEvents(%d)", c.Count))
		} else {
			parts = append(parts, c.Key)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}
