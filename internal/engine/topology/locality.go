package topology

import "regexp"

// Locality strings look like:
//
//	zoneid=a2da… processid=[unset] machineid=b50a… dcid=0 data_hall=0
var localityRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)=(\[[^\]]*\]|\S+)`)

// parseLocality splits a Locality attribute into its key=value parts.
func parseLocality(s string) map[string]string {
	out := make(map[string]string)
	for _, m := range localityRe.FindAllStringSubmatch(s, -1) {
		out[m[1]] = m[2]
	}
	return out
}
