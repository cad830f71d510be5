package util

import (
	"sort"
	"strings"
)

// FormatInfoSection renders one INFO section: a "# Name" header followed by the sorted fields.
func FormatInfoSection(name string, info map[string]string) string {
	var builder strings.Builder
	builder.WriteString("# ")
	builder.WriteString(name)
	builder.WriteString("\r\n")
	writeFields(&builder, info)
	return builder.String()
}

func writeFields(builder *strings.Builder, info map[string]string) {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		builder.WriteString(k)
		builder.WriteString(":")
		builder.WriteString(info[k])
		builder.WriteString("\r\n")
	}
}
