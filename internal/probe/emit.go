// Package probe emits the disposable C program that reports ground
// truth about the compiling platform, and parses its output back into
// member facts.
package probe

import (
	"fmt"
	"strings"
)

// Include names one header the probe program pulls in. Local includes
// use quote syntax, everything else angle brackets.
type Include struct {
	Path  string
	Local bool
}

// ConstFragment returns the probe statement printing one constant as
// "<name>=<value>".
func ConstFragment(name string) string {
	return fmt.Sprintf("\tprintf(\"%s=%%lld\\n\", (long long)(%s));\n", name, name)
}

// StructFragment returns the probe block printing one structure's
// layout as "<basename>=<sizeof>:" followed by comma-separated
// "<member>@<offset>+<width><sign>" tokens. The total size is what
// exposes trailing padding, which member offsets alone cannot show.
//
// Offsets come from char-pointer subtraction against a local instance,
// widths from sizeof. Signedness is discovered by assigning -1 to the
// member and testing whether it reads back negative; that test works
// for any integer width, which is exactly why only plain integer
// members are supported.
func StructFragment(structName, basename string, members []string) string {
	var b strings.Builder
	b.WriteString("\t{\n")
	fmt.Fprintf(&b, "\t\t%s probe;\n", structName)
	fmt.Fprintf(&b, "\t\tprintf(\"%s=%%lu:\", (unsigned long)sizeof(probe));\n", basename)
	for i, member := range members {
		if i > 0 {
			b.WriteString("\t\tprintf(\",\");\n")
		}
		fmt.Fprintf(&b, "\t\tprobe.%s = -1;\n", member)
		fmt.Fprintf(&b,
			"\t\tprintf(\"%s@%%ld+%%lu%%c\", (long)((char *)&probe.%s - (char *)&probe), (unsigned long)sizeof(probe.%s), probe.%s < 0 ? 's' : 'u');\n",
			member, member, member, member)
	}
	b.WriteString("\t\tprintf(\"\\n\");\n")
	b.WriteString("\t}\n")
	return b.String()
}

// Program assembles all fragments into one compilable unit.
func Program(includes []Include, fragments []string) string {
	var b strings.Builder
	b.WriteString("#include <stdio.h>\n")
	for _, inc := range includes {
		if inc.Local {
			fmt.Fprintf(&b, "#include \"%s\"\n", inc.Path)
		} else {
			fmt.Fprintf(&b, "#include <%s>\n", inc.Path)
		}
	}
	b.WriteString("\nint main(void)\n{\n")
	for _, frag := range fragments {
		b.WriteString(frag)
	}
	b.WriteString("\treturn 0;\n}\n")
	return b.String()
}
