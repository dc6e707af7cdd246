package buildctx

import (
	"bufio"
	"fmt"
	"io"
)

// HeaderGuard is the include guard used by WriteHeader.
const HeaderGuard = "W_CONFIG_H_WAF"

// WriteHeader renders the defines as a C configuration header.
// Explicitly undefined keys are written as commented #undef lines.
func (c *Context) WriteHeader(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "/* Configuration header created by wafstrap - do not edit */\n")
	fmt.Fprintf(bw, "#ifndef %s\n#define %s\n\n", HeaderGuard, HeaderGuard)
	for _, d := range c.defines {
		if d.Undefined {
			fmt.Fprintf(bw, "/* #undef %s */\n", d.Key)
			continue
		}
		fmt.Fprintf(bw, "#define %s %s\n", d.Key, d.Value)
	}
	fmt.Fprintf(bw, "\n#endif /* %s */\n", HeaderGuard)

	return bw.Flush()
}
