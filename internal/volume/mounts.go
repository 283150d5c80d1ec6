package volume

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// findMount scans a mount table in /proc/mounts format and returns the
// mount point for the given device node. The table is re-read on every
// call by the caller; a mount point observed a second ago may be gone.
func findMount(r io.Reader, node string) (string, bool) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == node {
			return unescapeMount(fields[1]), true
		}
	}
	return "", false
}

// unescapeMount decodes the octal escapes the kernel uses for spaces and
// other special characters in mount points ("\040" etc.).
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if n, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
