//go:build debug

package schedjobs

import "log"

func debugf(format string, args ...any) {
	log.Printf("[DEBUG][SCHED] "+format, args...)
}
