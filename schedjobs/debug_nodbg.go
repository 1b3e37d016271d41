//go:build !debug

package schedjobs

func debugf(string, ...any) {}
