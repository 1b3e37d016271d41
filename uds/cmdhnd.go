package uds

import (
	"context"
	"io"
	"sort"
)

type CmdHnd struct {
	Desc  string
	Usage string // argument synopsis shown by `help`
	Fn    func(ctx context.Context, args []string, w io.Writer) error
}

// CommandStore maps command names to handlers. Build it before the service starts.
type CommandStore map[string]CmdHnd

func (cs CommandStore) Add(name string, hnd CmdHnd) {
	cs[name] = hnd
}

// Names in sorted order
func (cs CommandStore) Names() []string {
	names := make([]string, 0, len(cs))
	for k := range cs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
