package command

import (
	"strings"
	"sync"
)

// Info is the listing metadata of a registered command
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Infos is the insertion-ordered registry of command metadata.
// Callers outside the package can only read it.
type Infos struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Info
}

func newInfos() *Infos {
	return &Infos{byName: make(map[string]Info)}
}

// set inserts info; an existing name is overwritten in place
func (i *Infos) set(info Info) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.byName[info.Name]; !exists {
		i.order = append(i.order, info.Name)
	}
	i.byName[info.Name] = info
}

// Get returns the metadata registered under name
func (i *Infos) Get(name string) (Info, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	info, ok := i.byName[name]
	return info, ok
}

// Len returns the number of registered commands
func (i *Infos) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.order)
}

// All returns the metadata of all commands in registration order
func (i *Infos) All() []Info {
	i.mu.RLock()
	defer i.mu.RUnlock()

	infos := make([]Info, 0, len(i.order))
	for _, name := range i.order {
		infos = append(infos, i.byName[name])
	}
	return infos
}

// Names returns the command names in registration order
func (i *Infos) Names() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]string(nil), i.order...)
}

// CommandName returns the canonical name of an invocation pattern: its
// first token without placeholder or option syntax.
//
//	CommandName("build <target>")  == "build"
//	CommandName("[profile..]")     == "profile"
func CommandName(pattern string) string {
	fields := strings.Fields(pattern)
	if len(fields) == 0 {
		return ""
	}
	name := strings.TrimLeft(fields[0], "-")
	return strings.Trim(name, "<>[].")
}
