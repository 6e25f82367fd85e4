package sysctl

import "strings"

// DefaultRoot is where the kernel exposes runtime parameters.
const DefaultRoot = "/proc/sys"

// Resolver maps dotted key names onto a parameter filesystem rooted at Root.
// The zero value resolves against DefaultRoot.
type Resolver struct {
	Root string
}

// Resolve returns the parameter path for name. Every "." becomes a path
// separator; nothing else is rewritten.
func (r Resolver) Resolve(name string) string {
	root := strings.TrimRight(r.Root, "/")
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot
	}
	return root + "/" + strings.ReplaceAll(name, ".", "/")
}

// KeyPath resolves name against DefaultRoot.
func KeyPath(name string) string {
	return Resolver{}.Resolve(name)
}
