// pkg/database/substitute.go

package database

import (
	"strconv"
	"strings"
)

// defaultRootPassword fills {root_password} when the credential set has
// none. A fixed, documented default keeps substitution deterministic for
// types whose templates reference the placeholder anyway.
const defaultRootPassword = "rootpass"

// Substitute resolves the fixed placeholder set in a template pattern from
// the instance name and credential set. Placeholders: {name}, {username},
// {password}, {database}, {port}, {root_password}. Unknown text passes
// through literally.
func Substitute(pattern, name string, creds Credentials) string {
	rootPassword := creds.RootPassword
	if rootPassword == "" {
		rootPassword = defaultRootPassword
	}

	r := strings.NewReplacer(
		"{name}", name,
		"{username}", creds.Username,
		"{password}", creds.Password,
		"{database}", creds.Database,
		"{port}", strconv.Itoa(int(creds.Port)),
		"{root_password}", rootPassword,
	)
	return r.Replace(pattern)
}

// SubstituteEnv resolves every environment pattern of a template into
// KEY=value entries, preserving template order.
func SubstituteEnv(tpl Template, name string, creds Credentials) []string {
	env := make([]string, 0, len(tpl.Env))
	for _, ev := range tpl.Env {
		env = append(env, ev.Name+"="+Substitute(ev.Value, name, creds))
	}
	return env
}

// SubstituteVolumes resolves every volume bind pattern of a template.
func SubstituteVolumes(tpl Template, name string, creds Credentials) []string {
	binds := make([]string, 0, len(tpl.Volumes))
	for _, v := range tpl.Volumes {
		binds = append(binds, Substitute(v, name, creds))
	}
	return binds
}
