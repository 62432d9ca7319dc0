package ptysh

import (
	"path/filepath"
	"strings"
)

// Prompts that visually mark a recorded session. The cyan [PTY] tag and
// yellow working directory make it obvious the shell is running inside the
// session host rather than a plain terminal.
const (
	BashPrompt = `\[\033[1;36m\][PTY]\[\033[0m\] \[\033[33m\]\w\[\033[0m\] $ `
	ZshPrompt  = `%F{cyan}%B[PTY]%b%f %F{yellow}%~%f $ `
)

// SessionEnv builds the environment overrides for the session shell: a
// marker variable and a distinguishing prompt matched to the shell flavor.
// A non-empty prompt argument overrides the built-in one.
func SessionEnv(shell, prompt string) []string {
	env := []string{"PTYREC_SESSION=1"}
	switch {
	case isZsh(shell):
		if prompt == "" {
			prompt = ZshPrompt
		}
		env = append(env, "PROMPT="+prompt)
	default:
		if prompt == "" {
			prompt = BashPrompt
		}
		env = append(env, "PS1="+prompt)
	}
	return env
}

func isZsh(shell string) bool {
	return strings.Contains(filepath.Base(shell), "zsh")
}
