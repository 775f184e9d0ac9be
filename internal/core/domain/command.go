package domain

// Command is an external process invocation.
type Command struct {
	// Name is the executable, looked up on PATH unless absolute.
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds extra "KEY=VALUE" entries layered over the process environment.
	Env []string
	// TTY attaches the process to a pseudo-terminal where the platform supports it.
	TTY bool
}

// Argv returns the command line as a slice.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}
