// cmd/exalt/commands/flags.go
package commands

// extractFlag scans args for "--name value" (or "--name=value"),
// returning the value and the remaining args with that flag removed.
// Unrecognized "--"-prefixed tokens are left in place for the caller's
// own parsing, the same filter-as-you-go shape the teacher's run
// command uses to strip optimization flags out of its file argument.
func extractFlag(args []string, name string) (string, []string) {
	out := make([]string, 0, len(args))
	value := ""
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == name {
			if i+1 < len(args) {
				value = args[i+1]
				i++
			}
			continue
		}
		if len(a) > len(name)+1 && a[:len(name)+1] == name+"=" {
			value = a[len(name)+1:]
			continue
		}
		out = append(out, a)
	}
	return value, out
}

// extractBoolFlag reports whether name is present in args, returning
// the remaining args with it removed.
func extractBoolFlag(args []string, name string) (bool, []string) {
	out := make([]string, 0, len(args))
	present := false
	for _, a := range args {
		if a == name {
			present = true
			continue
		}
		out = append(out, a)
	}
	return present, out
}
