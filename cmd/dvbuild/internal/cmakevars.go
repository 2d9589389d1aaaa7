package internal

import "strings"

// boolShorthands are the single-letter flags that take no value and so may
// precede D in a combined group such as -vcD.
const boolShorthands = "vcpiS"

// splitCMakeVars removes every -D/--cmake-vars occurrence from args and
// returns the remaining arguments together with the collected variables.
//
// A bare -D or --cmake-vars takes zero or more following arguments, stopping
// at the first one that starts with "-". An attached value (-DFOO=1,
// --cmake-vars=FOO=1) is a single variable. Scanning stops at "--".
// rest is never nil, since cobra falls back to os.Args for nil arguments.
func splitCMakeVars(args []string) (rest, vars []string) {
	rest = make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i:]...)
			break
		}

		var (
			value    string
			attached bool
			found    bool
		)
		switch {
		case arg == "--cmake-vars":
			found = true
		case strings.HasPrefix(arg, "--cmake-vars="):
			value, attached, found = strings.TrimPrefix(arg, "--cmake-vars="), true, true
		case len(arg) > 1 && arg[0] == '-' && arg[1] != '-':
			group := arg[1:]
			pos := strings.IndexByte(group, 'D')
			if pos < 0 || strings.Trim(group[:pos], boolShorthands) != "" {
				break
			}
			if pos > 0 {
				rest = append(rest, "-"+group[:pos])
			}
			found = true
			if pos+1 < len(group) {
				value, attached = group[pos+1:], true
			}
		}
		if !found {
			rest = append(rest, arg)
			continue
		}
		if attached {
			vars = append(vars, value)
			continue
		}
		for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			vars = append(vars, args[i])
		}
	}
	return rest, vars
}
