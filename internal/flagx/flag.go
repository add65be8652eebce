// Package flagx holds small helpers for parsing a subset of command-line
// flags without interfering with flags owned by other components.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// ConfigEnvName is consulted by ConfigPath when no config flag is given.
const ConfigEnvName = "CATALOG_CONFIG"

// FilterArgs keeps only the flags named in allowedFlags, so a FlagSet that
// knows a few flags can parse os.Args without failing on the rest. Both
// "-c conf.json" and "--config=conf.json" forms are kept; a separate value is
// taken only when it does not start with a dash. The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			// A following token that does not look like a flag is the value.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// StringFlag extracts the value of a string flag known under any of names
// (without the leading dash). The last occurrence wins. Unknown arguments
// are ignored; an absent flag yields "".
func StringFlag(args []string, names ...string) string {
	allowed := make([]string, 0, len(names))
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
	}

	var value string
	fs := flag.NewFlagSet("stringflag", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(args, allowed))

	return value
}

// ConfigPath returns the JSON config file path given via -c / -config,
// falling back to the CATALOG_CONFIG environment variable.
func ConfigPath(args []string) string {
	if p := StringFlag(args, "config", "c"); p != "" {
		return p
	}
	return os.Getenv(ConfigEnvName)
}

// JsonConfigFlags is ConfigPath applied to the process arguments.
func JsonConfigFlags() string {
	return ConfigPath(os.Args[1:])
}
