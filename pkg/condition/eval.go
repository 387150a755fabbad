package condition

import (
	"fmt"
	"regexp"
	"strings"
)

// Environment is the read-only view of an installed load order that
// conditions are evaluated against. pkg/loadorder provides the
// concrete implementation; tests substitute fakes.
//
// Path arguments are relative to the game's data directory and
// resolved case-insensitively. Pattern arguments apply a regular
// expression to the final path segment only.
type Environment interface {
	// FileExists reports whether a file exists at the literal path.
	FileExists(path string) bool
	// FileReadable reports whether the file exists and can be opened.
	FileReadable(path string) bool
	// FileSize returns the file's size; ok is false if it is missing.
	FileSize(path string) (size int64, ok bool)
	// FileCRC returns the file's CRC-32; ok is false if it is missing
	// or unreadable.
	FileCRC(path string) (crc uint32, ok bool)
	// GlobPaths returns the paths matching a final-segment pattern.
	GlobPaths(pattern string) ([]string, error)
	// ActivePlugins returns the active plugin names in load order.
	ActivePlugins() []string
	// IsPluginActive reports whether the named plugin is active,
	// case-insensitively.
	IsPluginActive(name string) bool
	// PluginIsMaster reports whether the plugin is ESM-flagged.
	PluginIsMaster(name string) (bool, error)
	// PluginHasFormID reports whether the plugin's header defines the
	// given FormID.
	PluginHasFormID(name string, id uint32) (bool, error)
	// FileVersion returns the version of a plugin or executable file.
	// ok is false when the file is missing entirely.
	FileVersion(path string) (version string, ok bool, err error)
	// ProductVersion returns the product version of an executable.
	// ok is false when the file is missing entirely.
	ProductVersion(path string) (version string, ok bool, err error)
}

// EvalErrorKind classifies evaluation failures.
type EvalErrorKind int

const (
	// HeaderUnavailable means a plugin's header could not be read or
	// parsed. Surfaced, not swallowed: a corrupt plugin is itself
	// diagnostically relevant.
	HeaderUnavailable EvalErrorKind = iota
	// BadPattern means a regex argument failed to compile.
	BadPattern
)

// EvalError reports a condition that could not be evaluated.
type EvalError struct {
	Kind   EvalErrorKind
	Detail string
	Err    error
}

func (e *EvalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("condition evaluation: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("condition evaluation: %s", e.Detail)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// IsPattern reports whether an argument is a regex pattern rather than
// a literal path or name, using LOOT's heuristic: the presence of any
// character that cannot occur in a Windows file name but can in a
// pattern.
func IsPattern(arg string) bool {
	if strings.ContainsAny(arg, `:\*?|`) {
		return true
	}
	// Explicitly delimited regex, e.g. /^Unofficial.*/i
	return len(arg) > 2 && strings.HasPrefix(arg, "/") &&
		(strings.HasSuffix(arg, "/") || strings.HasSuffix(arg, "/i"))
}

// Unwrap strips `/.../` or `/.../i` delimiters from a pattern
// argument, returning the bare pattern. Undelimited arguments pass
// through unchanged.
func Unwrap(arg string) string {
	if len(arg) > 2 && strings.HasPrefix(arg, "/") {
		if strings.HasSuffix(arg, "/i") {
			return arg[1 : len(arg)-2]
		}
		if strings.HasSuffix(arg, "/") {
			return arg[1 : len(arg)-1]
		}
	}
	return arg
}

// CompileNamePattern compiles a plugin-name pattern. Plugin names
// match case-insensitively, and the pattern must cover the whole name.
// A `/.../` or `/.../i` wrapped argument is unwrapped first.
func CompileNamePattern(arg string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)^(?:" + Unwrap(arg) + ")$")
	if err != nil {
		return nil, &EvalError{Kind: BadPattern, Detail: fmt.Sprintf("invalid pattern %q", arg), Err: err}
	}
	return re, nil
}

// Evaluate walks a condition tree against the environment. And/Or
// short-circuit left to right. Missing files make file predicates
// false rather than erroring.
func Evaluate(e Expr, env Environment) (bool, error) {
	switch x := e.(type) {
	case Not:
		v, err := Evaluate(x.X, env)
		if err != nil {
			return false, err
		}
		return !v, nil
	case And:
		for _, sub := range x.Xs {
			v, err := Evaluate(sub, env)
			if err != nil {
				return false, err
			}
			if !v {
				return false, nil
			}
		}
		return true, nil
	case Or:
		for _, sub := range x.Xs {
			v, err := Evaluate(sub, env)
			if err != nil {
				return false, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil
	case FileExists:
		if IsPattern(x.Path) {
			matches, err := env.GlobPaths(x.Path)
			if err != nil {
				return false, err
			}
			return len(matches) > 0, nil
		}
		return env.FileExists(x.Path), nil
	case Readable:
		return env.FileReadable(x.Path), nil
	case FileSize:
		size, ok := env.FileSize(x.Path)
		return ok && size == x.Size, nil
	case Checksum:
		crc, ok := env.FileCRC(x.Path)
		return ok && crc == x.CRC, nil
	case Many:
		matches, err := env.GlobPaths(x.Path)
		if err != nil {
			return false, err
		}
		return len(matches) >= 2, nil
	case ActivePlugin:
		return evalActive(x.Name, env, 1)
	case ManyActive:
		return evalActive(x.Name, env, 2)
	case IsMaster:
		return env.PluginIsMaster(x.Name)
	case ActiveHasFormID:
		if IsPattern(x.Name) {
			re, err := CompileNamePattern(x.Name)
			if err != nil {
				return false, err
			}
			for _, plugin := range env.ActivePlugins() {
				if !re.MatchString(plugin) {
					continue
				}
				has, err := env.PluginHasFormID(plugin, x.FormID)
				if err != nil {
					return false, err
				}
				if has {
					return true, nil
				}
			}
			return false, nil
		}
		if !env.IsPluginActive(x.Name) {
			return false, nil
		}
		return env.PluginHasFormID(x.Name, x.FormID)
	case Version:
		actual, ok, err := env.FileVersion(x.Path)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		if actual == "" {
			// "If filepath does not exist or does not have a version
			// number, its version is assumed to be 0."
			actual = "0"
		}
		return x.Op.CompareWith(actual, x.Want), nil
	case ProductVersion:
		actual, ok, err := env.ProductVersion(x.Path)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		if actual == "" {
			actual = "0"
		}
		return x.Op.CompareWith(actual, x.Want), nil
	default:
		return false, fmt.Errorf("unhandled condition node %T", e)
	}
}

// evalActive counts active plugins matching a name or pattern and
// reports whether at least want matched.
func evalActive(name string, env Environment, want int) (bool, error) {
	if want == 1 && !IsPattern(name) {
		return env.IsPluginActive(name), nil
	}
	// many_active always compiles its argument as a pattern, even when
	// it looks like a literal name, as LOOT does.
	re, err := CompileNamePattern(name)
	if err != nil {
		return false, err
	}
	count := 0
	for _, plugin := range env.ActivePlugins() {
		if re.MatchString(plugin) {
			count++
			if count >= want {
				return true, nil
			}
		}
	}
	return false, nil
}
