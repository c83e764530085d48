package argv

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Positional is one placeholder of a command pattern
type Positional struct {
	Name     string
	Required bool
	Variadic bool
}

// Pattern is a parsed command pattern such as "checkout <profile> [paths..]"
type Pattern struct {
	Name        string
	Positionals []Positional
}

// ParsePattern parses pattern. Required placeholders are written <name>,
// optional ones [name]; a trailing ".." makes the placeholder variadic.
// Only the last placeholder may be variadic and required placeholders
// must precede optional ones.
func ParsePattern(pattern string) (Pattern, error) {
	fields := strings.Fields(pattern)
	if len(fields) == 0 {
		return Pattern{}, fmt.Errorf("empty command pattern")
	}

	p := Pattern{Name: fields[0]}
	if strings.ContainsAny(p.Name, "<>[]") {
		return Pattern{}, fmt.Errorf("pattern %q: command name must come first", pattern)
	}

	seenOptional := false
	for i, field := range fields[1:] {
		pos, err := parsePositional(field)
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if pos.Required && seenOptional {
			return Pattern{}, fmt.Errorf("pattern %q: required %q follows an optional argument", pattern, pos.Name)
		}
		if pos.Variadic && i != len(fields)-2 {
			return Pattern{}, fmt.Errorf("pattern %q: only the last argument may be variadic", pattern)
		}
		seenOptional = seenOptional || !pos.Required
		p.Positionals = append(p.Positionals, pos)
	}

	return p, nil
}

func parsePositional(field string) (Positional, error) {
	var pos Positional
	switch {
	case strings.HasPrefix(field, "<") && strings.HasSuffix(field, ">"):
		pos.Required = true
	case strings.HasPrefix(field, "[") && strings.HasSuffix(field, "]"):
	default:
		return pos, fmt.Errorf("invalid argument %q", field)
	}

	name := field[1 : len(field)-1]
	if strings.HasSuffix(name, "..") {
		pos.Variadic = true
		name = strings.TrimSuffix(name, "..")
	}
	if name == "" {
		return pos, fmt.Errorf("invalid argument %q", field)
	}
	pos.Name = name

	return pos, nil
}

// MinArgs returns the number of required positionals
func (p Pattern) MinArgs() int {
	n := 0
	for _, pos := range p.Positionals {
		if pos.Required {
			n++
		}
	}
	return n
}

// MaxArgs returns the maximum number of positionals, or -1 when unbounded
func (p Pattern) MaxArgs() int {
	for _, pos := range p.Positionals {
		if pos.Variadic {
			return -1
		}
	}
	return len(p.Positionals)
}

// Validate is a cobra.PositionalArgs enforcing the pattern's arity
func (p Pattern) Validate(cmd *cobra.Command, args []string) error {
	if min := p.MinArgs(); len(args) < min {
		return fmt.Errorf("%s requires at least %d arg(s), only received %d", p.Name, min, len(args))
	}
	if max := p.MaxArgs(); max >= 0 && len(args) > max {
		return fmt.Errorf("%s accepts at most %d arg(s), received %d", p.Name, max, len(args))
	}
	return nil
}

// Bind maps placeholder names to args. A variadic placeholder receives the
// remaining args joined by a space.
func (p Pattern) Bind(args []string) map[string]string {
	named := make(map[string]string, len(p.Positionals))
	for i, pos := range p.Positionals {
		if i >= len(args) {
			break
		}
		if pos.Variadic {
			named[pos.Name] = strings.Join(args[i:], " ")
			break
		}
		named[pos.Name] = args[i]
	}
	return named
}
