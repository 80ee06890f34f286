// File: strata/profiles.go
package strata

import (
	"fmt"
	"strings"
)

// Profiles is a parsed boolean expression over named profiles.
// It is immutable once built and may be evaluated repeatedly against
// different predicates.
type Profiles interface {
	// Matches evaluates the expression; isActive answers whether a
	// single named profile is active.
	Matches(isActive func(name string) bool) bool
}

// ProfilesOf parses one or more profile expressions and combines them
// with OR: the result matches if any one expression matches. This is
// independent of the &/| logic inside each expression.
//
// Grammar: & and | combine operands, ! negates the following literal
// or parenthesized group, and parentheses delimit sub-expressions.
// Mixing & and | at the same nesting level without parentheses is a
// parse error; there is no implicit operator precedence.
func ProfilesOf(expressions ...string) (Profiles, error) {
	if len(expressions) == 0 {
		return nil, fmt.Errorf("%w: at least one profile expression is required", ErrInvalidArgument)
	}

	parsed := make([]Profiles, len(expressions))
	for i, expression := range expressions {
		p, err := ParseProfiles(expression)
		if err != nil {
			return nil, err
		}
		parsed[i] = p
	}

	if len(parsed) == 1 {
		return parsed[0], nil
	}
	return orProfiles(parsed), nil
}

// ParseProfiles parses a single profile expression.
func ParseProfiles(expression string) (Profiles, error) {
	parser := &profileParser{
		expression: expression,
		tokens:     tokenizeProfiles(expression),
	}

	return parser.parse(ctxNone)
}

// tokenizeProfiles splits an expression on the structural characters
// ( ) & | !, each returned as its own token. Any other run of
// characters is trimmed and kept whole as a literal profile name, so
// names may contain spaces or dots.
func tokenizeProfiles(expression string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if literal := strings.TrimSpace(current.String()); literal != "" {
			tokens = append(tokens, literal)
		}
		current.Reset()
	}

	for _, r := range expression {
		switch r {
		case '(', ')', '&', '|', '!':
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

type parseContext int

const (
	ctxNone parseContext = iota
	ctxParen
	ctxNegate
)

type profileParser struct {
	expression string
	tokens     []string
	pos        int
}

// parse consumes tokens until the current context closes: end of input
// for ctxNone, the matching ')' for ctxParen, or a single operand for
// ctxNegate.
func (p *profileParser) parse(ctx parseContext) (Profiles, error) {
	var elements []Profiles
	var operator byte
	pending := false // an operator awaits its right operand

	for p.pos < len(p.tokens) {
		token := p.tokens[p.pos]
		p.pos++

		switch token {
		case "(":
			group, err := p.parse(ctxParen)
			if err != nil {
				return nil, err
			}
			if ctx == ctxNegate {
				return group, nil
			}
			elements = append(elements, group)
			pending = false

		case ")":
			switch ctx {
			case ctxNegate:
				return nil, malformed(p.expression, `operator "!" has no operand`)
			case ctxParen:
				return p.merge(elements, operator, pending, `empty group "()"`)
			default:
				return nil, malformed(p.expression, "unmatched ')'")
			}

		case "&", "|":
			if ctx == ctxNegate {
				return nil, malformed(p.expression, `operator "!" has no operand`)
			}
			if len(elements) == 0 || pending {
				return nil, malformed(p.expression, fmt.Sprintf("operator %q has no operand", token))
			}
			if operator != 0 && operator != token[0] {
				return nil, malformed(p.expression, `cannot mix "&" and "|" without parentheses`)
			}
			operator = token[0]
			pending = true

		case "!":
			operand, err := p.parse(ctxNegate)
			if err != nil {
				return nil, err
			}
			negated := notProfiles{operand}
			if ctx == ctxNegate {
				return negated, nil
			}
			elements = append(elements, negated)
			pending = false

		default:
			literal := profileLiteral(token)
			if ctx == ctxNegate {
				return literal, nil
			}
			elements = append(elements, literal)
			pending = false
		}
	}

	switch ctx {
	case ctxParen:
		return nil, malformed(p.expression, "unmatched '('")
	case ctxNegate:
		return nil, malformed(p.expression, `operator "!" has no operand`)
	}
	return p.merge(elements, operator, pending, "empty expression")
}

func (p *profileParser) merge(elements []Profiles, operator byte, pending bool, emptyReason string) (Profiles, error) {
	if pending {
		return nil, malformed(p.expression, fmt.Sprintf("operator %q has no operand", string(operator)))
	}
	if len(elements) == 0 {
		return nil, malformed(p.expression, emptyReason)
	}
	if len(elements) == 1 {
		return elements[0], nil
	}
	if operator == '&' {
		return andProfiles(elements), nil
	}
	return orProfiles(elements), nil
}

// profileLiteral matches when the named profile is active.
type profileLiteral string

func (l profileLiteral) Matches(isActive func(string) bool) bool {
	return isActive(string(l))
}

func (l profileLiteral) String() string { return string(l) }

type notProfiles struct {
	inner Profiles
}

func (n notProfiles) Matches(isActive func(string) bool) bool {
	return !n.inner.Matches(isActive)
}

func (n notProfiles) String() string {
	switch n.inner.(type) {
	case andProfiles, orProfiles:
		return fmt.Sprintf("!(%v)", n.inner)
	default:
		return fmt.Sprintf("!%v", n.inner)
	}
}

type andProfiles []Profiles

func (a andProfiles) Matches(isActive func(string) bool) bool {
	for _, p := range a {
		if !p.Matches(isActive) {
			return false
		}
	}
	return true
}

func (a andProfiles) String() string { return joinProfiles(a, " & ") }

type orProfiles []Profiles

func (o orProfiles) Matches(isActive func(string) bool) bool {
	for _, p := range o {
		if p.Matches(isActive) {
			return true
		}
	}
	return false
}

func (o orProfiles) String() string { return joinProfiles(o, " | ") }

func joinProfiles(elements []Profiles, separator string) string {
	parts := make([]string, len(elements))
	for i, element := range elements {
		switch element.(type) {
		case andProfiles, orProfiles:
			parts[i] = fmt.Sprintf("(%v)", element)
		default:
			parts[i] = fmt.Sprintf("%v", element)
		}
	}
	return strings.Join(parts, separator)
}
