package aop

import (
	"regexp"
	"strings"
)

// Pointcut is a compiled predicate over (module, class, method).
type Pointcut struct {
	expr   string
	module segment
	class  segment
	method segment
}

// segment matches one field. The zero value matches everything.
type segment struct {
	literal string
	exact   bool
	re      *regexp.Regexp
}

func (s segment) match(v string) bool {
	switch {
	case s.exact:
		return v == s.literal
	case s.re != nil:
		return s.re.MatchString(v)
	}
	return true
}

// CompileOption adjusts how expressions are compiled.
type CompileOption func(*compileOptions)

type compileOptions struct {
	legacyThreeSegment bool
}

// LegacyThreeSegment leaves the method unbound for three-segment
// expressions, so "api.UserApi.get*" matches every method of api.UserApi.
func LegacyThreeSegment() CompileOption {
	return func(o *compileOptions) { o.legacyThreeSegment = true }
}

// Compile turns a dotted expression into a Pointcut.
//
//	"get*"              method
//	"UserApi.get*"      class, method
//	"api.UserApi.get*"  module, class, method
//
// Empty segments match everything and "*" matches any substring. Anything
// else must match exactly. Malformed expressions never fail: segments past
// the third are folded into the method segment.
func Compile(expr string, opts ...CompileOption) *Pointcut {
	var o compileOptions
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pointcut{expr: expr}
	parts := strings.Split(expr, ".")
	switch len(parts) {
	case 1:
		p.method = compileSegment(parts[0])
	case 2:
		p.class = compileSegment(parts[0])
		p.method = compileSegment(parts[1])
	default:
		p.module = compileSegment(parts[0])
		p.class = compileSegment(parts[1])
		if !o.legacyThreeSegment {
			p.method = compileSegment(strings.Join(parts[2:], "."))
		}
	}
	return p
}

// Test reports whether all three fields match.
func (p *Pointcut) Test(module, class, method string) bool {
	return p.module.match(module) && p.class.match(class) && p.method.match(method)
}

// String returns the source expression.
func (p *Pointcut) String() string { return p.expr }

func compileSegment(seg string) segment {
	if seg == "" {
		return segment{}
	}
	if !strings.Contains(seg, "*") {
		return segment{literal: seg, exact: true}
	}

	var b strings.Builder
	b.WriteString(`(?s)^`)
	prevStar := false
	for _, part := range strings.SplitAfter(seg, "*") {
		lit := strings.TrimSuffix(part, "*")
		if lit != "" {
			b.WriteString(regexp.QuoteMeta(lit))
			prevStar = false
		}
		if strings.HasSuffix(part, "*") && !prevStar {
			b.WriteString(`.*`)
			prevStar = true
		}
	}
	b.WriteString(`$`)
	return segment{re: regexp.MustCompile(b.String())}
}
