package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/sghaida/iocaop/aop"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MethodPlan is the advice chain a woven method would get, outermost first.
type MethodPlan struct {
	Module string          `json:"module"`
	Class  string          `json:"class"`
	Method string          `json:"method"`
	Advice []PlannedAdvice `json:"advice"`
}

type PlannedAdvice struct {
	Aspect   string `json:"aspect"`
	Order    int    `json:"order"`
	Kind     string `json:"kind"`
	Pointcut string `json:"pointcut"`
}

var passthrough = aop.InterceptorFunc(func(inv *aop.Invocation, chain *aop.Chain) (any, error) {
	return chain.Proceed(inv)
})

// buildPlan registers the manifest aspects in a real AspectRegistry and
// matches every component method against the merged advice.
func buildPlan(m *Manifest, opts ...aop.CompileOption) ([]MethodPlan, error) {
	reg := aop.NewAspectRegistry(aop.WithCompileOptions(opts...))
	for _, a := range m.Aspects {
		aspect := aop.Aspect{Name: a.Name, Order: a.Order}
		for _, adv := range a.Advice {
			kind, err := aop.ParseKind(adv.Kind)
			if err != nil {
				return nil, err
			}
			aspect.Advice = append(aspect.Advice, aop.Advice{Kind: kind, Pointcut: adv.Pointcut, Interceptor: passthrough})
		}
		if err := reg.RegisterAspect(aspect); err != nil {
			return nil, err
		}
	}

	merged := reg.Merge()
	var plans []MethodPlan
	for _, c := range m.Components {
		for _, method := range c.Methods {
			p := MethodPlan{Module: c.Module, Class: c.Class, Method: method, Advice: []PlannedAdvice{}}
			for _, it := range merged.Match(c.Module, c.Class, method) {
				p.Advice = append(p.Advice, PlannedAdvice{
					Aspect:   it.Aspect,
					Order:    it.Order,
					Kind:     it.Kind.String(),
					Pointcut: it.Expression,
				})
			}
			plans = append(plans, p)
		}
	}
	return plans, nil
}

func writeJSON(w io.Writer, plans []MethodPlan) error {
	out, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

type palette struct {
	method *color.Color
	kind   *color.Color
	aspect *color.Color
	muted  *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		method: color.New(color.FgCyan, color.Bold),
		kind:   color.New(color.FgYellow),
		aspect: color.New(color.FgGreen),
		muted:  color.New(color.FgHiBlack),
	}
	if noColor {
		for _, c := range []*color.Color{p.method, p.kind, p.aspect, p.muted} {
			c.DisableColor()
		}
	}
	return p
}

func writeText(w io.Writer, plans []MethodPlan, p palette) error {
	var b strings.Builder
	advised := 0
	for _, mp := range plans {
		b.WriteString(p.method.Sprint(mp.Module + "." + mp.Class + "." + mp.Method))
		if len(mp.Advice) == 0 {
			b.WriteString(" " + p.muted.Sprint("(no advice)") + "\n")
			continue
		}
		advised++
		b.WriteString("\n")
		for i, a := range mp.Advice {
			b.WriteString("  " + strconv.Itoa(i+1) + ". ")
			b.WriteString(p.kind.Sprint(padRight(a.Kind, 15)))
			b.WriteString(" " + p.aspect.Sprint(a.Aspect+"@"+strconv.Itoa(a.Order)))
			b.WriteString(" " + p.muted.Sprint(a.Pointcut) + "\n")
		}
	}
	b.WriteString(p.muted.Sprint(strconv.Itoa(advised)+" of "+strconv.Itoa(len(plans))+" methods advised") + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
