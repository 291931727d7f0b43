// Command weaveplan prints the advice chain every method would get when a set
// of aspects is woven over a set of components, without building or running
// any of them.
//
// Usage:
//
//	weaveplan -manifest weave.yaml [-format text|json] [-out file] [-legacy] [-no-color]
//
// The manifest lists components by module, class and method names, and
// aspects by name, order and advice:
//
//	components:
//	  - module: api
//	    class: UserApi
//	    methods: [GetUsers, Delete]
//	aspects:
//	  - name: audit
//	    order: 1
//	    advice:
//	      - kind: before
//	        pointcut: "api.UserApi.Get*"
//
// Chains are listed outermost first, exactly as the weaver builds them, so
// the output shows which advice runs first and which pointcuts are too broad.
// -legacy compiles three-segment pointcuts with the method segment unbound.
package main
