package di_test

import (
	"errors"
	"strings"
)

type Animal interface{ Sound() string }

type Dog struct{ Name string }

func (d *Dog) Sound() string { return "woof" }

type Cat struct{ Lives int }

func (c *Cat) Sound() string { return "meow" }

type Generic struct{ Kind string }

func (g *Generic) Sound() string { return "..." + g.Kind }

type JSONParser struct{}

type Repo[T any] struct{ Items []T }

type Address struct{ City string }

type UserApi struct {
	BaseURL string
	Tags    []string
	Headers map[string]string
	Addr    *Address
	calls   int
}

func (u *UserApi) GetUsers() []string {
	u.calls++
	return []string{u.BaseURL + "/users"}
}

func (u *UserApi) Calls() int { return u.calls }

func newUserApi() any {
	return &UserApi{
		BaseURL: "http://api",
		Tags:    []string{"a", "b"},
		Headers: map[string]string{"x": "1"},
		Addr:    &Address{City: "Berlin"},
	}
}

type ConstructibleA struct{ ID string }

func newConstructibleA() (*ConstructibleA, error) { return &ConstructibleA{ID: "a"}, nil }

func failingConstructibleA() (*ConstructibleA, error) { return nil, errors.New("no a today") }

type ClassB struct{ ID string }

func newClassB() *ClassB { return &ClassB{ID: strings.ToLower("B")} }
