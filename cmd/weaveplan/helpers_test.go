package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type pkgHarness struct {
	t   *testing.T
	dir string
}

func newPkg(t *testing.T) *pkgHarness {
	t.Helper()
	return &pkgHarness{t: t, dir: t.TempDir()}
}

func (p *pkgHarness) write(rel, content string) string {
	p.t.Helper()
	path := filepath.Join(p.dir, rel)
	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(p.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (p *pkgHarness) out(rel string) string {
	return filepath.Join(p.dir, rel)
}

func (p *pkgHarness) read(rel string) string {
	p.t.Helper()
	b, err := os.ReadFile(filepath.Join(p.dir, rel))
	require.NoError(p.t, err)
	return string(b)
}

// runCLI runs the command and returns what it printed.
func (p *pkgHarness) runCLI(args ...string) (string, error) {
	p.t.Helper()
	var buf bytes.Buffer
	err := run(args, &buf)
	return buf.String(), err
}

const sampleManifest = `
components:
  - module: api
    class: UserApi
    methods: [GetUsers, Delete]
  - class: Repo
    methods: [Save]
aspects:
  - name: audit
    order: 2
    advice:
      - {kind: before, pointcut: "*.UserApi.Get*"}
      - {kind: after, pointcut: "*.UserApi.Get*"}
  - name: timing
    order: 1
    advice:
      - {kind: around, pointcut: "*"}
      - {kind: before, pointcut: "UserApi.*"}
      - {kind: after, pointcut: "UserApi.*"}
`
