//go:build mage

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	cmdDir   = "./cmd/server"
	buildDir = "bin"
)

var tools = []string{
	"golang.org/x/tools/cmd/goimports@latest",
	"honnef.co/go/tools/cmd/staticcheck@latest",
	"github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	"github.com/go-delve/delve/cmd/dlv@latest",
	"golang.org/x/vuln/cmd/govulncheck@latest",
}

func run(env []string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout, cmd.Stderr, cmd.Stdin = os.Stdout, os.Stderr, os.Stdin
	return cmd.Run()
}

func sh(name string, args ...string) error { return run(nil, name, args...) }

func out(name string, args ...string) string {
	var buf bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout, cmd.Stderr = &buf, &buf
	_ = cmd.Run()
	return strings.TrimSpace(buf.String())
}

func requireTools(bins ...string) error {
	for _, b := range bins {
		if _, err := exec.LookPath(b); err != nil {
			return fmt.Errorf("%s not found; run 'mage deps'", b)
		}
	}
	return nil
}

func inOrder(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// testCmd runs go test with the race detector unless NO_RACE=1.
func testCmd(extra ...string) error {
	args := append([]string{"test"}, extra...)
	if os.Getenv("NO_RACE") == "1" {
		return sh("go", append(args, "./...")...)
	}
	return run([]string{"CGO_ENABLED=1"}, "go", append(append(args, "-race"), "./...")...)
}

// serverURL is the base URL of a locally running server (HTTP_ADDR, default :8080).
func serverURL() string {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// Bootstrap: download modules and install tooling
func Bootstrap() error { return inOrder(ModDownload, Deps) }

// ModDownload: prefetch module dependencies
func ModDownload() error { return sh("go", "mod", "download", "all") }

// Deps: install linters, debugger and vulnerability scanner
func Deps() error {
	for _, t := range tools {
		if err := sh("go", "install", t); err != nil {
			return err
		}
	}
	return nil
}

// Build: compile the portal server into ./bin
func Build() error {
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	name := "spportal"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return sh("go", "build", "-trimpath", "-buildvcs=false", "-ldflags", "-s -w",
		"-o", filepath.Join(buildDir, name), cmdDir)
}

// Run: run from source (reads .env for SP_* settings)
func Run() error { return sh("go", "run", cmdDir) }

// Debug: run under headless delve on :2345
func Debug() error {
	if err := requireTools("dlv"); err != nil {
		return err
	}
	return sh("dlv", "debug", cmdDir, "--headless", "--listen=:2345", "--api-version=2", "--accept-multiclient")
}

// Test: unit tests (race detector unless NO_RACE=1)
func Test() error { return testCmd() }

// Cover: tests with coverage, rendered to coverage.html
func Cover() error {
	if err := testCmd("-coverprofile=coverage.out"); err != nil {
		return err
	}
	fmt.Println("Coverage HTML -> coverage.html")
	return sh("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Lint: go vet, staticcheck and golangci-lint
func Lint() error {
	if err := requireTools("staticcheck", "golangci-lint"); err != nil {
		return err
	}
	return inOrder(
		func() error { return sh("go", "vet", "./...") },
		func() error { return sh("staticcheck", "./...") },
		func() error { return sh("golangci-lint", "run") },
	)
}

// Vuln: scan for known vulnerabilities
func Vuln() error {
	if err := requireTools("govulncheck"); err != nil {
		return err
	}
	return sh("govulncheck", "./...")
}

// Fmt: gofmt and goimports in place
func Fmt() error {
	if err := sh("go", "fmt", "./..."); err != nil {
		return err
	}
	return sh("goimports", "-w", ".")
}

// FmtCheck: fail when files need gofmt or goimports
func FmtCheck() error {
	var msgs []string
	for _, tool := range []string{"gofmt", "goimports"} {
		if files := out(tool, "-l", "."); files != "" {
			msgs = append(msgs, "Needs "+tool+":\n"+files)
		}
	}
	if len(msgs) > 0 {
		return errors.New(strings.Join(msgs, "\n\n"))
	}
	return nil
}

// TidyCheck: fail when go mod tidy changes go.mod or go.sum
func TidyCheck() error {
	before := out("git", "status", "--porcelain", "--", "go.mod", "go.sum")
	if err := sh("go", "mod", "tidy"); err != nil {
		return err
	}
	if after := out("git", "status", "--porcelain", "--", "go.mod", "go.sum"); before != after {
		return fmt.Errorf("go.mod/go.sum not tidy:\n%s", out("git", "--no-pager", "diff", "--", "go.mod", "go.sum"))
	}
	return nil
}

// Health: run an availability probe against a local server
func Health() error {
	return sh("curl", "-sS", "-w", "\n%{http_code}\n", serverURL()+"/health")
}

// Stream: follow the live probe stream of a local server
func Stream() error {
	return sh("curl", "-sSN", serverURL()+"/health/stream")
}

// Clean: remove build output, coverage files and the local probe database
func Clean() error {
	paths := []string{buildDir, "coverage.out", "coverage.html"}
	dbFiles, _ := filepath.Glob("spportal.db*")
	for _, p := range append(paths, dbFiles...) {
		_ = os.RemoveAll(p)
	}
	return nil
}

// Verify: formatting, tidiness, lint, vulnerabilities, build and tests
func Verify() error {
	if err := inOrder(FmtCheck, TidyCheck, Lint, Vuln, Build, Test); err != nil {
		return err
	}
	fmt.Println("Build + checks passed")
	return nil
}
