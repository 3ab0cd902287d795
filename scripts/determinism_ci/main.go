package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"sort"
)

// exampleDirs hold a definition next to its checked-in generated file.
var exampleDirs = []string{
	filepath.Join("examples", "balances"),
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "determinism check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK: generated files are stable and up to date")
}

func run() error {
	projectRoot, err := os.Getwd()
	if err != nil {
		return err
	}
	tmpDir, err := os.MkdirTemp("", "moderr-determinism-ci-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	for i, dir := range exampleDirs {
		exampleDir := filepath.Join(projectRoot, dir)
		out1 := filepath.Join(tmpDir, fmt.Sprintf("%d-a", i))
		out2 := filepath.Join(tmpDir, fmt.Sprintf("%d-b", i))

		for _, out := range []string{out1, out2} {
			if err := runCmd(exampleDir, "go", "run", "../../cmd/moderr", "build", "--no-color", "--log-level", "warn", "-o", out, "balances.cue"); err != nil {
				return err
			}
		}
		h1, err := hashDir(out1)
		if err != nil {
			return err
		}
		h2, err := hashDir(out2)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(h1, h2) {
			return fmt.Errorf("%s: drift detected between two runs", dir)
		}

		// Every generated file must match the copy committed next to the definition.
		for name, hash := range h1 {
			committed, err := hashFile(filepath.Join(exampleDir, name))
			if err != nil {
				return fmt.Errorf("%s: %w", dir, err)
			}
			if committed != hash {
				return fmt.Errorf("%s/%s is stale; run go generate ./%s", dir, name, dir)
			}
		}
	}
	return nil
}

func runCmd(dir string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", name, args, err)
	}
	return nil
}

func hashDir(dir string) (map[string]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_gen.go"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no generated files in %s", dir)
	}
	sort.Strings(matches)
	out := make(map[string]string, len(matches))
	for _, path := range matches {
		h, err := hashFile(path)
		if err != nil {
			return nil, err
		}
		out[filepath.Base(path)] = h
	}
	return out, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
