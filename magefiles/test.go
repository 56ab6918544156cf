// Copyright (c) 2026 Mesh Intelligence. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const postgresDSNEnv = "BACKSTAGE_TEST_POSTGRES_DSN"

// Test groups test targets (all, unit, postgres).
type Test mg.Namespace

// All runs every test with the race detector.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Unit runs the tests that need no external services. The Postgres suite
// skips itself when its DSN is unset, so the variable is cleared here.
func (Test) Unit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for _, pkg := range strings.Split(pkgs, "\n") {
		if pkg != "" && !strings.HasSuffix(pkg, "/magefiles") {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No test packages found.")
		return nil
	}
	args := append([]string{"test"}, unitPkgs...)
	return sh.RunWithV(map[string]string{postgresDSNEnv: ""}, binGo, args...)
}

// Postgres runs the SQL storage suite against a live server.
func (Test) Postgres() error {
	if os.Getenv(postgresDSNEnv) == "" {
		return errors.New(postgresDSNEnv + " is not set")
	}
	return sh.RunV(binGo, "test", "-v", "-run", "Postgres", "./internal/storage/sqlstore/...")
}
