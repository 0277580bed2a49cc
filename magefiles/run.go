//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Research runs the full workflow for the topic in $QUERY and writes the
// reading plan to output/plan.yaml.
func Research() error {
	mg.Deps(Build, Init)
	query := os.Getenv("QUERY")
	if query == "" {
		return fmt.Errorf("set QUERY to the research topic")
	}
	args := []string{"research", "--query", query, "--output", "output/plan.yaml"}
	if source := os.Getenv("SOURCE"); source != "" {
		args = append(args, "--source", source)
	}
	return sh.RunV(binPath(), args...)
}

// Ask answers the question in $QUESTION from the default collection.
func Ask() error {
	mg.Deps(Build)
	question := os.Getenv("QUESTION")
	if question == "" {
		return fmt.Errorf("set QUESTION to the question to ask")
	}
	return sh.RunV(binPath(), "ask", question)
}

// Serve starts the HTTP server on $ADDR (default from config).
func Serve() error {
	mg.Deps(Build)
	args := []string{"serve"}
	if addr := os.Getenv("ADDR"); addr != "" {
		args = append(args, "--addr", addr)
	}
	return sh.RunV(binPath(), args...)
}

func binPath() string {
	return "./" + binDir + "/" + binName
}
