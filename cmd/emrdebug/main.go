// Package main is the entry point for the emrdebug CLI.
//
// emrdebug declares the infrastructure needed to attach an IDE debugger to
// Spark jobs running on EMR on EKS and EMR Serverless: two peered VPCs, an
// EKS cluster bound to an EMR virtual cluster, a serverless application and
// a development host that accepts debugger connections. The declared
// topology is rendered as a template for a deploy engine.
//
// Commands: init, synth, plan, stage, keygen, doctor, version, completion.
//
// For detailed usage information, run:
//
//	emrdebug --help
package main

import (
	"fmt"
	"os"

	"github.com/aws-samples/remote-debugging-with-emr/cmd/emrdebug/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
