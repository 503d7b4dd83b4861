package main

import (
	"fmt"
	"os"

	_ "biosync/docs"
	"biosync/internal/cli"
)

// Package main biosync attendance sync server.
//
// @title biosync Attendance Sync API
// @version 1.0
// @description Read-only sync of ZK time clock punches into per-employee check-in/check-out records.
//
// @BasePath /
func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
