// Package main is the entry point for spiderctl.
package main

import "github.com/siege-spider/spider-backend/internal/cli"

func main() {
	cli.Execute()
}
