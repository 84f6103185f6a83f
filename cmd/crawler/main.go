// Package main provides the entry point for the web-spider CLI.
//
// Usage:
//
//	crawler crawl https://www.example.com
//	crawler serve --listen :3000
//
// See --help for all available options.
package main

func main() {
	Execute()
}
