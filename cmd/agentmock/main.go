// Command agentmock stands in for the external agent CLI in tests: it
// speaks the same contract ProcessRunner drives — args
// [--print, --permission-mode, bypassPermissions, <prompt>, --model <model>]
// and plain stdout/stderr/exit-code — without shelling out to a real model.
//
// The prompt string doubles as a tiny scenario language so tests can drive
// every path through ProcessRunner without a real agent binary:
//
//	"FAIL:<code> text"     write text to stderr, exit <code>
//	"SLEEP:<seconds> text" sleep, then echo text and exit 0
//	"HANG"                 sleep far longer than any test timeout, to
//	                       exercise ProcessRunner's timeout/terminate path
//	anything else          echo the prompt (and --model, if given) to
//	                       stdout and exit 0
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	prompt, model := parseArgs(os.Args[1:])

	switch {
	case strings.HasPrefix(prompt, "FAIL:"):
		rest := strings.TrimPrefix(prompt, "FAIL:")
		code, text := splitCodeAndText(rest)
		fmt.Fprintln(os.Stderr, text)
		os.Exit(code)

	case strings.HasPrefix(prompt, "SLEEP:"):
		rest := strings.TrimPrefix(prompt, "SLEEP:")
		seconds, text := splitSecondsAndText(rest)
		time.Sleep(time.Duration(seconds * float64(time.Second)))
		echo(text, model)

	case prompt == "HANG":
		time.Sleep(24 * time.Hour)

	default:
		echo(prompt, model)
	}
}

func echo(text, model string) {
	if model != "" {
		fmt.Printf("[model=%s] %s\n", model, text)
		return
	}
	fmt.Println(text)
}

// parseArgs extracts the trailing positional prompt and an optional
// --model value from the runner's fixed argument vector.
func parseArgs(args []string) (prompt, model string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--model" && i+1 < len(args) {
			model = args[i+1]
			i++
			continue
		}
		if !strings.HasPrefix(args[i], "-") && args[i] != "bypassPermissions" {
			prompt = args[i]
		}
	}
	return prompt, model
}

func splitCodeAndText(s string) (code int, text string) {
	parts := strings.SplitN(s, " ", 2)
	code, err := strconv.Atoi(parts[0])
	if err != nil {
		code = 1
	}
	if len(parts) > 1 {
		text = parts[1]
	}
	return code, text
}

func splitSecondsAndText(s string) (seconds float64, text string) {
	parts := strings.SplitN(s, " ", 2)
	seconds, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		seconds = 0
	}
	if len(parts) > 1 {
		text = parts[1]
	}
	return seconds, text
}
