// Package output switches command results between human-readable text and a
// machine-readable JSON envelope, selected by the root --json flag.
package output

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONMode is set from the root command's persistent --json flag.
var JSONMode bool

// envelope is the uniform JSON shape for command results.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Print emits data as a JSON envelope in JSON mode, otherwise runs textFn to
// render the human-readable form.
func Print(data interface{}, textFn func()) {
	if !JSONMode {
		textFn()
		return
	}
	out, err := json.MarshalIndent(envelope{Success: true, Data: data}, "", "  ")
	if err != nil {
		Fatal(err)
		return
	}
	fmt.Println(string(out))
}

// Fatal reports an error in the active mode and exits non-zero.
func Fatal(err error) {
	if JSONMode {
		out, _ := json.MarshalIndent(envelope{Success: false, Error: err.Error()}, "", "  ")
		fmt.Println(string(out))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
