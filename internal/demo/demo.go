// Package demo is a small sample program whose comments carry traceability
// markers in every comment style.
package demo

import (
	"fmt"
	"io"
)

// Run prints a greeting and processes the sample data.
// @Main function implementation, main_demo, impl, [REQ_001]
func Run(w io.Writer) {
	fmt.Fprintln(w, "Hello from Rust!")
	ProcessData(w)
}

// @Data processing function, process_func, impl, [REQ_002]
func ProcessData(w io.Writer) {
	data := []int{1, 2, 3}
	for _, item := range data {
		fmt.Fprintf(w, "Processing: %d\n", item)
	}
}

/* Block comment with marker
   @User data structure, struct_def, impl, [REQ_003]
*/
type User struct {
	Name string
	Age  uint32
}

// @User constructor method, new_user, impl, [REQ_004]
func NewUser(name string, age uint32) User {
	return User{Name: name, Age: age}
}
