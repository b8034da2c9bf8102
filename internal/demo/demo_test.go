package demo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_GoldenOutput(t *testing.T) {
	var buf bytes.Buffer
	Run(&buf)
	assert.Equal(t, "Hello from Rust!\nProcessing: 1\nProcessing: 2\nProcessing: 3\n", buf.String())
}

func TestProcessData(t *testing.T) {
	var buf bytes.Buffer
	ProcessData(&buf)
	assert.Equal(t, "Processing: 1\nProcessing: 2\nProcessing: 3\n", buf.String())
}

func TestNewUser(t *testing.T) {
	u := NewUser("Alice", 30)
	assert.Equal(t, User{Name: "Alice", Age: 30}, u)
}
