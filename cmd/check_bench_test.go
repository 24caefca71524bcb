package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chriserin/rfl/internal/config"
)

func generateSuite(name string, testCount int) string {
	var buf bytes.Buffer
	buf.WriteString("*** Settings ***\n")
	buf.WriteString("Library    SeleniumLibrary    WITH NAME    Browser\n")
	buf.WriteString("Suite Setup    Open Browser    ${URL}\n")
	buf.WriteString("Force Tags    bench\n\n")
	buf.WriteString("*** Variables ***\n")
	buf.WriteString("${URL}    http://localhost\n\n")
	buf.WriteString("*** Test Cases ***\n")
	for i := 1; i <= testCount; i++ {
		fmt.Fprintf(&buf, "%s test %d\n", name, i)
		fmt.Fprintf(&buf, "    [Tags]    t%d\n", i)
		if i%5 == 0 {
			fmt.Fprintf(&buf, "    [Tags]    dup%d\n", i)
		}
		fmt.Fprintf(&buf, "    Input Text    id=field%d    value %d\n", i, i)
		buf.WriteString("    Click Button    submit\n\n")
	}
	buf.WriteString("*** Keywords ***\n")
	buf.WriteString("Helper\n    [Arguments]    ${a}\n    Log    ${a}\n")
	return buf.String()
}

func setupBenchProject(b *testing.B, fileCount, testsPerFile int) {
	b.Helper()
	dir := b.TempDir()
	orig, err := os.Getwd()
	require.NoError(b, err)
	require.NoError(b, os.Chdir(dir))
	b.Cleanup(func() { os.Chdir(orig) })

	var buf bytes.Buffer
	require.NoError(b, RunInit(&buf))

	require.NoError(b, os.MkdirAll("suites", 0o755))
	for i := 0; i < fileCount; i++ {
		name := fmt.Sprintf("suite_%d", i)
		require.NoError(b, os.WriteFile(fmt.Sprintf("suites/%s.robot", name), []byte(generateSuite(name, testsPerFile)), 0o644))
	}
}

func benchCheck(b *testing.B, opts CheckOptions) {
	b.Helper()
	cfg := config.Default()
	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		err := RunCheck(context.Background(), &buf, cfg, nil, []string{"suites"}, opts)
		if err != nil && !errors.Is(err, ErrProblems) {
			b.Fatal(err)
		}
	}
}

// BenchmarkCheck_Small: 5 files, 10 tests each
func BenchmarkCheck_Small(b *testing.B) {
	setupBenchProject(b, 5, 10)
	benchCheck(b, CheckOptions{})
}

// BenchmarkCheck_Medium: 20 files, 20 tests each
func BenchmarkCheck_Medium(b *testing.B) {
	setupBenchProject(b, 20, 20)
	benchCheck(b, CheckOptions{})
}

// BenchmarkCheck_Large: 50 files, 50 tests each
func BenchmarkCheck_Large(b *testing.B) {
	setupBenchProject(b, 50, 50)
	benchCheck(b, CheckOptions{})
}

// BenchmarkCheck_Record_Medium: 20 files, 20 tests each, markers stored
func BenchmarkCheck_Record_Medium(b *testing.B) {
	setupBenchProject(b, 20, 20)
	benchCheck(b, CheckOptions{Record: true})
}
