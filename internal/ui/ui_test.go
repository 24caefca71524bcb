package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/rfl/internal/parser"
	"github.com/chriserin/rfl/internal/validation"
	"github.com/chriserin/rfl/internal/version"
)

const suite = `*** Settings ***
Force Tags    smoke
Force Tags    again
*** Variables ***
${HOST}    localhost
*** Test Cases ***
Login
    [Tags]    ui
    Open Browser    ${HOST}
`

func TestProblemLine(t *testing.T) {
	var buf bytes.Buffer
	p := validation.NewProblem(validation.UnknownSetting, validation.Region{File: "a.robot", Line: 3, Column: 5}, "Foo")
	ProblemLine(&buf, p)
	assert.Contains(t, buf.String(), "a.robot:3:5")
	assert.Contains(t, buf.String(), "Unknown setting 'Foo'")
	assert.Contains(t, buf.String(), "unknown-setting")
}

func TestSummaryLine(t *testing.T) {
	var buf bytes.Buffer
	SummaryLine(&buf, 3, nil)
	assert.Contains(t, buf.String(), "checked 3 files, no problems")

	buf.Reset()
	SummaryLine(&buf, 2, map[validation.Severity]int{validation.Error: 2, validation.Info: 1})
	assert.Contains(t, buf.String(), "3 problems")
	assert.Contains(t, buf.String(), "2 errors")
	assert.Contains(t, buf.String(), "0 warnings")
}

func TestFileError(t *testing.T) {
	var buf bytes.Buffer
	FileError(&buf, "x.robot", errors.New("boom"))
	assert.Contains(t, buf.String(), "x.robot")
	assert.Contains(t, buf.String(), "boom")
}

func TestTreeAndTokens(t *testing.T) {
	f, err := parser.Parse("suite.robot", []byte(suite), parser.Options{Version: version.New(3, 1)})
	require.NoError(t, err)

	var tree bytes.Buffer
	Tree(&tree, f)
	out := tree.String()
	assert.Contains(t, out, "Force Tags: smoke")
	assert.Contains(t, out, "duplicate line 3: again")
	assert.Contains(t, out, "${HOST} = localhost")
	assert.Contains(t, out, "Login")
	assert.Contains(t, out, "Open Browser")

	var toks bytes.Buffer
	Tokens(&toks, f)
	assert.Contains(t, toks.String(), `"Force Tags"`)
	assert.NotContains(t, toks.String(), "SEPARATOR")
}

func TestCatalog(t *testing.T) {
	var buf bytes.Buffer
	Catalog(&buf, validation.Catalog(version.New(3, 1)))
	assert.Contains(t, buf.String(), "settings")
	assert.Contains(t, buf.String(), "library alias not upper case since 3.1")
}
