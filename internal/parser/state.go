package parser

import (
	"errors"
	"fmt"

	"github.com/chriserin/rfl/internal/model"
)

// State is a point in the table grammar. The parser keeps them on a stack;
// the top decides which mappers may consume the next cell.
type State int

const (
	StateStart State = iota
	StateTrashTable
	StateHeaderColumns
	StateComment

	StateSettingTable
	StateSettingLibraryImport
	StateSettingLibraryNameOrPath
	StateSettingLibraryArguments
	StateSettingLibraryAlias
	StateSettingLibraryAliasValue
	StateSettingResourceImport
	StateSettingVariablesImport
	StateSettingDocumentation
	StateSettingMetadata
	StateSettingSuiteSetup
	StateSettingSuiteTeardown
	StateSettingTestSetup
	StateSettingTestTeardown
	StateSettingForceTags
	StateSettingDefaultTags
	StateSettingTestTemplate
	StateSettingTestTimeout
	StateSettingUnknown
	StateSettingUnknownTrash

	StateVariableTable
	StateVariableDeclaration

	StateTestCaseTable
	StateTestCaseDeclaration
	StateTestCaseSettingDocumentation
	StateTestCaseSettingTags
	StateTestCaseSettingSetup
	StateTestCaseSettingTeardown
	StateTestCaseSettingTemplate
	StateTestCaseSettingTimeout
	StateTestCaseSettingUnknown
	StateTestCaseSettingUnknownTrash
	StateTestCaseRow

	StateKeywordTable
	StateKeywordDeclaration
	StateKeywordSettingDocumentation
	StateKeywordSettingTags
	StateKeywordSettingArguments
	StateKeywordSettingReturn
	StateKeywordSettingTeardown
	StateKeywordSettingTimeout
	StateKeywordSettingUnknown
	StateKeywordSettingUnknownTrash
	StateKeywordRow
)

var stateNames = map[State]string{
	StateStart:         "awaiting section",
	StateTrashTable:    "inside unknown table",
	StateHeaderColumns: "inside table header",
	StateComment:       "inside comment",

	StateSettingTable:             "inside settings table",
	StateSettingLibraryImport:     "inside library import",
	StateSettingLibraryNameOrPath: "after library name",
	StateSettingLibraryArguments:  "inside library arguments",
	StateSettingLibraryAlias:      "after library alias marker",
	StateSettingLibraryAliasValue: "after library alias",
	StateSettingResourceImport:    "inside resource import",
	StateSettingVariablesImport:   "inside variables import",
	StateSettingDocumentation:     "inside suite documentation",
	StateSettingMetadata:          "inside metadata",
	StateSettingSuiteSetup:        "inside suite setup",
	StateSettingSuiteTeardown:     "inside suite teardown",
	StateSettingTestSetup:         "inside test setup",
	StateSettingTestTeardown:      "inside test teardown",
	StateSettingForceTags:         "inside force tags",
	StateSettingDefaultTags:       "inside default tags",
	StateSettingTestTemplate:      "inside test template",
	StateSettingTestTimeout:       "inside test timeout",
	StateSettingUnknown:           "inside unknown setting",
	StateSettingUnknownTrash:      "inside unknown-setting trash",

	StateVariableTable:       "inside variables table",
	StateVariableDeclaration: "inside variable declaration",

	StateTestCaseTable:                "awaiting test-case name",
	StateTestCaseDeclaration:          "inside test case",
	StateTestCaseSettingDocumentation: "inside test-case documentation",
	StateTestCaseSettingTags:          "inside test-case tags",
	StateTestCaseSettingSetup:         "inside test-case setup",
	StateTestCaseSettingTeardown:      "inside test-case teardown",
	StateTestCaseSettingTemplate:      "inside test-case template",
	StateTestCaseSettingTimeout:       "inside test-case timeout",
	StateTestCaseSettingUnknown:       "inside test-case unknown setting",
	StateTestCaseSettingUnknownTrash:  "inside test-case unknown-setting trash",
	StateTestCaseRow:                  "inside test-case step",

	StateKeywordTable:                "awaiting keyword name",
	StateKeywordDeclaration:          "inside keyword",
	StateKeywordSettingDocumentation: "inside keyword documentation",
	StateKeywordSettingTags:          "inside keyword tags",
	StateKeywordSettingArguments:     "inside keyword arguments",
	StateKeywordSettingReturn:        "inside keyword return",
	StateKeywordSettingTeardown:      "inside keyword teardown",
	StateKeywordSettingTimeout:       "inside keyword timeout",
	StateKeywordSettingUnknown:       "inside keyword unknown setting",
	StateKeywordSettingUnknownTrash:  "inside keyword unknown-setting trash",
	StateKeywordRow:                  "inside keyword step",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrStackUnderflow is returned when a pop would remove the sentinel.
var ErrStackUnderflow = errors.New("parsing state stack underflow")

// Stack holds parsing states above a StateStart sentinel.
type Stack struct {
	states []State
}

func NewStack() *Stack {
	return &Stack{states: []State{StateStart}}
}

func (s *Stack) Push(st State) {
	s.states = append(s.states, st)
}

func (s *Stack) Top() State {
	return s.states[len(s.states)-1]
}

func (s *Stack) Depth() int {
	return len(s.states)
}

// Pop removes the top state. The sentinel is never removed.
func (s *Stack) Pop() (State, error) {
	if len(s.states) <= 1 {
		return StateStart, ErrStackUnderflow
	}
	top := s.Top()
	s.states = s.states[:len(s.states)-1]
	return top, nil
}

// PopTo pops until st is on top. It fails when st is not on the stack.
func (s *Stack) PopTo(st State) error {
	for s.Top() != st {
		if _, err := s.Pop(); err != nil {
			return fmt.Errorf("looking for %q: %w", st, err)
		}
	}
	return nil
}

// Reset unwinds everything down to the sentinel.
func (s *Stack) Reset() {
	s.states = s.states[:1]
}

func (s *Stack) Is(states ...State) bool {
	top := s.Top()
	for _, st := range states {
		if top == st {
			return true
		}
	}
	return false
}

// tableState is the state pushed by a header of kind.
func tableState(kind model.TableKind) State {
	switch kind {
	case model.SettingsTable:
		return StateSettingTable
	case model.VariablesTable:
		return StateVariableTable
	case model.TestCasesTable:
		return StateTestCaseTable
	case model.KeywordsTable:
		return StateKeywordTable
	}
	return StateTrashTable
}

func entryState(kind model.EntryKind) State {
	if kind == model.TestCase {
		return StateTestCaseDeclaration
	}
	return StateKeywordDeclaration
}

func rowState(kind model.EntryKind) State {
	if kind == model.TestCase {
		return StateTestCaseRow
	}
	return StateKeywordRow
}

var globalSettingStates = map[model.SettingKind]State{
	model.Library:         StateSettingLibraryImport,
	model.Resource:        StateSettingResourceImport,
	model.VariablesImport: StateSettingVariablesImport,
	model.Documentation:   StateSettingDocumentation,
	model.Metadata:        StateSettingMetadata,
	model.SuiteSetup:      StateSettingSuiteSetup,
	model.SuiteTeardown:   StateSettingSuiteTeardown,
	model.TestSetup:       StateSettingTestSetup,
	model.TestTeardown:    StateSettingTestTeardown,
	model.ForceTags:       StateSettingForceTags,
	model.DefaultTags:     StateSettingDefaultTags,
	model.TestTemplate:    StateSettingTestTemplate,
	model.TestTimeout:     StateSettingTestTimeout,
}

var testCaseSettingStates = map[model.SettingKind]State{
	model.Documentation: StateTestCaseSettingDocumentation,
	model.Tags:          StateTestCaseSettingTags,
	model.Setup:         StateTestCaseSettingSetup,
	model.Teardown:      StateTestCaseSettingTeardown,
	model.Template:      StateTestCaseSettingTemplate,
	model.Timeout:       StateTestCaseSettingTimeout,
}

var keywordSettingStates = map[model.SettingKind]State{
	model.Documentation: StateKeywordSettingDocumentation,
	model.Tags:          StateKeywordSettingTags,
	model.Arguments:     StateKeywordSettingArguments,
	model.Return:        StateKeywordSettingReturn,
	model.Teardown:      StateKeywordSettingTeardown,
	model.Timeout:       StateKeywordSettingTimeout,
}

// valueStates are the states in which a cell is a value of the active
// setting. Library imports have their own chain.
var valueStates = func() map[State]bool {
	m := make(map[State]bool)
	for k, st := range globalSettingStates {
		if k != model.Library {
			m[st] = true
		}
	}
	for _, st := range testCaseSettingStates {
		m[st] = true
	}
	for _, st := range keywordSettingStates {
		m[st] = true
	}
	return m
}()
