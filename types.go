package revet

import (
	"github.com/revet-dev/revet-core/internal/baseline"
	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/diagnostic"
	"github.com/revet-dev/revet-core/internal/findings"
	"github.com/revet-dev/revet-core/internal/fixer"
	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/impact"
)

// Public type aliases for internal types used across the Engine's API.
// These are Go type aliases (=) — identical to the internal types at
// compile time. External consumers use these names; no conversion is
// needed.

type Config = config.Config
type FailOn = config.FailOn
type CustomRule = config.CustomRule

type Finding = findings.Finding
type Severity = findings.Severity
type Summary = findings.Summary
type RunLog = findings.RunLog

type Diagnostic = diagnostic.Diagnostic
type DiagnosticKind = diagnostic.Kind

type Graph = graph.Graph
type Node = graph.Node

type ChangedFile = impact.ChangedFile
type ChangeStatus = impact.ChangeStatus

type Baseline = baseline.Baseline
type BaselineEntry = baseline.Entry

type FixReport = fixer.Report
type FixResult = fixer.Result

const (
	SeverityError   = findings.Error
	SeverityWarning = findings.Warning
	SeverityInfo    = findings.Info
)

const (
	FailOnError   = config.FailOnError
	FailOnWarning = config.FailOnWarning
	FailOnInfo    = config.FailOnInfo
	FailOnNever   = config.FailOnNever
)
