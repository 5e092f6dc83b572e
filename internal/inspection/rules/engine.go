package rules

import (
	"errors"
	"strings"

	"voltcheck/internal/inspection"
)

// Template describes the violation a rule emits when its predicate matches.
type Template struct {
	Kind          inspection.ViolationKind
	Severity      inspection.Severity
	Description   string
	CodeReference string
	Confidence    float64
}

// Rule pairs a component class with a predicate and a violation template.
// Rules are purely additive: a detection can match any number of rules, and
// component classes without rules produce nothing.
type Rule struct {
	Name      string
	Component inspection.Component
	// Applies gates the rule on component properties. A nil predicate
	// matches every detection of the component class.
	Applies  func(inspection.Detection) bool
	Template Template
}

// Engine evaluates an ordered registry of rules against detections.
type Engine struct {
	rules []Rule
}

// NewEngine constructs an engine preloaded with the built-in rule set.
func NewEngine() *Engine {
	engine := &Engine{}
	for _, rule := range builtinRules() {
		// Built-ins are validated at construction; a bad entry is a programming error.
		if err := engine.Register(rule); err != nil {
			panic(err)
		}
	}
	return engine
}

// NewEmptyEngine constructs an engine with no rules registered.
func NewEmptyEngine() *Engine {
	return &Engine{}
}

// Register appends a rule to the registry. Existing rules are never altered.
func (e *Engine) Register(rule Rule) error {
	if strings.TrimSpace(rule.Name) == "" {
		return errors.New("rules: rule name required")
	}
	if rule.Component == "" {
		return errors.New("rules: rule component required")
	}
	if rule.Template.Kind == "" {
		return errors.New("rules: violation kind required")
	}
	if rule.Template.Severity == "" {
		return errors.New("rules: violation severity required")
	}
	e.rules = append(e.rules, rule)
	return nil
}

// Rules returns the registered rules in evaluation order.
func (e *Engine) Rules() []Rule {
	cp := make([]Rule, len(e.rules))
	copy(cp, e.rules)
	return cp
}

// Evaluate applies every registered rule to every detection and returns the
// accumulated violations. Evaluation order is detection order, then registry
// order, so output is deterministic.
func (e *Engine) Evaluate(detections []inspection.Detection) []inspection.Violation {
	var violations []inspection.Violation
	for _, detection := range detections {
		for _, rule := range e.rules {
			if rule.Component != detection.Component {
				continue
			}
			if rule.Applies != nil && !rule.Applies(detection) {
				continue
			}
			violations = append(violations, inspection.Violation{
				Kind:          rule.Template.Kind,
				Severity:      rule.Template.Severity,
				Description:   rule.Template.Description,
				CodeReference: rule.Template.CodeReference,
				Component:     detection.Component,
				Confidence:    rule.Template.Confidence,
			})
		}
	}
	return violations
}
