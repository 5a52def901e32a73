package symbolica

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/symbolica-rules/symbolica/internal/compile"
	"github.com/symbolica-rules/symbolica/internal/config"
	"github.com/symbolica-rules/symbolica/internal/parser"
)

// ruleDoc is the declarative rule surface syntax these convenience
// decoders accept: an id, optional priority, a condition (either a
// flat expression string or a structured all/any/not map), an ordered
// list of field/value actions, and optional trigger/tag ids.
// Grounded on the teacher's internal/preprocessor/parser.go and
// pkg/preprocessor/parser.go, which unmarshal straight into the
// domain struct and do nothing more — this decoder adds only the
// expression/template parsing step those did not need, since the
// teacher's rule language was already pure JSON-logic with no
// embedded expression syntax.
type ruleDoc struct {
	ID        string      `json:"id" yaml:"id"`
	Priority  *int        `json:"priority" yaml:"priority"`
	Condition any         `json:"condition" yaml:"condition"`
	Actions   []actionDoc `json:"actions" yaml:"actions"`
	Triggers  []string    `json:"triggers" yaml:"triggers"`
	Tags      []string    `json:"tags" yaml:"tags"`
}

type actionDoc struct {
	Field string `json:"field" yaml:"field"`
	Value any    `json:"value" yaml:"value"`
}

// DecodeRuleSetJSON parses a JSON array of rule documents into
// RuleDefs ready for Compile. It is a thin convenience: file watching,
// hot reload, and schema migration remain a host concern, per spec §1.
func DecodeRuleSetJSON(data []byte) ([]RuleDef, error) {
	var docs []ruleDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return convertRuleDocs(docs)
}

// DecodeRuleSetYAML is DecodeRuleSetJSON's YAML counterpart, exercising
// gopkg.in/yaml.v3 the way the teacher's dependency graph already
// carries it.
func DecodeRuleSetYAML(data []byte) ([]RuleDef, error) {
	var docs []ruleDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return convertRuleDocs(docs)
}

func convertRuleDocs(docs []ruleDoc) ([]RuleDef, error) {
	defaultPriority := config.Default().DefaultPriority
	defs := make([]RuleDef, len(docs))
	for i, doc := range docs {
		cond, err := parser.ParseStructured(doc.Condition)
		if err != nil {
			return nil, err
		}
		actions := make([]compile.ActionTemplate, len(doc.Actions))
		for j, a := range doc.Actions {
			node, err := parser.ParseActionValue(a.Value)
			if err != nil {
				return nil, err
			}
			actions[j] = compile.ActionTemplate{Field: a.Field, Template: node}
		}
		priority := defaultPriority
		if doc.Priority != nil {
			priority = *doc.Priority
		}
		defs[i] = RuleDef{
			ID:        doc.ID,
			Priority:  priority,
			Condition: cond,
			Actions:   actions,
			Triggers:  doc.Triggers,
			Tags:      doc.Tags,
		}
	}
	return defs, nil
}
