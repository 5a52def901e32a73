// Command symbolica is a thin example host: load a rule set and a fact
// map from disk, run one Reason call, and print the verdict and
// reasoning. It exists to show the public API end to end; real hosts
// embed the symbolica package directly rather than shell out to this
// binary. Replaces the teacher's two-binary preprocessor/runtime
// pipeline, which compiled rules to bytecode for a separate VM to
// execute — this engine has no bytecode stage, so one binary covers
// load, compile, and reason.
package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	sym "github.com/symbolica-rules/symbolica"
)

func main() {
	if len(os.Args) < 3 {
		log.Error().Msg("Usage: symbolica <rules.json|rules.yaml> <facts.json>")
		os.Exit(1)
	}

	ruleSet, err := loadRuleSet(os.Args[1])
	if err != nil {
		log.Error().Err(err).Str("file", os.Args[1]).Msg("failed to load rule set")
		os.Exit(1)
	}

	facts, err := loadFacts(os.Args[2])
	if err != nil {
		log.Error().Err(err).Str("file", os.Args[2]).Msg("failed to load facts")
		os.Exit(1)
	}

	engine := sym.NewEngine(ruleSet, nil)
	result, err := engine.Reason(context.Background(), facts, sym.CallOptions{TraceLevel: sym.TraceBasic})
	if err != nil {
		log.Error().Err(err).Msg("reason call aborted")
		os.Exit(1)
	}

	verdict, err := json.MarshalIndent(result.Verdict, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("failed to encode verdict")
		os.Exit(1)
	}
	os.Stdout.Write(verdict)
	os.Stdout.WriteString("\n")
	os.Stdout.WriteString(result.Reasoning)
	os.Stdout.WriteString("\n")

	log.Info().
		Strs("fired", result.FiredRuleIDs).
		Dur("elapsed", result.Elapsed).
		Msg("reason call completed")
}

func loadRuleSet(path string) (*sym.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var defs []sym.RuleDef
	if strings.EqualFold(filepath.Ext(path), ".yaml") || strings.EqualFold(filepath.Ext(path), ".yml") {
		defs, err = sym.DecodeRuleSetYAML(data)
	} else {
		defs, err = sym.DecodeRuleSetJSON(data)
	}
	if err != nil {
		return nil, err
	}
	return sym.Compile(defs)
}

func loadFacts(path string) (*sym.Facts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	values := make(map[string]sym.Value, len(raw))
	for k, v := range raw {
		val, err := sym.FromGo(v)
		if err != nil {
			return nil, err
		}
		values[k] = val
	}
	return sym.NewFacts(values), nil
}
