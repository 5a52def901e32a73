package registry

import (
	"fmt"

	"github.com/symbolica-rules/symbolica/internal/core"
)

// registerPrompt installs the PROMPT(template, return_type?, max_tokens?)
// built-in described in spec §4.5. It is declared pure at the
// descriptor level (its result does not feed back into the overlay
// outside the rule that calls it), but the evaluator records it among
// its impure calls (Evaluator.ImpureCalls), since PROMPT's result
// depends on an external adapter rather than purely on its arguments.
func registerPrompt(r *Registry) {
	if err := r.Register(Descriptor{Name: "PROMPT", Min: 1, Max: 3, Pure: true, Fn: fnPrompt}); err != nil {
		panic(err)
	}
}

func fnPrompt(cc *CallContext, args []core.Value) (core.Value, error) {
	template, ok := args[0].AsString()
	if !ok {
		return core.Null, &core.TypeError{Op: "PROMPT", Detail: "template must be a string"}
	}
	returnType := ""
	if len(args) >= 2 && !args[1].IsNull() {
		rt, ok := args[1].AsString()
		if !ok {
			return core.Null, &core.TypeError{Op: "PROMPT", Detail: "return_type must be a string"}
		}
		returnType = rt
	}
	maxTokens := 256
	if len(args) >= 3 && !args[2].IsNull() {
		mt, ok := args[2].AsInt()
		if !ok {
			return core.Null, &core.TypeError{Op: "PROMPT", Detail: "max_tokens must be an int"}
		}
		maxTokens = int(mt)
	}

	if cc.Adapter == nil {
		return core.Null, &core.PromptUnavailable{}
	}

	cacheKey := fmt.Sprintf("%s\x00%s\x00%d", template, returnType, maxTokens)
	if cached, ok := cc.promptCache[cacheKey]; ok {
		if cached.err != nil {
			return core.Null, cached.err
		}
		return coercePromptResult(cached.text, returnType)
	}

	text, err := cc.Adapter.Complete(cc.Ctx, template, maxTokens)
	if err != nil {
		wrapped := &core.PromptError{Cause: err}
		cc.promptCache[cacheKey] = promptResult{err: wrapped}
		return core.Null, wrapped
	}
	cc.promptCache[cacheKey] = promptResult{text: text}
	return coercePromptResult(text, returnType)
}

func coercePromptResult(text string, returnType string) (core.Value, error) {
	switch returnType {
	case "", "string":
		return core.String(text), nil
	case "int":
		var i int64
		if _, err := fmt.Sscanf(text, "%d", &i); err != nil {
			return core.Null, &core.TypeError{Op: "PROMPT", Detail: "adapter result is not an int: " + text}
		}
		return core.Int(i), nil
	case "float":
		var f float64
		if _, err := fmt.Sscanf(text, "%g", &f); err != nil {
			return core.Null, &core.TypeError{Op: "PROMPT", Detail: "adapter result is not a float: " + text}
		}
		return core.Float(f), nil
	case "bool":
		switch text {
		case "true", "True", "TRUE":
			return core.Bool(true), nil
		case "false", "False", "FALSE":
			return core.Bool(false), nil
		default:
			return core.Null, &core.TypeError{Op: "PROMPT", Detail: "adapter result is not a bool: " + text}
		}
	default:
		return core.Null, &core.TypeError{Op: "PROMPT", Detail: "unknown return_type: " + returnType}
	}
}
