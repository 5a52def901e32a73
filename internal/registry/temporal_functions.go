package registry

import (
	"time"

	"github.com/symbolica-rules/symbolica/internal/core"
)

func registerTemporalFunctions(r *Registry) {
	builtins := []Descriptor{
		{Name: "recent_avg", Min: 2, Max: 2, Pure: true, Fn: fnRecentAvg},
		{Name: "recent_max", Min: 2, Max: 2, Pure: true, Fn: fnRecentMax},
		{Name: "recent_min", Min: 2, Max: 2, Pure: true, Fn: fnRecentMin},
		{Name: "recent_count", Min: 2, Max: 2, Pure: true, Fn: fnRecentCount},
		{Name: "sustained_above", Min: 3, Max: 3, Pure: true, Fn: fnSustainedAbove},
		{Name: "sustained_below", Min: 3, Max: 3, Pure: true, Fn: fnSustainedBelow},
		{Name: "ttl_fact", Min: 1, Max: 1, Pure: true, Fn: fnTTLFact},
		{Name: "has_ttl_fact", Min: 1, Max: 1, Pure: true, Fn: fnHasTTLFact},
	}
	for _, d := range builtins {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// nowTime converts the CallContext's frozen epoch-seconds "now" into a
// time.Time for the temporal.Store API.
func nowTime(cc *CallContext) time.Time {
	return time.Unix(0, int64(cc.Now()*float64(time.Second)))
}

func keyAndWindow(op string, args []core.Value) (string, float64, error) {
	key, ok := args[0].AsString()
	if !ok {
		return "", 0, &core.TypeError{Op: op, Detail: "key must be a string"}
	}
	w, ok := args[1].AsFloat()
	if !ok {
		return "", 0, &core.TypeError{Op: op, Detail: "window must be numeric"}
	}
	return key, w, nil
}

func fnRecentAvg(cc *CallContext, args []core.Value) (core.Value, error) {
	key, w, err := keyAndWindow("recent_avg", args)
	if err != nil {
		return core.Null, err
	}
	v, ok := cc.Temporal.RecentAvg(key, nowTime(cc), w)
	if !ok {
		return core.Null, nil
	}
	return core.Float(v), nil
}

func fnRecentMax(cc *CallContext, args []core.Value) (core.Value, error) {
	key, w, err := keyAndWindow("recent_max", args)
	if err != nil {
		return core.Null, err
	}
	v, ok := cc.Temporal.RecentMax(key, nowTime(cc), w)
	if !ok {
		return core.Null, nil
	}
	return core.Float(v), nil
}

func fnRecentMin(cc *CallContext, args []core.Value) (core.Value, error) {
	key, w, err := keyAndWindow("recent_min", args)
	if err != nil {
		return core.Null, err
	}
	v, ok := cc.Temporal.RecentMin(key, nowTime(cc), w)
	if !ok {
		return core.Null, nil
	}
	return core.Float(v), nil
}

func fnRecentCount(cc *CallContext, args []core.Value) (core.Value, error) {
	key, w, err := keyAndWindow("recent_count", args)
	if err != nil {
		return core.Null, err
	}
	return core.Int(cc.Temporal.RecentCount(key, nowTime(cc), w)), nil
}

func sustainedArgs(op string, args []core.Value) (string, float64, float64, error) {
	key, ok := args[0].AsString()
	if !ok {
		return "", 0, 0, &core.TypeError{Op: op, Detail: "key must be a string"}
	}
	threshold, ok := args[1].AsFloat()
	if !ok {
		return "", 0, 0, &core.TypeError{Op: op, Detail: "threshold must be numeric"}
	}
	w, ok := args[2].AsFloat()
	if !ok {
		return "", 0, 0, &core.TypeError{Op: op, Detail: "window must be numeric"}
	}
	return key, threshold, w, nil
}

func fnSustainedAbove(cc *CallContext, args []core.Value) (core.Value, error) {
	key, threshold, w, err := sustainedArgs("sustained_above", args)
	if err != nil {
		return core.Null, err
	}
	return core.Bool(cc.Temporal.SustainedAbove(key, threshold, nowTime(cc), w)), nil
}

func fnSustainedBelow(cc *CallContext, args []core.Value) (core.Value, error) {
	key, threshold, w, err := sustainedArgs("sustained_below", args)
	if err != nil {
		return core.Null, err
	}
	return core.Bool(cc.Temporal.SustainedBelow(key, threshold, nowTime(cc), w)), nil
}

func fnTTLFact(cc *CallContext, args []core.Value) (core.Value, error) {
	key, ok := args[0].AsString()
	if !ok {
		return core.Null, &core.TypeError{Op: "ttl_fact", Detail: "key must be a string"}
	}
	v, ok := cc.Temporal.TTLFact(key, nowTime(cc))
	if !ok {
		return core.Null, nil
	}
	return core.Float(v), nil
}

func fnHasTTLFact(cc *CallContext, args []core.Value) (core.Value, error) {
	key, ok := args[0].AsString()
	if !ok {
		return core.Null, &core.TypeError{Op: "has_ttl_fact", Detail: "key must be a string"}
	}
	return core.Bool(cc.Temporal.HasTTLFact(key, nowTime(cc))), nil
}
